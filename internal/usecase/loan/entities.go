package loan

import (
	"time"

	domain "farm-loan-ledger/internal/domain/loan"
)

type SubmitInput struct {
	FarmerID    string
	Application domain.Application
}

type LoanDTO struct {
	LoanID             string    `json:"loan_id"`
	FarmerID           string    `json:"farmer_id"`
	Principal          float64   `json:"principal"`
	Purpose            string    `json:"purpose"`
	LandSize           float64   `json:"land_size"`
	CropType           string    `json:"crop_type"`
	AnnualIncome       float64   `json:"annual_income"`
	Location           string    `json:"location"`
	RepaymentFrequency string    `json:"repayment_frequency"`
	MerchantRestricted bool      `json:"merchant_restricted"`
	MerchantCategory   string    `json:"merchant_category,omitempty"`
	Insured            bool      `json:"insured"`
	InsuranceProvider  string    `json:"insurance_provider,omitempty"`
	Status             string    `json:"status"`
	DecisionReason     string    `json:"decision_reason"`
	ConfidenceScore    float64   `json:"confidence_score"`
	EMIAmount          float64   `json:"emi_amount"`
	NextDueDate        time.Time `json:"next_due_date"`
	DisbursementState  string    `json:"disbursement_state"`
	Remarks            string    `json:"remarks,omitempty"`
	StatusUpdatedAt    time.Time `json:"status_updated_at"`
	CreatedAt          time.Time `json:"created_at"`
}

type Page struct {
	Limit  int
	Offset int
}

type StatusStats struct {
	Count     int64   `json:"count"`
	Principal float64 `json:"principal"`
}

type AnalyticsDTO struct {
	TotalLoans     int64                  `json:"total_loans"`
	TotalPrincipal float64                `json:"total_principal"`
	ByStatus       map[string]StatusStats `json:"by_status"`
	Disbursements  map[string]int64       `json:"disbursements"`
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:             l.LoanID,
		FarmerID:           l.FarmerID,
		Principal:          l.Principal,
		Purpose:            l.Purpose,
		LandSize:           l.LandSize,
		CropType:           l.CropType,
		AnnualIncome:       l.AnnualIncome,
		Location:           l.Location,
		RepaymentFrequency: string(l.RepaymentFrequency),
		MerchantRestricted: l.MerchantRestricted,
		MerchantCategory:   l.MerchantCategory.String,
		Insured:            l.Insured,
		InsuranceProvider:  l.InsuranceProvider.String,
		Status:             string(l.Status),
		DecisionReason:     l.DecisionReason,
		ConfidenceScore:    l.ConfidenceScore,
		EMIAmount:          l.EMIAmount,
		NextDueDate:        l.NextDueDate,
		DisbursementState:  string(l.DisbursementState),
		Remarks:            l.Remarks.String,
		StatusUpdatedAt:    l.StatusUpdatedAt,
		CreatedAt:          l.CreatedAt,
	}
}
