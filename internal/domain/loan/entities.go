package loan

import (
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type DisbursementState string

const (
	DisbursementNone          DisbursementState = "NONE"
	DisbursementVoucherIssued DisbursementState = "VOUCHER_ISSUED"
	DisbursementFundsReleased DisbursementState = "FUNDS_RELEASED"
)

type Frequency string

const (
	FrequencyMonthly     Frequency = "monthly"
	FrequencyQuarterly   Frequency = "quarterly"
	FrequencyPostHarvest Frequency = "post-harvest"
)

const DefaultMerchantCategory = "general"

// Application is what a farmer submits. It is never mutated after submission.
type Application struct {
	Principal          float64
	Purpose            string
	LandSize           float64 // acres
	CropType           string
	AnnualIncome       float64
	Location           string
	Frequency          Frequency
	MerchantRestricted bool
	MerchantCategory   string
	Insured            bool
	InsuranceProvider  string
}

// Table: loans
type Loan struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID   string `gorm:"size:32;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	FarmerID string `gorm:"size:32;not null;index:idx_loans_farmer" json:"farmer_id"`

	Principal          float64     `gorm:"type:decimal(18,2);not null" json:"principal"`
	Purpose            string      `gorm:"size:255" json:"purpose"`
	LandSize           float64     `gorm:"type:decimal(10,2)" json:"land_size"`
	CropType           string      `gorm:"size:64" json:"crop_type"`
	AnnualIncome       float64     `gorm:"type:decimal(18,2)" json:"annual_income"`
	Location           string      `gorm:"size:255" json:"location"`
	RepaymentFrequency Frequency   `gorm:"size:16;not null" json:"repayment_frequency"`
	MerchantRestricted bool        `gorm:"not null;default:false" json:"merchant_restricted"`
	MerchantCategory   null.String `gorm:"size:64" json:"merchant_category"`
	Insured            bool        `gorm:"not null;default:false" json:"insured"`
	InsuranceProvider  null.String `gorm:"size:128" json:"insurance_provider"`

	Status            Status            `gorm:"size:16;not null;index:idx_loans_status" json:"status"`
	DecisionReason    string            `gorm:"type:text" json:"decision_reason"`
	ConfidenceScore   float64           `gorm:"type:decimal(5,4)" json:"confidence_score"`
	EMIAmount         float64           `gorm:"type:decimal(18,2)" json:"emi_amount"`
	NextDueDate       time.Time         `json:"next_due_date"`
	DisbursementState DisbursementState `gorm:"size:16;not null;default:'NONE'" json:"disbursement_state"`
	Remarks           null.String       `gorm:"type:text" json:"remarks"`

	StatusUpdatedAt time.Time      `json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Category returns the voucher category for a merchant-restricted loan.
func (l *Loan) Category() string {
	if l.MerchantCategory.Valid && l.MerchantCategory.String != "" {
		return l.MerchantCategory.String
	}
	return DefaultMerchantCategory
}

// Application rebuilds the submitted application from a stored loan.
func (l *Loan) Application() Application {
	return Application{
		Principal:          l.Principal,
		Purpose:            l.Purpose,
		LandSize:           l.LandSize,
		CropType:           l.CropType,
		AnnualIncome:       l.AnnualIncome,
		Location:           l.Location,
		Frequency:          l.RepaymentFrequency,
		MerchantRestricted: l.MerchantRestricted,
		MerchantCategory:   l.MerchantCategory.String,
		Insured:            l.Insured,
		InsuranceProvider:  l.InsuranceProvider.String,
	}
}

// StatusCount is one row of the per-status aggregate.
type StatusCount struct {
	Status Status
	Count  int64
	Amount float64
}
