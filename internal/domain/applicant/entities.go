package applicant

import (
	"context"
	"errors"

	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("applicant profile not found")

// Profile is owned by the identity subsystem; this service only reads it.
// Table: applicant_profiles
type Profile struct {
	ApplicantID string      `gorm:"column:applicant_id;size:32;primaryKey"`
	CreditScore int         `gorm:"column:credit_score;not null"`
	Balance     float64     `gorm:"column:balance;type:decimal(18,2);not null"`
	BankAccount null.String `gorm:"column:bank_account;size:34"`
	RoutingCode null.String `gorm:"column:routing_code;size:16"`
	KYCVerified bool        `gorm:"column:kyc_verified;not null;default:false"`
}

func (Profile) TableName() string { return "applicant_profiles" }

// HasBankDetails reports whether a bank transfer can be routed to this applicant.
func (p *Profile) HasBankDetails() bool {
	return p.KYCVerified &&
		p.BankAccount.Valid && p.BankAccount.String != "" &&
		p.RoutingCode.Valid && p.RoutingCode.String != ""
}

// Destination is the account written to the ledger entry.
func (p *Profile) Destination() string { return p.BankAccount.String }

type Repository interface {
	GetByApplicantID(ctx context.Context, applicantID string) (*Profile, error)
}
