package mysql

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"farm-loan-ledger/internal/domain/applicant"
	"farm-loan-ledger/internal/domain/loan"
	infradb "farm-loan-ledger/internal/infrastructure/db"
	"farm-loan-ledger/pkg/id"
)

// openTestDB creates an in-memory sqlite DB on a single connection and migrates the real models.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infradb.OpenGorm(infradb.DriverSQLite, ":memory:", "silent")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := infradb.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func makeLoan(farmerID string, status loan.Status) *loan.Loan {
	return &loan.Loan{
		LoanID:             id.NewID32(),
		FarmerID:           farmerID,
		Principal:          120000,
		Purpose:            "drip irrigation",
		LandSize:           3.5,
		CropType:           "rice",
		AnnualIncome:       40000,
		Location:           "Karawang",
		RepaymentFrequency: loan.FrequencyMonthly,
		Status:             status,
		DisbursementState:  loan.DisbursementNone,
		StatusUpdatedAt:    time.Now().UTC(),
		NextDueDate:        time.Now().UTC().AddDate(0, 0, 30),
	}
}

func seedProfile(t *testing.T, db *gorm.DB, applicantID string, withBank bool) {
	t.Helper()
	p := &applicant.Profile{ApplicantID: applicantID, CreditScore: 720, Balance: 25000, KYCVerified: withBank}
	if withBank {
		p.BankAccount = null.StringFrom("0012345678")
		p.RoutingCode = null.StringFrom("BRINIDJA")
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}
