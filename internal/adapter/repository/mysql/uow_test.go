package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"farm-loan-ledger/internal/domain/history"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/uow"
	"farm-loan-ledger/internal/domain/voucher"
	"farm-loan-ledger/pkg/id"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	l := makeLoan(id.NewID32(), loan.StatusPending)
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.History.Append(ctx, &history.Entry{LoanID: l.LoanID, Action: history.ActionSubmitted, ActorRole: "farmer"})
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	repos := guow.Repos()
	if _, err := repos.Loans.GetByLoanID(ctx, l.LoanID); err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	hist, err := repos.History.ListByLoan(ctx, l.LoanID)
	if err != nil || len(hist) != 1 || hist[0].Action != history.ActionSubmitted {
		t.Fatalf("history after commit = %+v, %v", hist, err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	sentinel := errors.New("boom")
	l := makeLoan(id.NewID32(), loan.StatusPending)
	_ = guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	if _, err := guow.Repos().Loans.GetByLoanID(ctx, l.LoanID); !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("expected loan not found after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	seed := makeLoan(id.NewID32(), loan.StatusApproved)
	seed.MerchantRestricted = true
	if err := db.Create(seed).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	err := guow.WithinLoanTx(ctx, seed.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l == nil || l.LoanID != seed.LoanID || l.Status != loan.StatusApproved {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		if err := r.Vouchers.Create(ctx, &voucher.Voucher{
			Code: id.NewVoucherCode(), LoanID: l.LoanID, MerchantCategory: l.Category(),
			Amount: decimal.NewFromFloat(l.Principal),
		}); err != nil {
			return err
		}
		if err := l.MarkDisbursed(loan.DisbursementVoucherIssued); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx commit err: %v", err)
	}

	repos := guow.Repos()
	got, err := repos.Loans.GetByLoanID(ctx, seed.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID post-commit: %v", err)
	}
	if got.DisbursementState != loan.DisbursementVoucherIssued {
		t.Fatalf("disbursement state not updated, got=%s", got.DisbursementState)
	}
	if _, err := repos.Vouchers.GetByLoanID(ctx, seed.LoanID); err != nil {
		t.Fatalf("voucher not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	seed := makeLoan(id.NewID32(), loan.StatusApproved)
	if err := db.Create(seed).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	sentinel := errors.New("stop")
	_ = guow.WithinLoanTx(ctx, seed.LoanID, func(r uow.Repos, l *loan.Loan) error {
		l.DisbursementState = loan.DisbursementFundsReleased
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	got, err := guow.Repos().Loans.GetByLoanID(ctx, seed.LoanID)
	if err != nil {
		t.Fatalf("post-rollback GetByLoanID: %v", err)
	}
	if got.DisbursementState != loan.DisbursementNone {
		t.Fatalf("expected NONE after rollback, got %s", got.DisbursementState)
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	guow := NewGormUoW(openTestDB(t))

	err := guow.WithinLoanTx(context.Background(), "ffffffffffffffffffffffffffffffff", func(uow.Repos, *loan.Loan) error {
		t.Fatalf("callback should not be called when loan missing")
		return nil
	})
	if !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplicantRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	applicantID := id.NewID32()
	seedProfile(t, db, applicantID, true)

	repo := NewApplicantRepository(db)
	p, err := repo.GetByApplicantID(ctx, applicantID)
	if err != nil {
		t.Fatalf("GetByApplicantID: %v", err)
	}
	if !p.HasBankDetails() || p.CreditScore != 720 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if _, err := repo.GetByApplicantID(ctx, id.NewID32()); err == nil {
		t.Fatal("expected error for unknown applicant")
	}
}
