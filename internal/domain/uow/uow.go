package uow

import (
	"context"

	"farm-loan-ledger/internal/domain/applicant"
	"farm-loan-ledger/internal/domain/history"
	"farm-loan-ledger/internal/domain/ledger"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/voucher"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans      loan.Repository
	Vouchers   voucher.Repository
	Ledger     ledger.Repository
	History    history.Repository
	Applicants applicant.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in; loan.ErrNotFound if absent
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
