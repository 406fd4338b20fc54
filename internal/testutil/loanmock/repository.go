package loanmock

import (
	"context"

	domain "farm-loan-ledger/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return domain.ErrNotFound; unset writes are no-ops.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByFarmerFn         func(ctx context.Context, farmerID string, limit, offset int) ([]domain.Loan, error)
	ListFn                 func(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Loan, error)
	CountByStatusFn        func(ctx context.Context) ([]domain.StatusCount, error)
	CountByDisbursementFn  func(ctx context.Context) (map[domain.DisbursementState]int64, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByFarmer(ctx context.Context, farmerID string, limit, offset int) ([]domain.Loan, error) {
	if m.ListByFarmerFn != nil {
		return m.ListByFarmerFn(ctx, farmerID, limit, offset)
	}
	return nil, nil
}

func (m *Repo) List(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, status, limit, offset)
	}
	return nil, nil
}

func (m *Repo) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx)
	}
	return nil, nil
}

func (m *Repo) CountByDisbursement(ctx context.Context) (map[domain.DisbursementState]int64, error) {
	if m.CountByDisbursementFn != nil {
		return m.CountByDisbursementFn(ctx)
	}
	return map[domain.DisbursementState]int64{}, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
