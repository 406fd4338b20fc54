package vouchermock

import (
	"context"
	"time"

	domain "farm-loan-ledger/internal/domain/voucher"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies voucher.Repository.
type Repo struct {
	CreateFn       func(ctx context.Context, v *domain.Voucher) error
	GetByCodeFn    func(ctx context.Context, code string) (*domain.Voucher, error)
	GetByLoanIDFn  func(ctx context.Context, loanID string) (*domain.Voucher, error)
	MarkRedeemedFn func(ctx context.Context, code string, at time.Time) error
	CountFn        func(ctx context.Context) (int64, error)
}

func (m *Repo) Create(ctx context.Context, v *domain.Voucher) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, v)
	}
	return nil
}

func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Voucher, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) MarkRedeemed(ctx context.Context, code string, at time.Time) error {
	if m.MarkRedeemedFn != nil {
		return m.MarkRedeemedFn(ctx, code, at)
	}
	return nil
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}
