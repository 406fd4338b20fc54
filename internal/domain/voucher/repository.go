package voucher

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts a voucher; the unique loan_id index rejects a second one per loan.
	Create(ctx context.Context, v *Voucher) error

	GetByCode(ctx context.Context, code string) (*Voucher, error)
	GetByLoanID(ctx context.Context, loanID string) (*Voucher, error)

	// MarkRedeemed flips redeemed only if it is still false. Returns ErrAlreadyRedeemed otherwise.
	MarkRedeemed(ctx context.Context, code string, at time.Time) error

	Count(ctx context.Context) (int64, error)
}
