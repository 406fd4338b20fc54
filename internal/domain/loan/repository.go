package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// row-locked read, only meaningful inside a transaction
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByFarmer(ctx context.Context, farmerID string, limit, offset int) ([]Loan, error)
	List(ctx context.Context, status Status, limit, offset int) ([]Loan, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountByDisbursement(ctx context.Context) (map[DisbursementState]int64, error)
	Save(ctx context.Context, l *Loan) error
}
