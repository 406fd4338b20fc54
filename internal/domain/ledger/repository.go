package ledger

import "context"

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	// Tip returns the highest-sequence entry, row-locked when inside a tx; nil on empty ledger.
	Tip(ctx context.Context) (*Entry, error)
	// Batch returns up to limit entries with sequence > after, ascending.
	Batch(ctx context.Context, after uint64, limit int) ([]Entry, error)
	// Latest returns the newest entries first, without locking.
	Latest(ctx context.Context, limit int) ([]Entry, error)
	ExistsReference(ctx context.Context, referenceID string) (bool, error)
	// nil, nil when the loan has no entry
	GetByLoanID(ctx context.Context, loanID string) (*Entry, error)
	Totals(ctx context.Context) (Totals, error)
	// State reads the shared halt flag; a missing row reads as not halted.
	State(ctx context.Context) (State, error)
	// LockState is State with a row lock, for use inside the append tx.
	LockState(ctx context.Context) (State, error)
	SaveState(ctx context.Context, st State) error
}
