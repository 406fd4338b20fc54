package historymock

import (
	"context"
	"sync"

	"farm-loan-ledger/internal/domain/history"
)

var _ history.Repository = (*Recorder)(nil)

// Recorder keeps appended entries in memory.
type Recorder struct {
	mu      sync.Mutex
	Entries []history.Entry
	Err     error
}

func (r *Recorder) Append(_ context.Context, e *history.Entry) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, *e)
	return nil
}

func (r *Recorder) ListByLoan(_ context.Context, loanID string) ([]history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []history.Entry
	for _, e := range r.Entries {
		if e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}
