package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	domain "farm-loan-ledger/internal/domain/ledger"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/uow"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ExportColumns is the audit CSV header, in order.
var ExportColumns = []string{
	"sequence", "reference_id", "loan_id", "amount", "to_account",
	"timestamp", "hash", "prev_hash", "status",
}

type EntryDTO struct {
	Sequence    uint64    `json:"sequence"`
	ReferenceID string    `json:"reference_id"`
	LoanID      string    `json:"loan_id"`
	Amount      string    `json:"amount"`
	Destination string    `json:"to_account"`
	Timestamp   time.Time `json:"timestamp"`
	PrevHash    string    `json:"prev_hash,omitempty"`
	Hash        string    `json:"hash"`
}

type SummaryDTO struct {
	Transfers        int64  `json:"transfers"`
	TotalTransferred string `json:"total_transferred"`
	ApprovedLoans    int64  `json:"approved_loans"`
	VouchersIssued   int64  `json:"vouchers_issued"`
	TipHash          string `json:"tip_hash,omitempty"`
}

// Audit serves the read side of the ledger. Repos must be bound to the pool, not a tx.
type Audit struct {
	repos uow.Repos
	batch int
}

func NewAudit(repos uow.Repos, batch int) *Audit {
	if batch <= 0 {
		batch = defaultBatch
	}
	return &Audit{repos: repos, batch: batch}
}

func toDTO(e domain.Entry) EntryDTO {
	return EntryDTO{
		Sequence:    e.Sequence,
		ReferenceID: e.ReferenceID,
		LoanID:      e.LoanID,
		Amount:      e.Amount.StringFixed(2),
		Destination: e.Destination,
		Timestamp:   e.Timestamp.UTC(),
		PrevHash:    e.PrevHash.String,
		Hash:        e.Hash,
	}
}

// List returns the newest entries first. limit is clamped to [1, MaxListLimit].
func (a *Audit) List(ctx context.Context, limit int) ([]EntryDTO, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	rows, err := a.repos.Ledger.Latest(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]EntryDTO, 0, len(rows))
	for _, e := range rows {
		out = append(out, toDTO(e))
	}
	return out, nil
}

// ExportCSV streams every entry in sequence order with the loan's current status.
func (a *Audit) ExportCSV(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}

	statuses := map[string]string{}
	var after uint64
	for {
		batch, err := a.repos.Ledger.Batch(ctx, after, a.batch)
		if err != nil {
			return err
		}
		for _, e := range batch {
			status, ok := statuses[e.LoanID]
			if !ok {
				status, err = a.loanStatus(ctx, e.LoanID)
				if err != nil {
					return err
				}
				statuses[e.LoanID] = status
			}
			rec := []string{
				strconv.FormatUint(e.Sequence, 10),
				e.ReferenceID,
				e.LoanID,
				e.Amount.StringFixed(2),
				e.Destination,
				e.Timestamp.UTC().Format(time.RFC3339Nano),
				e.Hash,
				e.PrevHash.String,
				status,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		if len(batch) < a.batch {
			break
		}
		after = batch[len(batch)-1].Sequence
	}
	cw.Flush()
	return cw.Error()
}

func (a *Audit) loanStatus(ctx context.Context, loanID string) (string, error) {
	l, err := a.repos.Loans.GetByLoanID(ctx, loanID)
	if errors.Is(err, loan.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(l.Status), nil
}

// Summary is the public transparency view.
func (a *Audit) Summary(ctx context.Context) (*SummaryDTO, error) {
	totals, err := a.repos.Ledger.Totals(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := a.repos.Loans.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	vouchers, err := a.repos.Vouchers.Count(ctx)
	if err != nil {
		return nil, err
	}
	// plain read; Tip row-locks and would contend with appends
	latest, err := a.repos.Ledger.Latest(ctx, 1)
	if err != nil {
		return nil, err
	}

	out := &SummaryDTO{
		Transfers:        totals.Count,
		TotalTransferred: totals.Amount.StringFixed(2),
		VouchersIssued:   vouchers,
	}
	for _, c := range counts {
		if c.Status == loan.StatusApproved {
			out.ApprovedLoans = c.Count
		}
	}
	if len(latest) > 0 {
		out.TipHash = latest[0].Hash
	}
	return out, nil
}
