package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"farm-loan-ledger/internal/domain/ledger"
)

// LedgerRepository never updates or deletes rows.
type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

func (r *LedgerRepository) Insert(ctx context.Context, e *ledger.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *LedgerRepository) Tip(ctx context.Context) (*ledger.Entry, error) {
	var out ledger.Entry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("sequence DESC").
		Limit(1).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LedgerRepository) Batch(ctx context.Context, after uint64, limit int) ([]ledger.Entry, error) {
	var out []ledger.Entry
	err := r.db.WithContext(ctx).
		Where("sequence > ?", after).
		Order("sequence ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Latest returns the newest entries first.
func (r *LedgerRepository) Latest(ctx context.Context, limit int) ([]ledger.Entry, error) {
	var out []ledger.Entry
	err := r.db.WithContext(ctx).Order("sequence DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *LedgerRepository) ExistsReference(ctx context.Context, referenceID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ledger.Entry{}).Where("reference_id = ?", referenceID).Count(&n).Error
	return n > 0, err
}

func (r *LedgerRepository) GetByLoanID(ctx context.Context, loanID string) (*ledger.Entry, error) {
	var out ledger.Entry
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LedgerRepository) Totals(ctx context.Context) (ledger.Totals, error) {
	var row struct {
		Count  int64
		Amount decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&ledger.Entry{}).
		Select("COUNT(*) AS count, SUM(amount) AS amount").
		Scan(&row).Error
	if err != nil {
		return ledger.Totals{}, err
	}
	t := ledger.Totals{Count: row.Count, Amount: decimal.Zero}
	if row.Amount.Valid {
		t.Amount = row.Amount.Decimal
	}
	return t, nil
}

func (r *LedgerRepository) State(ctx context.Context) (ledger.State, error) {
	return r.loadState(r.db.WithContext(ctx))
}

func (r *LedgerRepository) LockState(ctx context.Context) (ledger.State, error) {
	return r.loadState(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *LedgerRepository) loadState(q *gorm.DB) (ledger.State, error) {
	var st ledger.State
	err := q.Where("id = ?", ledger.StateID).Take(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.State{ID: ledger.StateID}, nil
	}
	return st, err
}

// SaveState upserts the single state row.
func (r *LedgerRepository) SaveState(ctx context.Context, st ledger.State) error {
	st.ID = ledger.StateID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"halted", "first_invalid_sequence", "updated_by", "updated_at"}),
		}).
		Create(&st).Error
}
