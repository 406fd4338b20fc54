package mysql

import (
	"context"

	"gorm.io/gorm"

	"farm-loan-ledger/internal/domain/history"
)

type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Append(ctx context.Context, e *history.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *HistoryRepository) ListByLoan(ctx context.Context, loanID string) ([]history.Entry, error) {
	var out []history.Entry
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("id ASC").Find(&out).Error
	return out, err
}
