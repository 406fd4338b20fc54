package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "farm-loan-ledger/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error
	if err != nil {
		return nil, notFound(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

// GetByLoanIDForUpdate issues SELECT ... FOR UPDATE (dropped by sqlite, which locks the whole db).
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) ListByFarmer(ctx context.Context, farmerID string, limit, offset int) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// List returns all loans, optionally filtered by status ("" = any).
func (r *LoanRepository) List(ctx context.Context, status loanDomain.Status, limit, offset int) ([]loanDomain.Loan, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []loanDomain.Loan
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) CountByStatus(ctx context.Context) ([]loanDomain.StatusCount, error) {
	var rows []struct {
		Status string
		Count  int64
		Amount float64
	}
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(principal), 0) AS amount").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]loanDomain.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, loanDomain.StatusCount{Status: loanDomain.Status(row.Status), Count: row.Count, Amount: row.Amount})
	}
	return out, nil
}

func (r *LoanRepository) CountByDisbursement(ctx context.Context) (map[loanDomain.DisbursementState]int64, error) {
	var rows []struct {
		DisbursementState string
		Count             int64
	}
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Select("disbursement_state, COUNT(*) AS count").
		Group("disbursement_state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[loanDomain.DisbursementState]int64, len(rows))
	for _, row := range rows {
		out[loanDomain.DisbursementState(row.DisbursementState)] = row.Count
	}
	return out, nil
}

// notFound maps gorm's record-not-found to a domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
