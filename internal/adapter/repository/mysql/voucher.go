package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	voucherDomain "farm-loan-ledger/internal/domain/voucher"
)

type VoucherRepository struct{ db *gorm.DB }

func NewVoucherRepository(db *gorm.DB) *VoucherRepository { return &VoucherRepository{db: db} }

// Create relies on the unique loan_id and voucher_code indexes; duplicates surface as gorm.ErrDuplicatedKey.
func (r *VoucherRepository) Create(ctx context.Context, v *voucherDomain.Voucher) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*voucherDomain.Voucher, error) {
	var out voucherDomain.Voucher
	if err := r.db.WithContext(ctx).Where("voucher_code = ?", code).First(&out).Error; err != nil {
		return nil, notFound(err, voucherDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *VoucherRepository) GetByLoanID(ctx context.Context, loanID string) (*voucherDomain.Voucher, error) {
	var out voucherDomain.Voucher
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error; err != nil {
		return nil, notFound(err, voucherDomain.ErrNotFound)
	}
	return &out, nil
}

// MarkRedeemed is a conditional update; zero rows means missing or already redeemed.
func (r *VoucherRepository) MarkRedeemed(ctx context.Context, code string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&voucherDomain.Voucher{}).
		Where("voucher_code = ? AND redeemed = ?", code, false).
		Updates(map[string]any{"redeemed": true, "redeemed_at": at.UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := r.GetByCode(ctx, code); err != nil {
		return err
	}
	return voucherDomain.ErrAlreadyRedeemed
}

func (r *VoucherRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&voucherDomain.Voucher{}).Count(&n).Error
	return n, err
}
