package voucher

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

var (
	ErrNotFound        = errors.New("voucher not found")
	ErrAlreadyRedeemed = errors.New("voucher already redeemed")
)

// Table: merchant_vouchers
type Voucher struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// VCH-XXXXXXXXXXXX, see id.NewVoucherCode
	Code string `gorm:"column:voucher_code;size:32;not null;uniqueIndex:ux_vouchers_code" json:"voucher_code"`
	// public loan id; unique so a loan can never hold two vouchers
	LoanID           string          `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_vouchers_loan" json:"loan_id"`
	MerchantCategory string          `gorm:"column:merchant_category;size:64;not null" json:"merchant_category"`
	Amount           decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Redeemed         bool            `gorm:"column:redeemed;not null;default:false" json:"redeemed"`
	RedeemedAt       null.Time       `gorm:"column:redeemed_at" json:"redeemed_at"`
	IssuedBy         string          `gorm:"column:issued_by;size:32" json:"issued_by"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Voucher) TableName() string { return "merchant_vouchers" }
