package disbursement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/uow"
	"farm-loan-ledger/internal/domain/voucher"
	"farm-loan-ledger/internal/testutil/historymock"
	"farm-loan-ledger/internal/testutil/loanmock"
	"farm-loan-ledger/internal/testutil/uowmock"
	"farm-loan-ledger/internal/testutil/vouchermock"
)

func TestRelease_VoucherCodeCollisionRetriesWithFreshCode(t *testing.T) {
	var codes []string
	vouchers := &vouchermock.Repo{
		CreateFn: func(_ context.Context, v *voucher.Voucher) error {
			codes = append(codes, v.Code)
			if len(codes) == 1 {
				return gorm.ErrDuplicatedKey
			}
			return nil
		},
	}
	var saved *loan.Loan
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
			return &loan.Loan{LoanID: "LN-1", Principal: 42000.5, Status: loan.StatusApproved,
				DisbursementState: loan.DisbursementNone, MerchantRestricted: true}, nil
		},
		SaveFn: func(_ context.Context, l *loan.Loan) error { saved = l; return nil },
	}
	hist := &historymock.Recorder{}
	tx := uowmock.ForRepos(uow.Repos{Loans: loans, Vouchers: vouchers, History: hist})

	uc := NewUsecase(tx, nil, nil, Config{TxTimeout: time.Second, MaxRetries: 2}, nil)
	res, err := uc.Release(context.Background(), "LN-1", treasurer)
	require.NoError(t, err)

	require.Len(t, codes, 2)
	assert.NotEqual(t, codes[0], codes[1])
	assert.Equal(t, codes[1], res.Voucher.Code)
	assert.Equal(t, loan.DefaultMerchantCategory, res.Voucher.MerchantCategory)
	assert.Equal(t, "42000.50", res.Voucher.Amount)
	require.NotNil(t, saved)
	assert.Equal(t, loan.DisbursementVoucherIssued, saved.DisbursementState)
	assert.Len(t, hist.Entries, 1)
}

func TestRedeemVoucher_StoreError(t *testing.T) {
	vouchers := &vouchermock.Repo{
		MarkRedeemedFn: func(context.Context, string, time.Time) error { return voucher.ErrAlreadyRedeemed },
	}
	hist := &historymock.Recorder{}
	uc := NewUsecase(uowmock.ForRepos(uow.Repos{Vouchers: vouchers, History: hist}), nil, nil, Config{}, nil)

	_, err := uc.RedeemVoucher(context.Background(), "VCH-ABCDEF012345", treasurer)
	assert.ErrorIs(t, err, voucher.ErrAlreadyRedeemed)
	assert.Empty(t, hist.Entries)
}
