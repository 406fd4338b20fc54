package disbursement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"farm-loan-ledger/internal/domain/actor"
	"farm-loan-ledger/internal/domain/applicant"
	"farm-loan-ledger/internal/domain/history"
	"farm-loan-ledger/internal/domain/ledger"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/uow"
	"farm-loan-ledger/internal/domain/voucher"
	"farm-loan-ledger/internal/infrastructure/lock"
	"farm-loan-ledger/internal/infrastructure/metrics"
	ledgeruc "farm-loan-ledger/internal/usecase/ledger"
	"farm-loan-ledger/pkg/id"
	"farm-loan-ledger/pkg/logger"
)

// Appender is the slice of the ledger service the coordinator needs.
type Appender interface {
	Append(ctx context.Context, repo ledger.Repository, in ledger.AppendInput) (*ledger.Entry, error)
	Verify(ctx context.Context) (ledger.VerifyReport, error)
}

var _ Appender = (*ledgeruc.Service)(nil)

type Config struct {
	TxTimeout  time.Duration
	MaxRetries uint64
}

type Usecase struct {
	uow     uow.UnitOfWork
	ledger  Appender
	locker  lock.Locker
	cfg     Config
	metrics *metrics.Registry
	now     func() time.Time
}

// NewUsecase wires the coordinator. locker may be nil, leaving the row lock and
// unique indexes as the only guards.
func NewUsecase(tx uow.UnitOfWork, l Appender, locker lock.Locker, cfg Config, m *metrics.Registry) *Usecase {
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = 5 * time.Second
	}
	if locker == nil {
		locker = lock.Chain{}
	}
	return &Usecase{uow: tx, ledger: l, locker: locker, cfg: cfg, metrics: m, now: time.Now}
}

// Release disburses an approved loan exactly once: a voucher for merchant-restricted
// loans, a ledger transfer otherwise.
func (u *Usecase) Release(ctx context.Context, loanID string, by actor.Actor) (*Result, error) {
	lctx, lcancel := context.WithTimeout(ctx, u.cfg.TxTimeout)
	unlock, err := u.locker.Lock(lctx, loanID)
	lcancel()
	if err != nil {
		u.metrics.ObserveDisbursement("lock_timeout")
		return nil, err
	}
	defer unlock()

	var res *Result
	op := func() error {
		tctx, cancel := context.WithTimeout(ctx, u.cfg.TxTimeout)
		defer cancel()

		r, err := u.releaseOnce(tctx, loanID, by)
		if err == nil {
			res = r
			return nil
		}
		if retryable(ctx, err) {
			logger.Warn(ctx, "release conflict, retrying", zap.String("loan_id", loanID), zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), u.cfg.MaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if errors.Is(err, ledger.ErrChainIntegrityViolation) {
			// the append tx rolled back; a full replay records the halt for every instance
			_, _ = u.ledger.Verify(ctx)
		}
		u.metrics.ObserveDisbursement(outcome(err))
		logger.Warn(ctx, "release failed", zap.String("loan_id", loanID), zap.Error(err))
		return nil, err
	}

	u.metrics.ObserveDisbursement(strings.ToLower(res.DisbursementState))
	logger.Info(ctx, "loan disbursed",
		zap.String("loan_id", loanID),
		zap.String("state", res.DisbursementState),
		zap.String("actor_id", by.ID),
	)
	return res, nil
}

func (u *Usecase) releaseOnce(ctx context.Context, loanID string, by actor.Actor) (*Result, error) {
	var res *Result
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.CanDisburse(); err != nil {
			return err
		}
		amount := decimal.NewFromFloat(l.Principal).Round(2)
		now := u.now().UTC()

		var (
			action  history.Action
			remarks string
		)
		res = &Result{LoanID: l.LoanID}

		if l.MerchantRestricted {
			v := &voucher.Voucher{
				Code:             id.NewVoucherCode(),
				LoanID:           l.LoanID,
				MerchantCategory: l.Category(),
				Amount:           amount,
				IssuedBy:         by.ID,
				CreatedAt:        now,
			}
			if err := r.Vouchers.Create(ctx, v); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%w: voucher: %v", ledger.ErrConflict, err)
				}
				return err
			}
			if err := l.MarkDisbursed(loan.DisbursementVoucherIssued); err != nil {
				return err
			}
			action, remarks = history.ActionVoucher, v.Code
			res.Voucher = voucherDTO(v)
		} else {
			p, err := r.Applicants.GetByApplicantID(ctx, l.FarmerID)
			if errors.Is(err, applicant.ErrNotFound) {
				return loan.ErrApplicantNotFound
			}
			if err != nil {
				return err
			}
			if !p.HasBankDetails() {
				return loan.ErrMissingBankDetails
			}
			e, err := u.ledger.Append(ctx, r.Ledger, ledger.AppendInput{
				ReferenceID: id.NewReference(id.PrefixTransfer),
				LoanID:      l.LoanID,
				Amount:      amount,
				Destination: p.Destination(),
				Timestamp:   now,
				ActorID:     by.ID,
			})
			if err != nil {
				return err
			}
			if err := l.MarkDisbursed(loan.DisbursementFundsReleased); err != nil {
				return err
			}
			action, remarks = history.ActionTransfer, e.ReferenceID
			res.Transfer = &TransferDTO{
				Sequence:    e.Sequence,
				ReferenceID: e.ReferenceID,
				Amount:      e.Amount.StringFixed(2),
				Destination: e.Destination,
				Timestamp:   e.Timestamp,
				Hash:        e.Hash,
			}
		}

		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		res.DisbursementState = string(l.DisbursementState)
		return r.History.Append(ctx, &history.Entry{
			LoanID:     l.LoanID,
			Action:     action,
			FromStatus: string(loan.DisbursementNone),
			ToStatus:   string(l.DisbursementState),
			ActorID:    by.ID,
			ActorRole:  string(by.Role),
			Remarks:    remarks,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RedeemVoucher marks a voucher used. A second redemption fails with voucher.ErrAlreadyRedeemed.
func (u *Usecase) RedeemVoucher(ctx context.Context, code string, by actor.Actor) (*VoucherDTO, error) {
	var out *VoucherDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		now := u.now().UTC()
		if err := r.Vouchers.MarkRedeemed(ctx, code, now); err != nil {
			return err
		}
		v, err := r.Vouchers.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		out = voucherDTO(v)
		return r.History.Append(ctx, &history.Entry{
			LoanID:    v.LoanID,
			Action:    history.ActionRedeemed,
			ActorID:   by.ID,
			ActorRole: string(by.Role),
			Remarks:   v.Code,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "voucher redeemed", zap.String("voucher_code", code), zap.String("actor_id", by.ID))
	return out, nil
}

func voucherDTO(v *voucher.Voucher) *VoucherDTO {
	d := &VoucherDTO{
		Code:             v.Code,
		LoanID:           v.LoanID,
		MerchantCategory: v.MerchantCategory,
		Amount:           v.Amount.StringFixed(2),
		Redeemed:         v.Redeemed,
		IssuedAt:         v.CreatedAt.UTC(),
	}
	if v.RedeemedAt.Valid {
		t := v.RedeemedAt.Time.UTC()
		d.RedeemedAt = &t
	}
	return d
}

// retryable reports serialization failures worth another attempt. Timeouts of the
// per-attempt context count only while the caller's context is still alive.
func retryable(parent context.Context, err error) bool {
	switch {
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, ledger.ErrDuplicateReference):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return parent.Err() == nil
	}
	return false
}

func outcome(err error) string {
	switch {
	case errors.Is(err, loan.ErrAlreadyDisbursed):
		return "already_disbursed"
	case errors.Is(err, loan.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, loan.ErrMissingBankDetails):
		return "missing_bank_details"
	case errors.Is(err, ledger.ErrConflict):
		return "conflict"
	case errors.Is(err, ledger.ErrLedgerHalted), errors.Is(err, ledger.ErrChainIntegrityViolation):
		return "ledger_halted"
	}
	return "error"
}
