package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"farm-loan-ledger/internal/domain/actor"
	"farm-loan-ledger/internal/domain/history"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/uow"
	"farm-loan-ledger/internal/infrastructure/metrics"
	"farm-loan-ledger/pkg/logger"
)

// ApproveRemarks is recorded by the approver shortcut.
const ApproveRemarks = "approved by approver"

type Usecase struct {
	uow     uow.UnitOfWork
	metrics *metrics.Registry
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, m *metrics.Registry) *Usecase {
	return &Usecase{uow: tx, metrics: m, now: time.Now}
}

// SetStatus overrides the decision on a loan that has not started disbursement.
func (u *Usecase) SetStatus(ctx context.Context, in SetStatusInput) (*StatusDTO, error) {
	if !in.Status.Valid() {
		return nil, loan.ErrInvalidStatus
	}
	var dto *StatusDTO

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		from := l.Status
		now := u.now().UTC()
		if err := l.SetStatus(in.Status, in.Remarks, now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.History.Append(ctx, &history.Entry{
			LoanID:     l.LoanID,
			Action:     history.ActionStatusChange,
			FromStatus: string(from),
			ToStatus:   string(l.Status),
			ActorID:    in.Actor.ID,
			ActorRole:  string(in.Actor.Role),
			Remarks:    in.Remarks,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		dto = &StatusDTO{
			LoanID:            l.LoanID,
			Status:            string(l.Status),
			PreviousStatus:    string(from),
			DisbursementState: string(l.DisbursementState),
			Remarks:           l.Remarks.String,
			UpdatedAt:         l.StatusUpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.ObserveTransition(dto.Status, string(in.Actor.Role))
	logger.Info(ctx, "loan status changed",
		zap.String("loan_id", dto.LoanID),
		zap.String("from", dto.PreviousStatus),
		zap.String("to", dto.Status),
		zap.String("actor_id", in.Actor.ID),
		zap.String("role", string(in.Actor.Role)),
	)
	return dto, nil
}

// Approve is the approver shortcut: SetStatus(APPROVED) with fixed remarks.
func (u *Usecase) Approve(ctx context.Context, loanID string, by actor.Actor) (*StatusDTO, error) {
	return u.SetStatus(ctx, SetStatusInput{
		LoanID:  loanID,
		Status:  loan.StatusApproved,
		Remarks: ApproveRemarks,
		Actor:   by,
	})
}
