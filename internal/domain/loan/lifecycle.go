package loan

import "time"

// CanSetStatus reports whether an admin/approver may write status `to` on l.
// Once disbursement has started the status axis is frozen.
func (l *Loan) CanSetStatus(to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if l.DisbursementState != DisbursementNone && l.DisbursementState != "" {
		return ErrInvalidTransition
	}
	return nil
}

// SetStatus applies a status write after CanSetStatus passes.
func (l *Loan) SetStatus(to Status, remarks string, now time.Time) error {
	if err := l.CanSetStatus(to); err != nil {
		return err
	}
	l.Status = to
	l.StatusUpdatedAt = now.UTC()
	if remarks != "" {
		l.Remarks.SetValid(remarks)
	}
	return nil
}

// CanDisburse is the release guard: APPROVED and never disbursed.
func (l *Loan) CanDisburse() error {
	if l.Status != StatusApproved {
		return ErrInvalidState
	}
	if l.DisbursementState != DisbursementNone && l.DisbursementState != "" {
		return ErrAlreadyDisbursed
	}
	return nil
}

// MarkDisbursed moves the disbursement axis to a terminal state.
func (l *Loan) MarkDisbursed(to DisbursementState) error {
	if err := l.CanDisburse(); err != nil {
		return err
	}
	switch to {
	case DisbursementVoucherIssued, DisbursementFundsReleased:
		l.DisbursementState = to
		return nil
	}
	return ErrInvalidTransition
}
