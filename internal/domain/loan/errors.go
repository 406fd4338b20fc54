package loan

import "errors"

var (
	ErrNotFound           = errors.New("loan not found")
	ErrApplicantNotFound  = errors.New("applicant not found")
	ErrInvalidState       = errors.New("loan must be APPROVED before fund release")
	ErrInvalidTransition  = errors.New("loan status cannot change once disbursement has started")
	ErrInvalidStatus      = errors.New("invalid loan status")
	ErrAlreadyDisbursed   = errors.New("loan already disbursed")
	ErrMissingBankDetails = errors.New("applicant bank details missing")
)
