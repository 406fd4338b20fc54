package ledger

import "errors"

var (
	ErrDuplicateReference      = errors.New("ledger reference id already used")
	ErrConflict                = errors.New("ledger append conflict")
	ErrChainIntegrityViolation = errors.New("ledger chain integrity violation")
	ErrLedgerHalted            = errors.New("ledger halted pending investigation")
)
