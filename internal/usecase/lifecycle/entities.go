package lifecycle

import (
	"time"

	"farm-loan-ledger/internal/domain/actor"
	"farm-loan-ledger/internal/domain/loan"
)

type SetStatusInput struct {
	LoanID  string
	Status  loan.Status
	Remarks string
	Actor   actor.Actor
}

type StatusDTO struct {
	LoanID            string    `json:"loan_id"`
	Status            string    `json:"status"`
	PreviousStatus    string    `json:"previous_status"`
	DisbursementState string    `json:"disbursement_state"`
	Remarks           string    `json:"remarks,omitempty"`
	UpdatedAt         time.Time `json:"status_updated_at"`
}
