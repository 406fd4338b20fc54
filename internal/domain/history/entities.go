package history

import (
	"context"
	"time"
)

type Action string

const (
	ActionSubmitted    Action = "SUBMITTED"
	ActionStatusChange Action = "STATUS_CHANGED"
	ActionVoucher      Action = "VOUCHER_ISSUED"
	ActionTransfer     Action = "FUNDS_RELEASED"
	ActionRedeemed     Action = "VOUCHER_REDEEMED"
)

// Table: loan_history. Append-only.
type Entry struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID     string    `gorm:"column:loan_id;size:32;not null;index:idx_history_loan" json:"loan_id"`
	Action     Action    `gorm:"column:action;size:32;not null" json:"action"`
	FromStatus string    `gorm:"column:from_status;size:16" json:"from_status,omitempty"`
	ToStatus   string    `gorm:"column:to_status;size:16" json:"to_status,omitempty"`
	ActorID    string    `gorm:"column:performed_by;size:32" json:"performed_by"`
	ActorRole  string    `gorm:"column:actor_role;size:16" json:"actor_role"`
	Remarks    string    `gorm:"column:remarks;type:text" json:"remarks,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "loan_history" }

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByLoan(ctx context.Context, loanID string) ([]Entry, error)
}
