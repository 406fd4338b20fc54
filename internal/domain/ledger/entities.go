package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Table: ledger_entries. Append-only; rows are never updated or deleted.
type Entry struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Sequence    uint64          `gorm:"column:sequence;not null;uniqueIndex:ux_ledger_sequence" json:"sequence"`
	ReferenceID string          `gorm:"column:reference_id;size:32;not null;uniqueIndex:ux_ledger_reference" json:"reference_id"`
	LoanID      string          `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_ledger_loan" json:"loan_id"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Destination string          `gorm:"column:to_account;size:64;not null" json:"to_account"`
	Timestamp   time.Time       `gorm:"column:timestamp;precision:6;not null" json:"timestamp"`
	// NULL only for genesis
	PrevHash  null.String `gorm:"column:prev_hash;size:64;uniqueIndex:ux_ledger_prev_hash" json:"prev_hash"`
	Hash      string      `gorm:"column:hash;size:64;not null;uniqueIndex:ux_ledger_hash" json:"hash"`
	CreatedBy string      `gorm:"column:created_by;size:32" json:"-"`
}

func (Entry) TableName() string { return "ledger_entries" }

// AppendInput is what a caller supplies; sequence and hashes are assigned by the ledger.
type AppendInput struct {
	ReferenceID string
	LoanID      string
	Amount      decimal.Decimal
	Destination string
	Timestamp   time.Time
	ActorID     string
}

type VerifyReport struct {
	Valid   bool   `json:"valid"`
	Entries uint64 `json:"entries"`
	// 0 when the chain is valid
	FirstInvalidSequence uint64 `json:"first_invalid_sequence,omitempty"`
	TipHash              string `json:"tip_hash,omitempty"`
}

type Totals struct {
	Count  int64
	Amount decimal.Decimal
}

// StateID is the primary key of the single ledger_state row.
const StateID = 1

// Table: ledger_state. One row shared by every process writing the ledger.
type State struct {
	ID                   uint8     `gorm:"column:id;primaryKey;autoIncrement:false"`
	Halted               bool      `gorm:"column:halted;not null"`
	FirstInvalidSequence uint64    `gorm:"column:first_invalid_sequence;not null"`
	UpdatedBy            string    `gorm:"column:updated_by;size:32"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (State) TableName() string { return "ledger_state" }
