package disbursement

import "time"

type VoucherDTO struct {
	Code             string     `json:"voucher_code"`
	LoanID           string     `json:"loan_id"`
	MerchantCategory string     `json:"merchant_category"`
	Amount           string     `json:"amount"`
	Redeemed         bool       `json:"redeemed"`
	RedeemedAt       *time.Time `json:"redeemed_at,omitempty"`
	IssuedAt         time.Time  `json:"issued_at"`
}

type TransferDTO struct {
	Sequence    uint64    `json:"sequence"`
	ReferenceID string    `json:"reference_id"`
	Amount      string    `json:"amount"`
	Destination string    `json:"to_account"`
	Timestamp   time.Time `json:"timestamp"`
	Hash        string    `json:"hash"`
}

// Result carries exactly one of Voucher or Transfer.
type Result struct {
	LoanID            string       `json:"loan_id"`
	DisbursementState string       `json:"disbursement_state"`
	Voucher           *VoucherDTO  `json:"voucher,omitempty"`
	Transfer          *TransferDTO `json:"transfer,omitempty"`
}
