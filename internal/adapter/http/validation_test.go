package http

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"farm-loan-ledger/internal/domain/decision"
	"farm-loan-ledger/internal/domain/ledger"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/voucher"
	"farm-loan-ledger/internal/infrastructure/lock"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestHex32Validation(t *testing.T) {
	type P struct {
		ActorID string `json:"actor_id" validate:"hex32"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{ActorID: strings.Repeat("a", 32)}); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}
	for _, s := range []string{
		"",
		strings.Repeat("A", 32),
		"deadbeef",
		strings.Repeat("g", 32),
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x",
	} {
		err := cv.Validate(P{ActorID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "actor_id", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestDec2Validation(t *testing.T) {
	type P struct {
		Principal float64 `json:"principal" validate:"dec2"`
	}
	cv := NewValidator()

	for _, v := range []float64{120000, 1.29, 2.00, 0.9} {
		if err := cv.Validate(P{Principal: v}); err != nil {
			t.Fatalf("expected dec2 OK for %v, got %v", v, err)
		}
	}
	for _, v := range []float64{1.234, 2.9999} {
		err := cv.Validate(P{Principal: v})
		if err == nil || !containsFieldMsg(ToFieldErrors(err), "principal", "2 decimal places") {
			t.Fatalf("expected dec2 error for %v, got %v", v, err)
		}
	}
}

func TestFrequencyAndStatusValidation(t *testing.T) {
	type P struct {
		Frequency string `json:"repayment_frequency" validate:"frequency"`
		Status    string `json:"status"              validate:"status"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{Frequency: "post-harvest", Status: "approved"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	err := cv.Validate(P{Frequency: "weekly", Status: "CANCELLED"})
	fe := ToFieldErrors(err)
	if !containsFieldMsg(fe, "repayment_frequency", "monthly, quarterly, post-harvest") ||
		!containsFieldMsg(fe, "status", "PENDING, APPROVED, REJECTED") {
		t.Fatalf("unexpected field errors: %+v", fe)
	}
}

func TestToFieldErrors_NonValidatorError(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 || fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("got %+v", fe)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		loan.ErrNotFound:                  http.StatusNotFound,
		loan.ErrApplicantNotFound:         http.StatusNotFound,
		voucher.ErrNotFound:               http.StatusNotFound,
		loan.ErrInvalidState:              http.StatusConflict,
		loan.ErrInvalidTransition:         http.StatusConflict,
		loan.ErrAlreadyDisbursed:          http.StatusConflict,
		voucher.ErrAlreadyRedeemed:        http.StatusConflict,
		loan.ErrMissingBankDetails:        http.StatusUnprocessableEntity,
		loan.ErrInvalidStatus:             http.StatusUnprocessableEntity,
		decision.ErrInvalidFrequency:      http.StatusUnprocessableEntity,
		ledger.ErrConflict:                http.StatusServiceUnavailable,
		ledger.ErrDuplicateReference:      http.StatusServiceUnavailable,
		ledger.ErrLedgerHalted:            http.StatusServiceUnavailable,
		lock.ErrNotAcquired:               http.StatusServiceUnavailable,
		ledger.ErrChainIntegrityViolation: http.StatusInternalServerError,
		errors.New("anything else"):       http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := statusFor(err); got != want {
			t.Fatalf("statusFor(%v) = %d, want %d", err, got, want)
		}
	}
	wrapped := errors.Join(errors.New("ctx"), loan.ErrAlreadyDisbursed)
	if statusFor(wrapped) != http.StatusConflict {
		t.Fatalf("wrapped errors must be matched with errors.Is")
	}
}
