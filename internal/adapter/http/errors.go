package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farm-loan-ledger/internal/domain/decision"
	"farm-loan-ledger/internal/domain/ledger"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/domain/voucher"
	"farm-loan-ledger/internal/infrastructure/lock"
	loanuc "farm-loan-ledger/internal/usecase/loan"
	"farm-loan-ledger/pkg/logger"
)

// statusFor maps domain errors to HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, loan.ErrApplicantNotFound),
		errors.Is(err, voucher.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrInvalidState), errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, loan.ErrAlreadyDisbursed), errors.Is(err, voucher.ErrAlreadyRedeemed):
		return http.StatusConflict
	case errors.Is(err, loan.ErrMissingBankDetails), errors.Is(err, loan.ErrInvalidStatus),
		errors.Is(err, decision.ErrInvalidFrequency), errors.Is(err, loanuc.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, ledger.ErrDuplicateReference),
		errors.Is(err, ledger.ErrLedgerHalted), errors.Is(err, lock.ErrNotAcquired),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		logger.Error(c.Request().Context(), "request failed", zap.String("path", c.Path()), zap.Error(err))
		if !errors.Is(err, ledger.ErrChainIntegrityViolation) {
			msg = "internal error"
		}
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}
