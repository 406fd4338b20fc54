package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	mw "farm-loan-ledger/internal/adapter/middleware"
	"farm-loan-ledger/internal/domain/ledger"
	ledgeruc "farm-loan-ledger/internal/usecase/ledger"
	"farm-loan-ledger/pkg/logger"
)

type LedgerHandler struct {
	svc   *ledgeruc.Service
	audit *ledgeruc.Audit
}

func NewLedgerHandler(svc *ledgeruc.Service, audit *ledgeruc.Audit) *LedgerHandler {
	return &LedgerHandler{svc: svc, audit: audit}
}

// Transactions: public, newest first, ?limit= (default 50, max 500).
func (h *LedgerHandler) Transactions(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	out, err := h.audit.List(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": out})
}

// PublicVerify always answers 200 with the report; a broken chain shows as valid=false.
func (h *LedgerHandler) PublicVerify(c echo.Context) error {
	report, err := h.svc.Verify(c.Request().Context())
	if err != nil && !errors.Is(err, ledger.ErrChainIntegrityViolation) {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *LedgerHandler) Summary(c echo.Context) error {
	out, err := h.audit.Summary(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Verify is the operator endpoint; a violation is a 500 carrying the report.
func (h *LedgerHandler) Verify(c echo.Context) error {
	report, err := h.svc.Verify(c.Request().Context())
	if errors.Is(err, ledger.ErrChainIntegrityViolation) {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":  err.Error(),
			"report": report,
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *LedgerHandler) Resume(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	report, err := h.svc.Resume(c.Request().Context(), a)
	if errors.Is(err, ledger.ErrChainIntegrityViolation) {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":  err.Error(),
			"halted": true,
			"report": report,
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"halted": h.svc.Halted(c.Request().Context()), "report": report})
}

// Export streams the audit CSV.
func (h *LedgerHandler) Export(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="ledger-audit-`+time.Now().UTC().Format("20060102")+`.csv"`)
	res.WriteHeader(http.StatusOK)
	if err := h.audit.ExportCSV(c.Request().Context(), res); err != nil {
		// headers are gone; all we can do is log and cut the stream
		logger.Error(c.Request().Context(), "audit export failed", zap.Error(err))
	}
	return nil
}
