package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	ledgerHalted func(ctx context.Context) bool
}

// NewHandler: halted may be nil.
func NewHandler(halted func(ctx context.Context) bool) *Handler { return &Handler{ledgerHalted: halted} }

func (h *Handler) Health(c echo.Context) error {
	body := map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if h.ledgerHalted != nil {
		body["ledger_halted"] = h.ledgerHalted(c.Request().Context())
	}
	return c.JSON(http.StatusOK, body)
}
