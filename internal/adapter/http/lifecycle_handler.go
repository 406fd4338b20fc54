package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	mw "farm-loan-ledger/internal/adapter/middleware"
	"farm-loan-ledger/internal/domain/loan"
	"farm-loan-ledger/internal/usecase/lifecycle"
)

type LifecycleHandler struct{ uc *lifecycle.Usecase }

func NewLifecycleHandler(uc *lifecycle.Usecase) *LifecycleHandler { return &LifecycleHandler{uc: uc} }

type setStatusReq struct {
	Status  string `json:"status"  validate:"required,status"`
	Remarks string `json:"remarks" validate:"omitempty,max=1000"`
}

func (h *LifecycleHandler) SetStatus(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.SetStatus(c.Request().Context(), lifecycle.SetStatusInput{
		LoanID:  c.Param("loan_id"),
		Status:  loan.Status(strings.ToUpper(req.Status)),
		Remarks: strings.TrimSpace(req.Remarks),
		Actor:   a,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LifecycleHandler) Approve(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	dto, err := h.uc.Approve(c.Request().Context(), c.Param("loan_id"), a)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
