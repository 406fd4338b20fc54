package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "farm-loan-ledger/internal/adapter/middleware"
	"farm-loan-ledger/internal/usecase/disbursement"
)

type DisbursementHandler struct{ uc *disbursement.Usecase }

func NewDisbursementHandler(uc *disbursement.Usecase) *DisbursementHandler {
	return &DisbursementHandler{uc: uc}
}

func (h *DisbursementHandler) Release(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	res, err := h.uc.Release(c.Request().Context(), c.Param("loan_id"), a)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *DisbursementHandler) Redeem(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	v, err := h.uc.RedeemVoucher(c.Request().Context(), c.Param("code"), a)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}
