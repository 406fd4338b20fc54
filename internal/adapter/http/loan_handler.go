package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	mw "farm-loan-ledger/internal/adapter/middleware"
	"farm-loan-ledger/internal/domain/actor"
	"farm-loan-ledger/internal/domain/loan"
	loanuc "farm-loan-ledger/internal/usecase/loan"
)

type LoanHandler struct{ uc *loanuc.Usecase }

func NewLoanHandler(uc *loanuc.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type submitLoanReq struct {
	Principal          float64 `json:"principal"           validate:"required,gt=0,dec2"`
	Purpose            string  `json:"purpose"             validate:"required,max=255"`
	LandSize           float64 `json:"land_size"           validate:"gte=0,dec2"`
	CropType           string  `json:"crop_type"           validate:"required,max=64"`
	AnnualIncome       float64 `json:"annual_income"       validate:"gte=0,dec2"`
	Location           string  `json:"location"            validate:"required,max=255"`
	RepaymentFrequency string  `json:"repayment_frequency" validate:"required,frequency"`
	MerchantRestricted bool    `json:"merchant_restricted"`
	MerchantCategory   string  `json:"merchant_category"   validate:"omitempty,max=64"`
	Insured            bool    `json:"insured"`
	InsuranceProvider  string  `json:"insurance_provider"  validate:"omitempty,max=128"`
}

type pageQuery struct {
	limit, offset int
}

func bindPage(c echo.Context) (pageQuery, error) {
	var p pageQuery
	err := echo.QueryParamsBinder(c).
		Int("limit", &p.limit).
		Int("offset", &p.offset).
		BindError()
	return p, err
}

// Submit: farmer submits an application; the decision is returned synchronously.
func (h *LoanHandler) Submit(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	var req submitLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	dto, err := h.uc.Submit(c.Request().Context(), loanuc.SubmitInput{
		FarmerID: a.ID,
		Application: loan.Application{
			Principal:          req.Principal,
			Purpose:            req.Purpose,
			LandSize:           req.LandSize,
			CropType:           req.CropType,
			AnnualIncome:       req.AnnualIncome,
			Location:           req.Location,
			Frequency:          loan.Frequency(req.RepaymentFrequency),
			MerchantRestricted: req.MerchantRestricted,
			MerchantCategory:   strings.TrimSpace(req.MerchantCategory),
			Insured:            req.Insured,
			InsuranceProvider:  strings.TrimSpace(req.InsuranceProvider),
		},
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// Get hides other farmers' loans behind a 404.
func (h *LoanHandler) Get(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	if a.Role == actor.RoleFarmer && dto.FarmerID != a.ID {
		return writeError(c, loan.ErrNotFound)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) History(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	loanID := c.Param("loan_id")
	if a.Role == actor.RoleFarmer {
		dto, err := h.uc.Get(c.Request().Context(), loanID)
		if err != nil {
			return writeError(c, err)
		}
		if dto.FarmerID != a.ID {
			return writeError(c, loan.ErrNotFound)
		}
	}
	out, err := h.uc.History(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "history": out})
}

func (h *LoanHandler) ListMine(c echo.Context) error {
	a, _ := mw.ActorFrom(c)
	p, err := bindPage(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid paging parameters"})
	}
	out, err := h.uc.ListByFarmer(c.Request().Context(), a.ID, loanuc.Page{Limit: p.limit, Offset: p.offset})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": out})
}

// ListAll: admin view, optional ?status=.
func (h *LoanHandler) ListAll(c echo.Context) error {
	p, err := bindPage(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid paging parameters"})
	}
	status := loan.Status(strings.ToUpper(c.QueryParam("status")))
	out, err := h.uc.List(c.Request().Context(), status, loanuc.Page{Limit: p.limit, Offset: p.offset})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": out})
}

func (h *LoanHandler) Analytics(c echo.Context) error {
	out, err := h.uc.Analytics(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
