package http

import (
	"time"

	"github.com/labstack/echo/v4"

	mw "farm-loan-ledger/internal/adapter/middleware"
	"farm-loan-ledger/internal/domain/actor"
	"farm-loan-ledger/internal/infrastructure/cache"
	"farm-loan-ledger/internal/infrastructure/metrics"
)

type Deps struct {
	Health       *Handler
	Loans        *LoanHandler
	Lifecycle    *LifecycleHandler
	Disbursement *DisbursementHandler
	Ledger       *LedgerHandler

	Metrics *metrics.Registry
	// nil disables the idempotency middleware
	Idempotency    *cache.IdempotencyStore
	IdempotencyTTL time.Duration
}

// Register mounts every route on e.
func Register(e *echo.Echo, d Deps) {
	e.Validator = NewValidator()

	idem := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if d.Idempotency != nil {
		idem = mw.Idempotency(d.Idempotency, d.IdempotencyTTL)
	}
	role := mw.RequireRole
	anyone := role(actor.RoleFarmer, actor.RoleAdmin, actor.RoleApprover, actor.RoleTreasury)

	e.GET("/health", d.Health.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	loans := e.Group("/loans")
	loans.POST("", d.Loans.Submit, role(actor.RoleFarmer), idem)
	loans.GET("", d.Loans.ListMine, role(actor.RoleFarmer))
	loans.GET("/:loan_id", d.Loans.Get, anyone)
	loans.GET("/:loan_id/history", d.Loans.History, anyone)

	e.POST("/vouchers/:code/redeem", d.Disbursement.Redeem, role(actor.RoleTreasury, actor.RoleAdmin), idem)

	admin := e.Group("/admin")
	admin.GET("/loans", d.Loans.ListAll, role(actor.RoleAdmin))
	admin.PUT("/loans/:loan_id/status", d.Lifecycle.SetStatus, role(actor.RoleAdmin, actor.RoleApprover), idem)
	admin.POST("/loans/:loan_id/approve", d.Lifecycle.Approve, role(actor.RoleApprover, actor.RoleAdmin), idem)
	admin.POST("/loans/:loan_id/release", d.Disbursement.Release, role(actor.RoleTreasury), idem)
	admin.GET("/analytics", d.Loans.Analytics, role(actor.RoleAdmin))
	admin.GET("/audit/export", d.Ledger.Export, role(actor.RoleAdmin))
	admin.POST("/ledger/verify", d.Ledger.Verify, role(actor.RoleAdmin))
	admin.POST("/ledger/resume", d.Ledger.Resume, role(actor.RoleAdmin), idem)

	public := e.Group("/public")
	public.GET("/transactions", d.Ledger.Transactions)
	public.GET("/ledger/verify", d.Ledger.PublicVerify)
	public.GET("/summary", d.Ledger.Summary)
}
