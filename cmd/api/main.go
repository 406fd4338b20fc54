package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "farm-loan-ledger/internal/adapter/http"
	mw "farm-loan-ledger/internal/adapter/middleware"
	repo "farm-loan-ledger/internal/adapter/repository/mysql"
	"farm-loan-ledger/internal/adapter/scorer"
	"farm-loan-ledger/internal/config"
	"farm-loan-ledger/internal/domain/decision"
	"farm-loan-ledger/internal/infrastructure/cache"
	infradb "farm-loan-ledger/internal/infrastructure/db"
	"farm-loan-ledger/internal/infrastructure/lock"
	"farm-loan-ledger/internal/infrastructure/metrics"
	"farm-loan-ledger/internal/usecase/disbursement"
	ledgeruc "farm-loan-ledger/internal/usecase/ledger"
	"farm-loan-ledger/internal/usecase/lifecycle"
	loanuc "farm-loan-ledger/internal/usecase/loan"
	"farm-loan-ledger/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.GetLogger()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := infradb.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		log.Fatal("open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if err := infradb.Migrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	m := metrics.NewRegistry()
	u := repo.NewGormUoW(db)
	reads := u.Repos()

	// per-loan release lock: in-process first, then Redis across instances
	lockers := lock.Chain{lock.NewKeyed()}
	var idem *cache.IdempotencyStore
	if cfg.RedisEnabled {
		rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB, 3*time.Second)
		if err != nil {
			log.Fatal("connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		idem = cache.NewIdempotencyStore(rdb)
		lockers = append(lockers, lock.NewRedis(rdb, "farmloan:lock:release:", cfg.DisburseLockTTL))
	} else {
		log.Warn("redis disabled: no idempotency replay, release lock is process-local")
	}

	ledgerSvc := ledgeruc.NewService(reads.Ledger,
		ledgeruc.WithBatchSize(cfg.LedgerVerifyBatch),
		ledgeruc.WithMetrics(m),
	)
	// refuse to append onto a chain that is already broken
	if report, err := ledgerSvc.Verify(ctx); err != nil {
		log.Error("startup ledger verification failed, appends halted", zap.Error(err), zap.Uint64("first_invalid_sequence", report.FirstInvalidSequence))
	}

	engine := decision.NewEngine(scorer.NewHeuristic())
	loans := loanuc.NewUsecase(reads, u, engine, decision.NewCalculator(), cfg.GovInterestRate, m)
	coordinator := disbursement.NewUsecase(u, ledgerSvc, lockers, disbursement.Config{
		TxTimeout:  cfg.DisburseTxTimeout,
		MaxRetries: uint64(cfg.DisburseMaxRetries),
	}, m)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover(), mw.RequestID(), mw.RequestLogger(m))

	httpadp.Register(e, httpadp.Deps{
		Health:         httpadp.NewHandler(ledgerSvc.Halted),
		Loans:          httpadp.NewLoanHandler(loans),
		Lifecycle:      httpadp.NewLifecycleHandler(lifecycle.NewUsecase(u, m)),
		Disbursement:   httpadp.NewDisbursementHandler(coordinator),
		Ledger:         httpadp.NewLedgerHandler(ledgerSvc, ledgeruc.NewAudit(reads, cfg.LedgerVerifyBatch)),
		Metrics:        m,
		Idempotency:    idem,
		IdempotencyTTL: cfg.IdempotencyTTL(),
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("db_driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
