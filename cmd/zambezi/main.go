package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zambezi-erp/zambezi-erp/internal/app"
	"github.com/zambezi-erp/zambezi-erp/internal/crm"
	"github.com/zambezi-erp/zambezi-erp/internal/documents"
	"github.com/zambezi-erp/zambezi-erp/internal/drafts"
	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/items"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/suppliers"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/taxes"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/warehouses"
	"github.com/zambezi-erp/zambezi-erp/internal/observability"
	"github.com/zambezi-erp/zambezi-erp/internal/platform/cache"
	"github.com/zambezi-erp/zambezi-erp/internal/platform/db"
	"github.com/zambezi-erp/zambezi-erp/internal/terms"
	"github.com/zambezi-erp/zambezi-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	customerRepo := customers.NewRepository(pool)
	supplierRepo := suppliers.NewRepository(pool)
	masterData := &masterdata.Handler{
		Customers:  customers.NewHandler(logger, customers.NewService(customerRepo)),
		Suppliers:  suppliers.NewHandler(logger, suppliers.NewService(supplierRepo)),
		Items:      items.NewHandler(logger, items.NewService(items.NewRepository(pool))),
		Taxes:      taxes.NewHandler(logger, taxes.NewService(taxes.NewRepository(pool))),
		Warehouses: warehouses.NewHandler(logger, warehouses.NewService(warehouses.NewRepository(pool))),
	}

	fxService := fx.NewService(fx.NewRepository(pool), redisClient, cfg.RateCacheTTL)
	documentService := documents.NewService(documents.NewRepository(pool), customerRepo, supplierRepo)
	draftService := drafts.NewService(drafts.NewStore(redisClient, cfg.DraftTTL), fxService, customerRepo, documentService, logger)
	crmService := crm.NewService(crm.NewRepository(pool), crm.NewCache(redisClient, cfg.DashboardCacheTTL), logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:      logger,
		Config:      cfg,
		Metrics:     metrics,
		MasterData:  masterData,
		Sales:       documents.NewHandler(logger, documentService, documents.SalesTypes()),
		Procurement: documents.NewHandler(logger, documentService, documents.ProcurementTypes()),
		Drafts:      drafts.NewHandler(logger, draftService),
		FX:          fx.NewHandler(logger, fxService),
		CRM:         crm.NewHandler(logger, crmService),
		Terms:       terms.NewHandler(),
		Jobs:        jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("zambezi api listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
