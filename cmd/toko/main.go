package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/toko-ops/toko-ops/internal/app"
	"github.com/toko-ops/toko-ops/internal/observability"
	"github.com/toko-ops/toko-ops/internal/payroll"
	"github.com/toko-ops/toko-ops/internal/platform/cache"
	"github.com/toko-ops/toko-ops/internal/platform/db"
	"github.com/toko-ops/toko-ops/internal/reporting"
	"github.com/toko-ops/toko-ops/internal/reporting/export"
	reporthttp "github.com/toko-ops/toko-ops/internal/reporting/http"
	"github.com/toko-ops/toko-ops/jobs"
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	reportCache := reporting.NewCache(redisClient, 10*time.Minute)
	reportRepo := reporting.NewRepository(pool)
	reportService := reporting.NewService(reportRepo, reportCache, nil)
	if err := reportService.ListenLive(ctx, redisClient, reporting.LiveChannel); err != nil {
		logger.Error("subscribe live sales", slog.Any("error", err))
		os.Exit(1)
	}
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("subscribe cache invalidation", slog.Any("error", err))
	}

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	pdfExporter := &export.PDFExporter{Endpoint: cfg.GotenbergURL, Client: http.DefaultClient}
	reportHandler := reporthttp.NewHandler(logger, reportService, pdfExporter, jobsClient, cfg.WebhookToken)
	reportHandler.WithSaleEventCounter(metrics)

	payrollRepo := payroll.NewRepository(pool)
	payrollService := payroll.NewService(payrollRepo)
	payrollHandler := payroll.NewHandler(logger, payrollService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportHandler:  reportHandler,
		PayrollHandler: payrollHandler,
		JobsHandler:    jobsHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
