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

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/analytics/export"
	analytichttp "github.com/brandlens/brandlens/internal/analytics/http"
	"github.com/brandlens/brandlens/internal/app"
	"github.com/brandlens/brandlens/internal/auth"
	"github.com/brandlens/brandlens/internal/brands"
	"github.com/brandlens/brandlens/internal/observability"
	"github.com/brandlens/brandlens/internal/platform/cache"
	"github.com/brandlens/brandlens/internal/platform/db"
	"github.com/brandlens/brandlens/internal/shared"
	"github.com/brandlens/brandlens/internal/warehouse"
	"github.com/brandlens/brandlens/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "brandlens_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	brandRepo := brands.NewRepository(dbpool)
	brandGuard := brands.NewGuard(brandRepo)
	brandMiddleware := brands.Middleware{Guard: brandGuard, Logger: logger}
	brandsHandler := brands.NewHandler(logger, brandGuard)

	if !cfg.WarehouseConfigured() {
		logger.Warn("warehouse url not set, analytics pages will report not configured")
	}
	warehouseClient := warehouse.NewInstrumented(
		warehouse.NewHTTPClient(warehouse.Options{
			BaseURL: cfg.WarehouseURL,
			Token:   cfg.WarehouseToken,
			Timeout: cfg.WarehouseTimeout,
		}),
		metrics,
		logger,
	)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL).
		WithLogger(logger).
		WithLoadTimeout(cfg.WarehouseTimeout).
		WithObserver(metrics)
	analyticsService := analytics.NewService(warehouseClient, analyticsCache, logger)

	if err := analyticsCache.ListenForInvalidation(ctx, analytics.BumpChannel); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("analytics invalidation listener", slog.Any("error", err))
	}

	pdfExporter := &export.PDFExporter{Endpoint: cfg.GotenbergURL, Client: &http.Client{Timeout: 30 * time.Second}}
	analyticsHandler := analytichttp.NewHandler(analytichttp.Options{
		Logger:          logger,
		Service:         analyticsService,
		Brands:          brandMiddleware,
		PDF:             pdfExporter,
		DefaultLocale:   cfg.DefaultLocale,
		DefaultCurrency: cfg.DefaultCurrency,
	})

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		BrandsHandler:    brandsHandler,
		BrandMiddleware:  brandMiddleware,
		AnalyticsHandler: analyticsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
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
