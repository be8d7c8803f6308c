package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/app"
	"github.com/brandlens/brandlens/internal/brands"
	jobmetrics "github.com/brandlens/brandlens/internal/jobs"
	"github.com/brandlens/brandlens/internal/platform/cache"
	"github.com/brandlens/brandlens/internal/platform/db"
	"github.com/brandlens/brandlens/internal/warehouse"
	"github.com/brandlens/brandlens/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	metrics := jobmetrics.NewMetrics(nil)

	warehouseClient := warehouse.NewHTTPClient(warehouse.Options{
		BaseURL: cfg.WarehouseURL,
		Token:   cfg.WarehouseToken,
		Timeout: cfg.WarehouseTimeout,
	})
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL).
		WithLogger(logger).
		WithLoadTimeout(cfg.WarehouseTimeout)
	analyticsService := analytics.NewService(warehouseClient, analyticsCache, logger)
	brandGuard := brands.NewGuard(brands.NewRepository(pool))

	warmupJob := jobs.NewWarmupJob(analyticsService, brandGuard, logger, metrics)
	bumpJob := jobs.NewCacheBumpJob(analyticsCache, logger, metrics)

	warmupTask, err := jobs.NewWarmupTask(jobs.WarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAnalyticsWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskAnalyticsCacheBump, Handler: bumpJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 5 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
