package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brandlens/brandlens/internal/brands"
	jobmetrics "github.com/brandlens/brandlens/internal/jobs"
	"github.com/brandlens/brandlens/internal/warehouse"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const (
	defaultBrandTimeout = 30 * time.Second
	warmupTrendMonths   = 12
	warmupTopLimit      = 10
)

// WarmupService is the subset of the analytics service the warmup fills.
type WarmupService interface {
	KPIs(ctx context.Context, brandID int64, period warehouse.Period) (warehouse.BrandKPIs, error)
	SalesTrend(ctx context.Context, brandID int64, months int) ([]warehouse.SalesTrendPoint, error)
	TopProducts(ctx context.Context, brandID int64, period warehouse.Period, limit int) ([]warehouse.TopProduct, error)
}

// BrandLister lists brands eligible for warmup.
type BrandLister interface {
	ActiveBrands(ctx context.Context) ([]brands.Brand, error)
}

// WarmupJob pre-populates the overview caches so the first dashboard load of
// the day is served from Redis.
type WarmupJob struct {
	Analytics    WarmupService
	Brands       BrandLister
	Logger       *slog.Logger
	Metrics      *jobmetrics.Metrics
	BrandTimeout time.Duration
	clock        func() time.Time
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(svc WarmupService, lister BrandLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{
		Analytics:    svc,
		Brands:       lister,
		Logger:       logger,
		Metrics:      metrics,
		BrandTimeout: defaultBrandTimeout,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes analytics warmup tasks. A failing brand does not stop the
// run; the joined error is returned so asynq retries the task.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil || j.Brands == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload WarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("analytics warmup: %w: %v", asynq.SkipRetry, err)
		}
	}
	periods, err := payload.periods()
	if err != nil {
		return fmt.Errorf("analytics warmup: %w: %v", asynq.SkipRetry, err)
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := j.now()
	logger.Info("starting analytics warmup", slog.Int("periods", len(periods)))

	targets, err := j.targets(ctx, payload.BrandIDs)
	if err != nil {
		resultErr = err
		logger.Error("load warmup brands", slog.Any("error", err))
		return resultErr
	}
	if len(targets) == 0 {
		logger.Info("no brands discovered for warmup")
		return resultErr
	}

	var errs []error
	warmed := 0
	for _, brand := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := j.warmBrand(ctx, brand.ID, periods); err != nil {
			logger.Error("warm brand", slog.Int64("brand_id", brand.ID), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("brand %d: %w", brand.ID, err))
			continue
		}
		warmed++
	}
	resultErr = errors.Join(errs...)

	logger.Info("completed analytics warmup",
		slog.Int("brands", warmed),
		slog.Int("failed", len(targets)-warmed),
		slog.Duration("duration", j.now().Sub(start)),
	)
	return resultErr
}

// targets narrows active brands to the requested IDs, if any. Inactive brands
// are never warmed.
func (j *WarmupJob) targets(ctx context.Context, only []int64) ([]brands.Brand, error) {
	active, err := j.Brands.ActiveBrands(ctx)
	if err != nil {
		return nil, err
	}
	if len(only) == 0 {
		return active, nil
	}
	wanted := make(map[int64]struct{}, len(only))
	for _, id := range only {
		wanted[id] = struct{}{}
	}
	out := make([]brands.Brand, 0, len(only))
	for _, b := range active {
		if _, ok := wanted[b.ID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (j *WarmupJob) warmBrand(ctx context.Context, brandID int64, periods []warehouse.Period) error {
	timeout := j.BrandTimeout
	if timeout <= 0 {
		timeout = defaultBrandTimeout
	}
	brandCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	metrics := j.metrics()
	if _, err := j.Analytics.SalesTrend(brandCtx, brandID, warmupTrendMonths); err != nil {
		return err
	}
	metrics.AddWarmed("sales_trend", 1)
	for _, period := range periods {
		if _, err := j.Analytics.KPIs(brandCtx, brandID, period); err != nil {
			return err
		}
		metrics.AddWarmed("kpis", 1)
		if _, err := j.Analytics.TopProducts(brandCtx, brandID, period, warmupTopLimit); err != nil {
			return err
		}
		metrics.AddWarmed("top_products", 1)
	}
	return nil
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *WarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
