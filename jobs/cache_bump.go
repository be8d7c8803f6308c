package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/brandlens/brandlens/internal/jobs"
)

// CacheBumper advances the analytics cache version.
type CacheBumper interface {
	Bump(ctx context.Context) (int64, error)
}

// CacheBumpJob invalidates cached analytics after a warehouse load.
type CacheBumpJob struct {
	Cache   CacheBumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCacheBumpJob wires dependencies for the cache bump handler.
func NewCacheBumpJob(cache CacheBumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheBumpJob {
	return &CacheBumpJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes cache bump tasks.
func (j *CacheBumpJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("analytics cache bump: handler not configured")
	}
	var payload CacheBumpPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("analytics cache bump: %w: %v", asynq.SkipRetry, err)
		}
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskAnalyticsCacheBump)

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskAnalyticsCacheBump))

	version, err := j.Cache.Bump(ctx)
	if err != nil {
		logger.Error("bump analytics cache", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("analytics cache bumped", slog.Int64("version", version), slog.String("reason", payload.Reason))
	return tracker.End(nil)
}
