package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/brandlens/brandlens/internal/warehouse"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsWarmup pre-populates analytics caches for active brands.
	TaskAnalyticsWarmup = "analytics:warmup"
	// TaskAnalyticsCacheBump invalidates every cached analytics payload.
	TaskAnalyticsCacheBump = "analytics:cache_bump"
)

// WarmupPayload scopes a warmup run. Empty fields mean every active brand
// and the default periods.
type WarmupPayload struct {
	BrandIDs []int64  `json:"brand_ids,omitempty"`
	Periods  []string `json:"periods,omitempty"`
}

// DefaultWarmupPeriods are the periods warmed when a payload names none.
var DefaultWarmupPeriods = []warehouse.Period{warehouse.Period30d, warehouse.Period90d}

// periods validates and returns the requested periods.
func (p WarmupPayload) periods() ([]warehouse.Period, error) {
	if len(p.Periods) == 0 {
		return DefaultWarmupPeriods, nil
	}
	out := make([]warehouse.Period, 0, len(p.Periods))
	for _, raw := range p.Periods {
		period, err := warehouse.ParsePeriod(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, period)
	}
	return out, nil
}

// CacheBumpPayload records why the cache was invalidated.
type CacheBumpPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewWarmupTask constructs an analytics warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	if _, err := payload.periods(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}

// NewCacheBumpTask constructs a cache invalidation task.
func NewCacheBumpTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(CacheBumpPayload{Reason: strings.TrimSpace(reason)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsCacheBump, data), nil
}

// NewTaskByName builds a task with its default payload, for manual triggers.
func NewTaskByName(name string) (*asynq.Task, error) {
	switch name {
	case TaskAnalyticsWarmup:
		return NewWarmupTask(WarmupPayload{})
	case TaskAnalyticsCacheBump:
		return NewCacheBumpTask("manual")
	default:
		return nil, fmt.Errorf("jobs: unsupported job %s", name)
	}
}

// TaskNames lists the jobs that can be triggered manually.
func TaskNames() []string {
	return []string{TaskAnalyticsWarmup, TaskAnalyticsCacheBump}
}
