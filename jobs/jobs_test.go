package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/brands"
	jobmetrics "github.com/brandlens/brandlens/internal/jobs"
	"github.com/brandlens/brandlens/internal/warehouse"
	"github.com/brandlens/brandlens/internal/warehouse/warehousetest"
)

func TestNewWarmupTaskDefaults(t *testing.T) {
	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	assert.Equal(t, TaskAnalyticsWarmup, task.Type())
	assert.JSONEq(t, `{}`, string(task.Payload()))

	_, err = NewWarmupTask(WarmupPayload{Periods: []string{"fortnight"}})
	require.Error(t, err)
}

func TestNewTaskByName(t *testing.T) {
	for _, name := range TaskNames() {
		task, err := NewTaskByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, task.Type())
	}
	_, err := NewTaskByName("mail:send")
	require.Error(t, err)

	task, err := NewTaskByName(TaskAnalyticsCacheBump)
	require.NoError(t, err)
	var payload CacheBumpPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "manual", payload.Reason)
}

type stubLister struct {
	list []brands.Brand
	err  error
}

func (s stubLister) ActiveBrands(context.Context) ([]brands.Brand, error) {
	return s.list, s.err
}

type failingService struct {
	mu     sync.Mutex
	failOn int64
	calls  map[int64]int
}

func (f *failingService) hit(brandID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[int64]int{}
	}
	f.calls[brandID]++
	if brandID == f.failOn {
		return warehouse.ErrTimeout
	}
	return nil
}

func (f *failingService) KPIs(_ context.Context, brandID int64, _ warehouse.Period) (warehouse.BrandKPIs, error) {
	return warehouse.BrandKPIs{}, f.hit(brandID)
}

func (f *failingService) SalesTrend(_ context.Context, brandID int64, _ int) ([]warehouse.SalesTrendPoint, error) {
	return nil, f.hit(brandID)
}

func (f *failingService) TopProducts(_ context.Context, brandID int64, _ warehouse.Period, _ int) ([]warehouse.TopProduct, error) {
	return nil, f.hit(brandID)
}

func newTestMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestWarmupFillsCacheForActiveBrands(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fake := &warehousetest.Fake{Trend: []warehouse.SalesTrendPoint{{Month: "2025-05", Revenue: 10}}}
	svc := analytics.NewService(fake, analytics.NewCache(client, time.Minute), nil)
	lister := stubLister{list: []brands.Brand{{ID: 10, IsActive: true}, {ID: 11, IsActive: true}}}

	job := NewWarmupJob(svc, lister, nil, newTestMetrics())
	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 2, fake.Calls("GetSalesTrend"))
	assert.Equal(t, 2*len(DefaultWarmupPeriods), fake.Calls("GetBrandKPIs"))
	assert.Equal(t, 2*len(DefaultWarmupPeriods), fake.Calls("GetTopProducts"))

	// a second run is served from the cache
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 2, fake.Calls("GetSalesTrend"))
}

func TestWarmupRestrictsToRequestedBrands(t *testing.T) {
	fake := &warehousetest.Fake{}
	svc := analytics.NewService(fake, nil, nil)
	lister := stubLister{list: []brands.Brand{{ID: 10}, {ID: 11}}}
	job := NewWarmupJob(svc, lister, nil, newTestMetrics())

	task, err := NewWarmupTask(WarmupPayload{BrandIDs: []int64{11, 99}, Periods: []string{"7d"}})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, fake.Calls("GetSalesTrend"))
	assert.Equal(t, 1, fake.Calls("GetBrandKPIs"))
}

func TestWarmupContinuesPastFailingBrand(t *testing.T) {
	svc := &failingService{failOn: 10}
	lister := stubLister{list: []brands.Brand{{ID: 10}, {ID: 11}}}
	job := NewWarmupJob(svc, lister, nil, newTestMetrics())

	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, warehouse.ErrTimeout))
	assert.Equal(t, 1, svc.calls[10])
	assert.Equal(t, 1+2*len(DefaultWarmupPeriods), svc.calls[11])
}

func TestWarmupRejectsBadPayload(t *testing.T) {
	job := NewWarmupJob(&failingService{}, stubLister{}, nil, newTestMetrics())
	err := job.Handle(context.Background(), asynq.NewTask(TaskAnalyticsWarmup, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestWarmupListerFailure(t *testing.T) {
	boom := errors.New("db down")
	job := NewWarmupJob(&failingService{}, stubLister{err: boom}, nil, newTestMetrics())
	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), boom)
}

func TestCacheBumpAdvancesVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := analytics.NewCache(client, time.Minute)

	before, err := cache.Version(context.Background())
	require.NoError(t, err)

	job := NewCacheBumpJob(cache, nil, newTestMetrics())
	task, err := NewCacheBumpTask("nightly load")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	after, err := cache.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

type brokenBumper struct{}

func (brokenBumper) Bump(context.Context) (int64, error) {
	return 0, errors.New("redis down")
}

func TestCacheBumpFailure(t *testing.T) {
	job := NewCacheBumpJob(brokenBumper{}, nil, newTestMetrics())
	task, err := NewCacheBumpTask("")
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}

func TestQueueEndpointWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, nil).MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/queue", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var stats QueueStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, QueueDefault, stats.Queue)
	assert.Zero(t, stats.Pending)
}

func TestNilClientEnqueue(t *testing.T) {
	var c *Client
	task, err := NewCacheBumpTask("x")
	require.NoError(t, err)
	_, err = c.Enqueue(context.Background(), task)
	require.Error(t, err)
}
