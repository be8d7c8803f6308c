package analytichttp

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/analytics/export"
	"github.com/brandlens/brandlens/internal/brands"
	"github.com/brandlens/brandlens/internal/shared"
	"github.com/brandlens/brandlens/internal/warehouse"
	"github.com/brandlens/brandlens/internal/warehouse/warehousetest"
)

const (
	supplierID int64 = 2
	outsiderID int64 = 3

	standardBrand    int64 = 10
	premiumBrand     int64 = 11
	oddCurrencyBrand int64 = 12
)

// stubRepo counts queries so tests can check how often a request hits the
// brand store.
type stubRepo struct {
	mu    sync.Mutex
	calls map[string]int
}

var testBrands = []brands.Brand{
	{ID: standardBrand, Name: "Acme", Currency: "USD", IsActive: true},
	{ID: premiumBrand, Name: "Bolt", Currency: "EUR", IsActive: true},
	{ID: oddCurrencyBrand, Name: "Zed", Currency: "ZZZ", IsActive: true},
}

func (s *stubRepo) count(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[name]++
}

func (s *stubRepo) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubRepo) UserRoles(context.Context, int64) ([]string, error) {
	s.count("UserRoles")
	return []string{shared.RoleSupplier}, nil
}

func (s *stubRepo) ActiveBrands(context.Context) ([]brands.Brand, error) {
	s.count("ActiveBrands")
	return testBrands, nil
}

func linkedBrands(userID int64) []brands.Brand {
	if userID != supplierID {
		return []brands.Brand{}
	}
	return testBrands
}

func (s *stubRepo) LinkedBrands(_ context.Context, userID int64) ([]brands.Brand, error) {
	s.count("LinkedBrands")
	return linkedBrands(userID), nil
}

func (s *stubRepo) IsLinked(_ context.Context, userID, brandID int64) (bool, error) {
	s.count("IsLinked")
	for _, b := range linkedBrands(userID) {
		if b.ID == brandID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) GetBrand(_ context.Context, brandID int64) (brands.Brand, error) {
	s.count("GetBrand")
	for _, b := range testBrands {
		if b.ID == brandID {
			return b, nil
		}
	}
	return brands.Brand{}, brands.ErrNotFound
}

func (s *stubRepo) PremiumActive(_ context.Context, brandID int64, _ time.Time) (bool, error) {
	s.count("PremiumActive")
	return brandID == premiumBrand, nil
}

func (s *stubRepo) Competitors(_ context.Context, brandID int64) ([]brands.Competitor, error) {
	s.count("Competitors")
	return []brands.Competitor{{ID: 30, Name: "Rival"}, {ID: 31, Name: "Other"}}, nil
}

type stubPDF struct {
	last export.DashboardPayload
	err  error
}

func (s *stubPDF) RenderDashboard(_ context.Context, payload export.DashboardPayload) ([]byte, error) {
	s.last = payload
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4\n"), nil
}

type fixture struct {
	repo    *stubRepo
	fake    *warehousetest.Fake
	pdf     *stubPDF
	handler *Handler
	router  http.Handler
	session *shared.Session
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, userID int64, opts ...func(*Options)) *fixture {
	t.Helper()
	fake := &warehousetest.Fake{
		KPIs:        warehouse.BrandKPIs{Revenue: 1234.5, Orders: 42, RevenueGrowthPct: 3},
		Trend:       []warehouse.SalesTrendPoint{{Month: "2025-04", Revenue: 100, Orders: 2}, {Month: "2025-05", Revenue: 200, Orders: 3}},
		TopProducts: []warehouse.TopProduct{{SKU: "A1", Name: "Oats", Revenue: 80, Units: 4, SharePct: 40}},
		Cohorts:     []warehouse.CohortRow{{Cohort: "2025-01", Customers: 10, Retention: []float64{100, 40}}},
		MarketShare: []warehouse.MarketShareRow{{Category: "Snacks", BrandRevenue: 10, MarketRevenue: 100, SharePct: 10}},
		Stock:       []warehouse.StockItem{{SKU: "A1", OnHand: 0, DailySales: 2}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &stubRepo{}
	guard := brands.NewGuard(repo)
	mw := brands.Middleware{Guard: guard, Logger: logger}
	pdf := &stubPDF{}
	o := Options{
		Logger:          logger,
		Service:         analytics.NewService(fake, nil, logger),
		Brands:          mw,
		PDF:             pdf,
		DefaultLocale:   "en-US",
		DefaultCurrency: "USD",
	}
	for _, fn := range opts {
		fn(&o)
	}
	h := NewHandler(o)
	h.WithNow(func() time.Time { return fixedNow })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "brandlens_session", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser(strconv.FormatInt(userID, 10))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
		})
	})
	r.Use(mw.RequireUser)
	h.MountRoutes(r)
	return &fixture{repo: repo, fake: fake, pdf: pdf, handler: h, router: r, session: sess}
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestDashboardLoadsAllBlocks(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/10/dashboard?period=90d")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decode(t, rr)
	assert.Equal(t, "90d", body["period"])
	assert.Equal(t, "USD", body["currency"])
	assert.Equal(t, false, body["loading"])
	cards := body["cards"].([]any)
	assert.Equal(t, "$1,234.50", cards[0].(map[string]any)["value"])
	charts := body["charts"].(map[string]any)
	assert.Contains(t, charts, "trend")
	assert.Contains(t, charts, "top_products")

	assert.Equal(t, 1, f.fake.Calls("GetBrandKPIs"))
	assert.Equal(t, 1, f.fake.Calls("GetSalesTrend"))
	assert.Equal(t, 1, f.fake.Calls("GetTopProducts"))

	brandID, period := f.session.Selection()
	assert.Equal(t, standardBrand, brandID)
	assert.Equal(t, "90d", period)
}

func TestDashboardUsesBrandCurrency(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/11/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "EUR", body["currency"])
	assert.Equal(t, "30d", body["period"])
}

func TestPeriodFallsBackToSessionSelection(t *testing.T) {
	f := newFixture(t, supplierID)
	f.session.SetSelection(standardBrand, "7d")
	body := decode(t, f.get("/brands/10/marketing"))
	assert.Equal(t, "7d", body["period"])
}

func TestSessionStoresNormalizedPeriod(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/10/marketing?period=%2090D%20")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	_, period := f.session.Selection()
	assert.Equal(t, "90d", period)

	rr = f.get("/brands/10/marketing")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "90d", decode(t, rr)["period"])
}

func TestStaleSessionPeriodFallsBackToDefault(t *testing.T) {
	f := newFixture(t, supplierID)
	f.session.SetSelection(standardBrand, "90D")
	rr := f.get("/brands/10/marketing")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "90d", decode(t, rr)["period"])

	f.session.SetSelection(standardBrand, "fortnight")
	rr = f.get("/brands/10/marketing")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "30d", decode(t, rr)["period"])
	_, period := f.session.Selection()
	assert.Equal(t, "30d", period)
}

func TestInvalidBrandCurrencyUsesConfiguredDefault(t *testing.T) {
	f := newFixture(t, supplierID, func(o *Options) { o.DefaultCurrency = "EUR" })
	rr := f.get("/brands/12/dashboard")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "EUR", decode(t, rr)["currency"])
}

func TestPageAuthorizesBrandOnce(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/10/marketing")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, f.repo.Calls("UserRoles"))
	assert.Equal(t, 1, f.repo.Calls("IsLinked"))
	assert.Equal(t, 1, f.repo.Calls("GetBrand"))
}

func TestOutsiderIsForbiddenBeforeWarehouseCall(t *testing.T) {
	f := newFixture(t, outsiderID)
	rr := f.get("/brands/10/dashboard")
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "brand_forbidden", decode(t, rr)["type"])
	assert.Zero(t, f.fake.TotalCalls())
}

func TestPremiumPageRequiresSubscription(t *testing.T) {
	f := newFixture(t, supplierID)
	for _, page := range []string{"cohorts", "retention", "rfm", "forecast", "market-share"} {
		rr := f.get("/brands/10/" + page)
		require.Equal(t, http.StatusForbidden, rr.Code, page)
		assert.Equal(t, "premium_required", decode(t, rr)["type"], page)
	}
	assert.Zero(t, f.fake.TotalCalls())

	rr := f.get("/brands/11/cohorts")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode(t, rr)["charts"], "heatmap")
}

func TestMarketSharePassesCompetitors(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/11/market-share")
	require.Equal(t, http.StatusOK, rr.Code)
	cards := decode(t, rr)["cards"].([]any)
	assert.Equal(t, "2", cards[2].(map[string]any)["value"])
}

func TestInvalidFiltersReturnBadRequest(t *testing.T) {
	f := newFixture(t, supplierID)
	cases := map[string]string{
		"/brands/10/top-products?limit=abc":       "limit",
		"/brands/10/top-products?limit=500":       "limit",
		"/brands/10/dashboard?period=2y":          "period",
		"/brands/11/retention?granularity=hourly": "granularity",
		"/brands/11/forecast?forecast_months=0":   "forecast_months",
	}
	for path, field := range cases {
		rr := f.get(path)
		require.Equal(t, http.StatusBadRequest, rr.Code, path)
		fields := decode(t, rr)["fields"].(map[string]any)
		assert.Contains(t, fields, field, path)
	}
	assert.Zero(t, f.fake.TotalCalls())
}

func TestWarehouseFailureReturnsErrorPayload(t *testing.T) {
	f := newFixture(t, supplierID)
	f.fake.Errors = map[string]error{"GetBrandKPIs": warehouse.ErrTimeout}

	rr := f.get("/brands/10/dashboard")
	require.Equal(t, http.StatusGatewayTimeout, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, false, body["loading"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "timeout", errBody["category"])
	assert.NotEmpty(t, errBody["message"])
}

func TestQuotaFailureMapsTo429(t *testing.T) {
	f := newFixture(t, supplierID)
	f.fake.Errors = map[string]error{"GetStockSupply": &warehouse.RemoteError{Status: http.StatusTooManyRequests}}
	rr := f.get("/brands/10/stock-supply")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "quota", decode(t, rr)["error"].(map[string]any)["category"])
}

func TestStockSupplyPage(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/10/stock-supply")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.NotContains(t, body, "period")
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "out", data[0].(map[string]any)["status"])
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/10/export/sales-trend.csv")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "sales-trend_2025-06-01.csv")

	records, err := csv.NewReader(bytes.NewReader(rr.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, len(f.fake.Trend)+1)
}

func TestExportCSVLargeTable(t *testing.T) {
	f := newFixture(t, supplierID)
	f.fake.Trend = nil
	for i := 0; i < 36; i++ {
		f.fake.Trend = append(f.fake.Trend, warehouse.SalesTrendPoint{Month: fmt.Sprintf("2023-%02d", i%12+1), Revenue: float64(i)})
	}
	rr := f.get("/brands/10/export/sales-trend.csv?months=36")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	records, err := csv.NewReader(bytes.NewReader(rr.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 37)
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/10/export/top-products.xlsx")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, export.ContentTypeXLSX, rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))
}

func TestExportPremiumReportRequiresSubscription(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/10/export/cohorts.csv")
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "premium_required", decode(t, rr)["type"])

	rr = f.get("/brands/11/export/cohorts.csv")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestExportUnknownReport(t *testing.T) {
	f := newFixture(t, supplierID)
	assert.Equal(t, http.StatusNotFound, f.get("/brands/10/export/ledger.csv").Code)
	assert.Equal(t, http.StatusNotFound, f.get("/brands/10/export/sales-trend.json").Code)
	assert.Equal(t, http.StatusNotFound, f.get("/brands/10/export/sales-trend").Code)
}

func TestExportRateLimitedPerUser(t *testing.T) {
	f := newFixture(t, supplierID, func(o *Options) { o.ExportLimit = 1 })
	require.Equal(t, http.StatusOK, f.get("/brands/10/export/sales-trend.csv").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.get("/brands/10/export/sales-trend.csv").Code)
	assert.Equal(t, http.StatusOK, f.get("/brands/10/dashboard").Code)
}

func TestDashboardPDF(t *testing.T) {
	f := newFixture(t, supplierID)
	rr := f.get("/brands/10/export/dashboard.pdf")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))
	assert.Equal(t, "Acme", f.pdf.last.BrandName)
	assert.Len(t, f.pdf.last.Trend.Rows, 2)
}

func TestDashboardPDFUnavailable(t *testing.T) {
	f := newFixture(t, supplierID, func(o *Options) { o.PDF = nil })
	assert.Equal(t, http.StatusServiceUnavailable, f.get("/brands/10/export/dashboard.pdf").Code)
}

func TestRateLimitKeyPrefersUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	key, err := rateLimitKey(req)
	require.NoError(t, err)
	assert.Equal(t, "ip:10.0.0.1", key)

	f := newFixture(t, supplierID)
	req = req.WithContext(shared.ContextWithSession(req.Context(), f.session))
	key, err = rateLimitKey(req)
	require.NoError(t, err)
	assert.Equal(t, "user:2", key)
}
