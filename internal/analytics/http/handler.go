package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/brandlens/brandlens/internal/analytics/export"
	"github.com/brandlens/brandlens/internal/analytics/ui"
	"github.com/brandlens/brandlens/internal/brands"
	"github.com/brandlens/brandlens/internal/platform/httpx"
	"github.com/brandlens/brandlens/internal/shared"
	"github.com/brandlens/brandlens/internal/warehouse"
)

const (
	requestTimeout     = 25 * time.Second
	defaultExportLimit = 10
)

// AnalyticsService defines the cached warehouse reads used by the handler.
type AnalyticsService interface {
	KPIs(ctx context.Context, brandID int64, period warehouse.Period) (warehouse.BrandKPIs, error)
	SalesTrend(ctx context.Context, brandID int64, months int) ([]warehouse.SalesTrendPoint, error)
	TopProducts(ctx context.Context, brandID int64, period warehouse.Period, limit int) ([]warehouse.TopProduct, error)
	Cohorts(ctx context.Context, brandID int64, monthsBack int) ([]warehouse.CohortRow, error)
	RFM(ctx context.Context, brandID int64, monthsBack int) (warehouse.RFMAnalysis, error)
	Retention(ctx context.Context, brandID int64, monthsBack int, granularity warehouse.Granularity) ([]warehouse.RetentionPoint, error)
	Forecast(ctx context.Context, brandID int64, historyMonths, forecastMonths int) (warehouse.Forecast, error)
	MarketShare(ctx context.Context, brandID int64, competitors []int64, period warehouse.Period) ([]warehouse.MarketShareRow, error)
	Marketing(ctx context.Context, brandID int64, period warehouse.Period) (warehouse.MarketingAnalytics, error)
	Subscriptions(ctx context.Context, brandID int64, period warehouse.Period) (warehouse.SubscriptionOverview, error)
	PurchaseOrders(ctx context.Context, brandID int64, period warehouse.Period) ([]warehouse.PurchaseOrder, error)
	StockSupply(ctx context.Context, brandID int64) ([]warehouse.StockItem, error)
}

// PDFService renders dashboard content to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error)
}

// Options configures a Handler.
type Options struct {
	Logger          *slog.Logger
	Service         AnalyticsService
	Brands          brands.Middleware
	PDF             PDFService
	DefaultLocale   string
	DefaultCurrency string
	// ExportLimit is the per-user export requests allowed per minute.
	ExportLimit int
}

// Handler serves the brand analytics pages as JSON.
type Handler struct {
	logger      *slog.Logger
	service     AnalyticsService
	brands      brands.Middleware
	pdf         PDFService
	validator   *validator.Validate
	locale      string
	currency    string
	exportLimit int
	exportPool  sync.Pool
	now         func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		logger:      opts.Logger,
		service:     opts.Service,
		brands:      opts.Brands,
		pdf:         opts.PDF,
		validator:   validator.New(),
		locale:      opts.DefaultLocale,
		currency:    opts.DefaultCurrency,
		exportLimit: opts.ExportLimit,
		now:         time.Now,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.locale == "" {
		h.locale = "en-US"
	}
	if h.currency == "" {
		h.currency = "USD"
	}
	if h.exportLimit <= 0 {
		h.exportLimit = defaultExportLimit
	}
	h.exportPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// pageContext is what every page handler needs after authorization.
type pageContext struct {
	userID  int64
	brand   brands.Brand
	filters pageFilters
	format  *ui.Formatter
}

func (p pageContext) meta() ui.Meta {
	return ui.Meta{BrandID: p.brand.ID, Period: p.filters.period()}
}

// begin resolves the brand authorized by the middleware and parses filters.
// It writes the error response itself and returns false on failure.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request) (pageContext, bool) {
	ctx := r.Context()
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return pageContext{}, false
	}
	brand, ok := brands.BrandFromContext(ctx)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Brand", "brand id missing")
		return pageContext{}, false
	}
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return pageContext{}, false
	}
	if sess := shared.SessionFromContext(ctx); sess != nil {
		sess.SetSelection(brand.ID, filters.Period)
	}
	return pageContext{
		userID:  userID,
		brand:   brand,
		filters: filters,
		format:  ui.MustFormatter(h.locale, brand.Currency, h.currency),
	}, true
}

// errorPage replaces page content when the warehouse load fails.
type errorPage struct {
	Error   warehouse.DisplayError `json:"error"`
	Loading bool                   `json:"loading"`
}

// respondLoadError converts a failed warehouse load into the page error
// payload with a category specific status.
func (h *Handler) respondLoadError(w http.ResponseWriter, r *http.Request, op string, err error) {
	display := warehouse.Classify(err)
	h.logger.WarnContext(r.Context(), "analytics load failed",
		slog.String("op", op),
		slog.String("category", string(display.Category)),
		slog.Any("error", err),
	)
	httpx.JSON(w, display.Status(), errorPage{Error: display, Loading: false})
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var verr validationError
	if errors.As(err, &verr) {
		httpx.JSON(w, http.StatusBadRequest, map[string]any{
			"title":  "Invalid Filter",
			"status": http.StatusBadRequest,
			"detail": verr.Error(),
			"fields": verr.fields,
		})
		return
	}
	httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
}

func (h *Handler) handleServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "analytics handler error", slog.String("op", op), slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) logError(r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "analytics handler error", slog.String("op", op), slog.Any("error", err))
}
