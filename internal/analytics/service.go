package analytics

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/brandlens/brandlens/internal/warehouse"
)

// Service coordinates warehouse queries with the cache layer.
type Service struct {
	client warehouse.Client
	cache  *Cache
	logger *slog.Logger
}

// NewService wires a warehouse client with a Cache helper.
func NewService(client warehouse.Client, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, cache: cache, logger: logger}
}

// Cache exposes the underlying cache for invalidation.
func (s *Service) Cache() *Cache {
	return s.cache
}

func fetch[T any](ctx context.Context, s *Service, kind string, brandID int64, params []string, load func(context.Context) (T, error)) (T, error) {
	parts := append([]string{"analytics", kind, formatInt(brandID)}, params...)
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		s.logger.Warn("analytics cache unavailable", slog.String("kind", kind), slog.Any("error", err))
		return load(ctx)
	}
	var out T
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	return out, err
}

// KPIs returns the headline scorecard for the period.
func (s *Service) KPIs(ctx context.Context, brandID int64, period warehouse.Period) (warehouse.BrandKPIs, error) {
	return fetch(ctx, s, "kpis", brandID, []string{string(period)}, func(ctx context.Context) (warehouse.BrandKPIs, error) {
		return s.client.GetBrandKPIs(ctx, brandID, period)
	})
}

// SalesTrend returns monthly revenue for the trailing months.
func (s *Service) SalesTrend(ctx context.Context, brandID int64, months int) ([]warehouse.SalesTrendPoint, error) {
	return fetch(ctx, s, "sales_trend", brandID, []string{strconv.Itoa(months)}, func(ctx context.Context) ([]warehouse.SalesTrendPoint, error) {
		return s.client.GetSalesTrend(ctx, brandID, months)
	})
}

// TopProducts ranks products by revenue.
func (s *Service) TopProducts(ctx context.Context, brandID int64, period warehouse.Period, limit int) ([]warehouse.TopProduct, error) {
	return fetch(ctx, s, "top_products", brandID, []string{string(period), strconv.Itoa(limit)}, func(ctx context.Context) ([]warehouse.TopProduct, error) {
		return s.client.GetTopProducts(ctx, brandID, period, limit)
	})
}

func (s *Service) Cohorts(ctx context.Context, brandID int64, monthsBack int) ([]warehouse.CohortRow, error) {
	return fetch(ctx, s, "cohorts", brandID, []string{strconv.Itoa(monthsBack)}, func(ctx context.Context) ([]warehouse.CohortRow, error) {
		return s.client.GetCohortAnalysis(ctx, brandID, monthsBack)
	})
}

func (s *Service) RFM(ctx context.Context, brandID int64, monthsBack int) (warehouse.RFMAnalysis, error) {
	return fetch(ctx, s, "rfm", brandID, []string{strconv.Itoa(monthsBack)}, func(ctx context.Context) (warehouse.RFMAnalysis, error) {
		return s.client.GetRFMAnalysis(ctx, brandID, monthsBack)
	})
}

func (s *Service) Retention(ctx context.Context, brandID int64, monthsBack int, granularity warehouse.Granularity) ([]warehouse.RetentionPoint, error) {
	return fetch(ctx, s, "retention", brandID, []string{strconv.Itoa(monthsBack), string(granularity)}, func(ctx context.Context) ([]warehouse.RetentionPoint, error) {
		return s.client.GetRetentionAnalysis(ctx, brandID, monthsBack, granularity)
	})
}

func (s *Service) Forecast(ctx context.Context, brandID int64, historyMonths, forecastMonths int) (warehouse.Forecast, error) {
	return fetch(ctx, s, "forecast", brandID, []string{strconv.Itoa(historyMonths), strconv.Itoa(forecastMonths)}, func(ctx context.Context) (warehouse.Forecast, error) {
		return s.client.GetSalesForecast(ctx, brandID, historyMonths, forecastMonths)
	})
}

// MarketShare caches per competitor set; the set is order-insensitive.
func (s *Service) MarketShare(ctx context.Context, brandID int64, competitors []int64, period warehouse.Period) ([]warehouse.MarketShareRow, error) {
	ids := slices.Clone(competitors)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, formatInt(id))
	}
	set := strings.Join(tokens, ",")
	if set == "" {
		set = "-"
	}
	return fetch(ctx, s, "market_share", brandID, []string{string(period), set}, func(ctx context.Context) ([]warehouse.MarketShareRow, error) {
		return s.client.GetMarketShareByCategory(ctx, brandID, ids, period)
	})
}

func (s *Service) Marketing(ctx context.Context, brandID int64, period warehouse.Period) (warehouse.MarketingAnalytics, error) {
	return fetch(ctx, s, "marketing", brandID, []string{string(period)}, func(ctx context.Context) (warehouse.MarketingAnalytics, error) {
		return s.client.GetMarketingAnalytics(ctx, brandID, period)
	})
}

func (s *Service) Subscriptions(ctx context.Context, brandID int64, period warehouse.Period) (warehouse.SubscriptionOverview, error) {
	return fetch(ctx, s, "subscriptions", brandID, []string{string(period)}, func(ctx context.Context) (warehouse.SubscriptionOverview, error) {
		return s.client.GetSubscriptionOverview(ctx, brandID, period)
	})
}

func (s *Service) PurchaseOrders(ctx context.Context, brandID int64, period warehouse.Period) ([]warehouse.PurchaseOrder, error) {
	return fetch(ctx, s, "purchase_orders", brandID, []string{string(period)}, func(ctx context.Context) ([]warehouse.PurchaseOrder, error) {
		return s.client.GetPurchaseOrders(ctx, brandID, period)
	})
}

func (s *Service) StockSupply(ctx context.Context, brandID int64) ([]warehouse.StockItem, error) {
	return fetch(ctx, s, "stock_supply", brandID, nil, func(ctx context.Context) ([]warehouse.StockItem, error) {
		return s.client.GetStockSupply(ctx, brandID)
	})
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
