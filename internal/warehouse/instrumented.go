package warehouse

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives per-call outcomes.
type Observer interface {
	ObserveWarehouseCall(method, outcome string, elapsed time.Duration)
}

// Instrumented decorates a Client with metrics and failure logging.
type Instrumented struct {
	next     Client
	observer Observer
	logger   *slog.Logger
}

var _ Client = (*Instrumented)(nil)

// NewInstrumented wraps next. Either observer or logger may be nil.
func NewInstrumented(next Client, observer Observer, logger *slog.Logger) *Instrumented {
	return &Instrumented{next: next, observer: observer, logger: logger}
}

func observe[T any](ctx context.Context, i *Instrumented, method string, brandID int64, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	outcome := "ok"
	if err != nil {
		outcome = string(Classify(err).Category)
		if i.logger != nil {
			i.logger.WarnContext(ctx, "warehouse call failed",
				slog.String("method", method),
				slog.Int64("brand_id", brandID),
				slog.String("category", outcome),
				slog.Any("error", err))
		}
	}
	if i.observer != nil {
		i.observer.ObserveWarehouseCall(method, outcome, time.Since(start))
	}
	return out, err
}

func (i *Instrumented) GetBrandKPIs(ctx context.Context, brandID int64, period Period) (BrandKPIs, error) {
	return observe(ctx, i, "get_brand_kpis", brandID, func() (BrandKPIs, error) {
		return i.next.GetBrandKPIs(ctx, brandID, period)
	})
}

func (i *Instrumented) GetSalesTrend(ctx context.Context, brandID int64, months int) ([]SalesTrendPoint, error) {
	return observe(ctx, i, "get_sales_trend", brandID, func() ([]SalesTrendPoint, error) {
		return i.next.GetSalesTrend(ctx, brandID, months)
	})
}

func (i *Instrumented) GetTopProducts(ctx context.Context, brandID int64, period Period, limit int) ([]TopProduct, error) {
	return observe(ctx, i, "get_top_products", brandID, func() ([]TopProduct, error) {
		return i.next.GetTopProducts(ctx, brandID, period, limit)
	})
}

func (i *Instrumented) GetCohortAnalysis(ctx context.Context, brandID int64, monthsBack int) ([]CohortRow, error) {
	return observe(ctx, i, "get_cohort_analysis", brandID, func() ([]CohortRow, error) {
		return i.next.GetCohortAnalysis(ctx, brandID, monthsBack)
	})
}

func (i *Instrumented) GetRFMAnalysis(ctx context.Context, brandID int64, monthsBack int) (RFMAnalysis, error) {
	return observe(ctx, i, "get_rfm_analysis", brandID, func() (RFMAnalysis, error) {
		return i.next.GetRFMAnalysis(ctx, brandID, monthsBack)
	})
}

func (i *Instrumented) GetRetentionAnalysis(ctx context.Context, brandID int64, monthsBack int, granularity Granularity) ([]RetentionPoint, error) {
	return observe(ctx, i, "get_retention_analysis", brandID, func() ([]RetentionPoint, error) {
		return i.next.GetRetentionAnalysis(ctx, brandID, monthsBack, granularity)
	})
}

func (i *Instrumented) GetSalesForecast(ctx context.Context, brandID int64, historyMonths, forecastMonths int) (Forecast, error) {
	return observe(ctx, i, "get_sales_forecast", brandID, func() (Forecast, error) {
		return i.next.GetSalesForecast(ctx, brandID, historyMonths, forecastMonths)
	})
}

func (i *Instrumented) GetMarketShareByCategory(ctx context.Context, brandID int64, competitors []int64, period Period) ([]MarketShareRow, error) {
	return observe(ctx, i, "get_market_share_by_category", brandID, func() ([]MarketShareRow, error) {
		return i.next.GetMarketShareByCategory(ctx, brandID, competitors, period)
	})
}

func (i *Instrumented) GetMarketingAnalytics(ctx context.Context, brandID int64, period Period) (MarketingAnalytics, error) {
	return observe(ctx, i, "get_marketing_analytics", brandID, func() (MarketingAnalytics, error) {
		return i.next.GetMarketingAnalytics(ctx, brandID, period)
	})
}

func (i *Instrumented) GetSubscriptionOverview(ctx context.Context, brandID int64, period Period) (SubscriptionOverview, error) {
	return observe(ctx, i, "get_subscription_overview", brandID, func() (SubscriptionOverview, error) {
		return i.next.GetSubscriptionOverview(ctx, brandID, period)
	})
}

func (i *Instrumented) GetPurchaseOrders(ctx context.Context, brandID int64, period Period) ([]PurchaseOrder, error) {
	return observe(ctx, i, "get_purchase_orders", brandID, func() ([]PurchaseOrder, error) {
		return i.next.GetPurchaseOrders(ctx, brandID, period)
	})
}

func (i *Instrumented) GetStockSupply(ctx context.Context, brandID int64) ([]StockItem, error) {
	return observe(ctx, i, "get_stock_supply", brandID, func() ([]StockItem, error) {
		return i.next.GetStockSupply(ctx, brandID)
	})
}
