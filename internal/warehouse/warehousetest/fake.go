// Package warehousetest provides an in-memory warehouse client for tests.
package warehousetest

import (
	"context"
	"sync"

	"github.com/brandlens/brandlens/internal/warehouse"
)

// Fake returns canned payloads. Errors are keyed by method name, for example
// "GetBrandKPIs".
type Fake struct {
	KPIs          warehouse.BrandKPIs
	Trend         []warehouse.SalesTrendPoint
	TopProducts   []warehouse.TopProduct
	Cohorts       []warehouse.CohortRow
	RFM           warehouse.RFMAnalysis
	Retention     []warehouse.RetentionPoint
	Forecast      warehouse.Forecast
	MarketShare   []warehouse.MarketShareRow
	Marketing     warehouse.MarketingAnalytics
	Subscriptions warehouse.SubscriptionOverview
	Orders        []warehouse.PurchaseOrder
	Stock         []warehouse.StockItem
	Errors        map[string]error

	mu    sync.Mutex
	calls map[string]int
}

var _ warehouse.Client = (*Fake)(nil)

// Calls reports how often method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls reports invocations across all methods.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *Fake) record(ctx context.Context, method string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
	err := f.Errors[method]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (f *Fake) GetBrandKPIs(ctx context.Context, brandID int64, period warehouse.Period) (warehouse.BrandKPIs, error) {
	if err := f.record(ctx, "GetBrandKPIs"); err != nil {
		return warehouse.BrandKPIs{}, err
	}
	out := f.KPIs
	out.BrandID = brandID
	out.Period = period
	return out, nil
}

func (f *Fake) GetSalesTrend(ctx context.Context, _ int64, _ int) ([]warehouse.SalesTrendPoint, error) {
	if err := f.record(ctx, "GetSalesTrend"); err != nil {
		return nil, err
	}
	return f.Trend, nil
}

func (f *Fake) GetTopProducts(ctx context.Context, _ int64, _ warehouse.Period, limit int) ([]warehouse.TopProduct, error) {
	if err := f.record(ctx, "GetTopProducts"); err != nil {
		return nil, err
	}
	if limit > 0 && len(f.TopProducts) > limit {
		return f.TopProducts[:limit], nil
	}
	return f.TopProducts, nil
}

func (f *Fake) GetCohortAnalysis(ctx context.Context, _ int64, _ int) ([]warehouse.CohortRow, error) {
	if err := f.record(ctx, "GetCohortAnalysis"); err != nil {
		return nil, err
	}
	return f.Cohorts, nil
}

func (f *Fake) GetRFMAnalysis(ctx context.Context, _ int64, _ int) (warehouse.RFMAnalysis, error) {
	if err := f.record(ctx, "GetRFMAnalysis"); err != nil {
		return warehouse.RFMAnalysis{}, err
	}
	return f.RFM, nil
}

func (f *Fake) GetRetentionAnalysis(ctx context.Context, _ int64, _ int, _ warehouse.Granularity) ([]warehouse.RetentionPoint, error) {
	if err := f.record(ctx, "GetRetentionAnalysis"); err != nil {
		return nil, err
	}
	return f.Retention, nil
}

func (f *Fake) GetSalesForecast(ctx context.Context, _ int64, _, _ int) (warehouse.Forecast, error) {
	if err := f.record(ctx, "GetSalesForecast"); err != nil {
		return warehouse.Forecast{}, err
	}
	return f.Forecast, nil
}

func (f *Fake) GetMarketShareByCategory(ctx context.Context, _ int64, _ []int64, _ warehouse.Period) ([]warehouse.MarketShareRow, error) {
	if err := f.record(ctx, "GetMarketShareByCategory"); err != nil {
		return nil, err
	}
	return f.MarketShare, nil
}

func (f *Fake) GetMarketingAnalytics(ctx context.Context, _ int64, _ warehouse.Period) (warehouse.MarketingAnalytics, error) {
	if err := f.record(ctx, "GetMarketingAnalytics"); err != nil {
		return warehouse.MarketingAnalytics{}, err
	}
	return f.Marketing, nil
}

func (f *Fake) GetSubscriptionOverview(ctx context.Context, _ int64, _ warehouse.Period) (warehouse.SubscriptionOverview, error) {
	if err := f.record(ctx, "GetSubscriptionOverview"); err != nil {
		return warehouse.SubscriptionOverview{}, err
	}
	return f.Subscriptions, nil
}

func (f *Fake) GetPurchaseOrders(ctx context.Context, _ int64, _ warehouse.Period) ([]warehouse.PurchaseOrder, error) {
	if err := f.record(ctx, "GetPurchaseOrders"); err != nil {
		return nil, err
	}
	return f.Orders, nil
}

func (f *Fake) GetStockSupply(ctx context.Context, _ int64) ([]warehouse.StockItem, error) {
	if err := f.record(ctx, "GetStockSupply"); err != nil {
		return nil, err
	}
	return f.Stock, nil
}
