package warehouse

import (
	"context"
	"fmt"
	"strings"
)

// Client exposes the query methods of the external analytics warehouse. Every
// call may fail; callers surface failures through Classify.
type Client interface {
	GetBrandKPIs(ctx context.Context, brandID int64, period Period) (BrandKPIs, error)
	GetSalesTrend(ctx context.Context, brandID int64, months int) ([]SalesTrendPoint, error)
	GetTopProducts(ctx context.Context, brandID int64, period Period, limit int) ([]TopProduct, error)
	GetCohortAnalysis(ctx context.Context, brandID int64, monthsBack int) ([]CohortRow, error)
	GetRFMAnalysis(ctx context.Context, brandID int64, monthsBack int) (RFMAnalysis, error)
	GetRetentionAnalysis(ctx context.Context, brandID int64, monthsBack int, granularity Granularity) ([]RetentionPoint, error)
	GetSalesForecast(ctx context.Context, brandID int64, historyMonths, forecastMonths int) (Forecast, error)
	GetMarketShareByCategory(ctx context.Context, brandID int64, competitors []int64, period Period) ([]MarketShareRow, error)
	GetMarketingAnalytics(ctx context.Context, brandID int64, period Period) (MarketingAnalytics, error)
	GetSubscriptionOverview(ctx context.Context, brandID int64, period Period) (SubscriptionOverview, error)
	GetPurchaseOrders(ctx context.Context, brandID int64, period Period) ([]PurchaseOrder, error)
	GetStockSupply(ctx context.Context, brandID int64) ([]StockItem, error)
}

// Period selects the reporting window understood by the warehouse.
type Period string

const (
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
	Period12m Period = "12m"
	PeriodYTD Period = "ytd"
)

// DefaultPeriod is used when a request names none.
const DefaultPeriod = Period30d

// Periods lists every supported window in ascending span.
func Periods() []Period {
	return []Period{Period7d, Period30d, Period90d, Period12m, PeriodYTD}
}

// Valid reports whether p is a supported window.
func (p Period) Valid() bool {
	switch p {
	case Period7d, Period30d, Period90d, Period12m, PeriodYTD:
		return true
	}
	return false
}

// ParsePeriod normalises user input, defaulting empty values.
func ParsePeriod(raw string) (Period, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultPeriod, nil
	}
	p := Period(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unsupported period %q", raw)
	}
	return p, nil
}

// Granularity controls the bucket size of retention series.
type Granularity string

const (
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
)

// Valid reports whether g is supported.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityWeek, GranularityMonth, GranularityQuarter:
		return true
	}
	return false
}

// ParseGranularity normalises user input, defaulting to monthly buckets.
func ParseGranularity(raw string) (Granularity, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return GranularityMonth, nil
	}
	g := Granularity(raw)
	if !g.Valid() {
		return "", fmt.Errorf("unsupported granularity %q", raw)
	}
	return g, nil
}
