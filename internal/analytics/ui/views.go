// Package ui turns analytics results into page payloads: formatted headline
// cards, chart data and the raw rows behind them.
package ui

import (
	"time"

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/analytics/chart"
	"github.com/brandlens/brandlens/internal/warehouse"
)

// Card is a headline metric. Value is display text; Raw keeps the number.
type Card struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
	Delta string  `json:"delta,omitempty"`
	Trend string  `json:"trend,omitempty"`
}

// Page is the JSON body of every analytics page.
type Page struct {
	BrandID  int64                  `json:"brand_id"`
	Period   string                 `json:"period,omitempty"`
	Currency string                 `json:"currency"`
	Cards    []Card                 `json:"cards"`
	Charts   map[string]chart.Chart `json:"charts"`
	Summary  any                    `json:"summary,omitempty"`
	Data     any                    `json:"data"`
	Loading  bool                   `json:"loading"`
}

// Meta identifies the brand and period a page was rendered for.
type Meta struct {
	BrandID int64
	Period  warehouse.Period
}

func (f *Formatter) page(meta Meta, data any) Page {
	return Page{
		BrandID:  meta.BrandID,
		Period:   string(meta.Period),
		Currency: f.Currency(),
		Cards:    []Card{},
		Charts:   map[string]chart.Chart{},
		Data:     data,
	}
}

func trendFromDelta(v float64) string {
	switch {
	case v > 0:
		return string(analytics.TrendImproving)
	case v < 0:
		return string(analytics.TrendDeclining)
	}
	return string(analytics.TrendStable)
}

// DashboardData is the combined overview payload.
type DashboardData struct {
	KPIs        warehouse.BrandKPIs         `json:"kpis"`
	Trend       []warehouse.SalesTrendPoint `json:"trend"`
	TopProducts []warehouse.TopProduct      `json:"top_products"`
}

// KPICards renders the headline cards for a KPI block.
func (f *Formatter) KPICards(k warehouse.BrandKPIs) []Card {
	return []Card{
		{Key: "revenue", Label: "Revenue", Value: f.Money(k.Revenue), Raw: k.Revenue, Delta: f.Delta(k.RevenueGrowthPct), Trend: trendFromDelta(k.RevenueGrowthPct)},
		{Key: "orders", Label: "Orders", Value: f.Int(k.Orders), Raw: float64(k.Orders)},
		{Key: "units", Label: "Units sold", Value: f.Int(k.Units), Raw: float64(k.Units)},
		{Key: "customers", Label: "Customers", Value: f.Int(k.Customers), Raw: float64(k.Customers)},
		{Key: "new_customers", Label: "New customers", Value: f.Int(k.NewCustomers), Raw: float64(k.NewCustomers)},
		{Key: "aov", Label: "Average order value", Value: f.Money(k.AvgOrderValue), Raw: k.AvgOrderValue},
	}
}

// Dashboard builds the overview page.
func (f *Formatter) Dashboard(meta Meta, data DashboardData) Page {
	p := f.page(meta, data)
	p.Cards = f.KPICards(data.KPIs)
	p.Charts["revenue"] = chart.KPIDelta(data.KPIs)
	p.Charts["trend"] = chart.SalesTrend(data.Trend)
	p.Charts["top_products"] = chart.TopProducts(data.TopProducts)
	return p
}

// SalesTrend builds the monthly sales page.
func (f *Formatter) SalesTrend(meta Meta, points []warehouse.SalesTrendPoint) Page {
	p := f.page(meta, points)
	var revenue float64
	var orders int64
	values := make([]float64, 0, len(points))
	for _, pt := range points {
		revenue += pt.Revenue
		orders += pt.Orders
		values = append(values, pt.Revenue)
	}
	split := analytics.RevenueTrend(values)
	p.Cards = append(p.Cards,
		Card{Key: "revenue", Label: "Revenue", Value: f.Money(revenue), Raw: revenue, Trend: string(split.Trend)},
		Card{Key: "orders", Label: "Orders", Value: f.Int(orders), Raw: float64(orders)},
	)
	p.Summary = split
	p.Charts["trend"] = chart.SalesTrend(points)
	return p
}

// TopProducts builds the product ranking page.
func (f *Formatter) TopProducts(meta Meta, products []warehouse.TopProduct) Page {
	p := f.page(meta, products)
	if len(products) > 0 {
		lead := products[0]
		p.Cards = append(p.Cards, Card{Key: "top_product", Label: "Best seller", Value: lead.Name, Raw: lead.Revenue, Delta: f.Percent(lead.SharePct)})
	}
	p.Charts["top_products"] = chart.TopProducts(products)
	return p
}

// Cohorts builds the cohort retention page.
func (f *Formatter) Cohorts(meta Meta, rows []warehouse.CohortRow) Page {
	summary := analytics.SummarizeCohorts(rows)
	p := f.page(meta, rows)
	p.Summary = summary
	for _, m := range []struct {
		key, label string
		metric     analytics.CohortMetric
	}{
		{"month_1", "Month 1 retention", summary.Month1},
		{"month_3", "Month 3 retention", summary.Month3},
		{"month_6", "Month 6 retention", summary.Month6},
	} {
		p.Cards = append(p.Cards, Card{Key: m.key, Label: m.label, Value: f.Percent(m.metric.Average), Raw: m.metric.Average, Trend: string(m.metric.Trend)})
	}
	p.Charts["heatmap"] = chart.CohortHeatmap(rows, 12)
	return p
}

// Retention builds the repeat-customer page.
func (f *Formatter) Retention(meta Meta, points []warehouse.RetentionPoint) Page {
	summary := analytics.SummarizeRetention(points)
	p := f.page(meta, points)
	p.Summary = summary
	p.Cards = append(p.Cards,
		Card{Key: "latest", Label: "Latest retention", Value: f.Percent(summary.Latest), Raw: summary.Latest, Delta: f.Delta(summary.Delta), Trend: string(summary.Trend)},
		Card{Key: "average", Label: "Average retention", Value: f.Percent(summary.Average), Raw: summary.Average},
	)
	p.Charts["retention"] = chart.Retention(points)
	return p
}

// RFM builds the customer segmentation page.
func (f *Formatter) RFM(meta Meta, analysis warehouse.RFMAnalysis) Page {
	summary := analytics.SummarizeRFM(analysis)
	p := f.page(meta, analysis)
	p.Summary = summary
	p.Cards = append(p.Cards,
		Card{Key: "customers", Label: "Customers", Value: f.Int(summary.TotalCustomers), Raw: float64(summary.TotalCustomers)},
		Card{Key: "champions", Label: "Champions", Value: f.Percent(summary.ChampionsPct), Raw: summary.ChampionsPct},
		Card{Key: "at_risk", Label: "At risk", Value: f.Percent(summary.AtRiskPct), Raw: summary.AtRiskPct},
	)
	p.Charts["segments"] = chart.RFMSegments(summary.Segments)
	p.Charts["matrix"] = chart.RFMMatrix(analysis.Cells)
	return p
}

// Forecast builds the projection page.
func (f *Formatter) Forecast(meta Meta, forecast warehouse.Forecast) Page {
	summary := analytics.SummarizeForecast(forecast)
	p := f.page(meta, forecast)
	p.Summary = summary
	p.Cards = append(p.Cards,
		Card{Key: "projected", Label: "Projected revenue", Value: f.Money(summary.ProjectedTotal), Raw: summary.ProjectedTotal, Delta: f.Delta(summary.GrowthPct), Trend: trendFromDelta(summary.GrowthPct)},
		Card{Key: "band", Label: "Average range", Value: f.Money(summary.AvgBandWidth), Raw: summary.AvgBandWidth},
	)
	p.Charts["forecast"] = chart.Forecast(forecast)
	return p
}

// MarketShare builds the category share page.
func (f *Formatter) MarketShare(meta Meta, rows []warehouse.MarketShareRow, competitors int) Page {
	tree := analytics.BuildMarketShareTree(rows)
	p := f.page(meta, tree)
	var brand, market float64
	for _, c := range tree {
		brand += c.BrandRevenue
		market += c.MarketRevenue
	}
	overall := 0.0
	if market > 0 {
		overall = brand / market * 100
	}
	p.Cards = append(p.Cards,
		Card{Key: "share", Label: "Overall share", Value: f.Percent(overall), Raw: overall},
		Card{Key: "categories", Label: "Categories", Value: f.Int(int64(len(tree))), Raw: float64(len(tree))},
		Card{Key: "competitors", Label: "Competitors compared", Value: f.Int(int64(competitors)), Raw: float64(competitors)},
	)
	p.Charts["share"] = chart.MarketShare(tree)
	return p
}

// Marketing builds the campaign page.
func (f *Formatter) Marketing(meta Meta, data warehouse.MarketingAnalytics) Page {
	summary := analytics.SummarizeMarketing(data)
	p := f.page(meta, data.Campaigns)
	p.Summary = summary
	t := summary.Totals
	p.Cards = append(p.Cards,
		Card{Key: "spend", Label: "Spend", Value: f.Money(t.Spend), Raw: t.Spend},
		Card{Key: "revenue", Label: "Attributed revenue", Value: f.Money(t.Revenue), Raw: t.Revenue},
		Card{Key: "roas", Label: "ROAS", Value: f.Number(t.ROAS, 2) + "x", Raw: t.ROAS},
		Card{Key: "ctr", Label: "CTR", Value: f.Percent(t.CTRPct), Raw: t.CTRPct},
	)
	p.Charts["channels"] = chart.MarketingChannels(summary)
	return p
}

// Subscriptions builds the recurring revenue page.
func (f *Formatter) Subscriptions(meta Meta, overview warehouse.SubscriptionOverview) Page {
	summary := analytics.SummarizeSubscriptions(overview)
	p := f.page(meta, overview)
	p.Summary = summary
	p.Cards = append(p.Cards,
		Card{Key: "mrr", Label: "MRR", Value: f.Money(summary.MRR), Raw: summary.MRR, Delta: f.Delta(summary.MRRGrowthPct), Trend: trendFromDelta(summary.MRRGrowthPct)},
		Card{Key: "arr", Label: "ARR", Value: f.Money(summary.ARR), Raw: summary.ARR},
		Card{Key: "active", Label: "Active subscribers", Value: f.Int(summary.Active), Raw: float64(summary.Active)},
		Card{Key: "churn", Label: "Churn", Value: f.Percent(summary.ChurnPct), Raw: summary.ChurnPct},
	)
	p.Charts["mrr"] = chart.Subscriptions(overview.Trend)
	return p
}

// PurchaseOrders builds the supplier delivery page.
func (f *Formatter) PurchaseOrders(meta Meta, orders []warehouse.PurchaseOrder, now time.Time) Page {
	summary := analytics.SummarizeOTIF(orders, now)
	p := f.page(meta, orders)
	p.Summary = summary
	p.Cards = append(p.Cards,
		Card{Key: "otif", Label: "OTIF", Value: f.Percent(summary.OTIFPct), Raw: summary.OTIFPct},
		Card{Key: "open", Label: "Open orders", Value: f.Int(int64(summary.OpenOrders)), Raw: float64(summary.OpenOrders)},
		Card{Key: "late_open", Label: "Overdue", Value: f.Int(int64(summary.LateOpenOrders)), Raw: float64(summary.LateOpenOrders)},
	)
	p.Charts["otif"] = chart.OTIF(summary)
	return p
}

// StockSupply builds the inventory cover page.
func (f *Formatter) StockSupply(meta Meta, items []warehouse.StockItem) Page {
	summary := analytics.ClassifyStock(items)
	p := f.page(meta, summary.Positions)
	p.Summary = summary.Counts
	p.Cards = append(p.Cards,
		Card{Key: "skus", Label: "SKUs", Value: f.Int(int64(len(items))), Raw: float64(len(items))},
		Card{Key: "out", Label: "Out of stock", Value: f.Int(int64(summary.Counts[analytics.StockOut])), Raw: float64(summary.Counts[analytics.StockOut])},
		Card{Key: "low", Label: "Low cover", Value: f.Int(int64(summary.Counts[analytics.StockLow])), Raw: float64(summary.Counts[analytics.StockLow])},
	)
	p.Charts["status"] = chart.StockStatus(summary)
	return p
}
