package ui

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brandlens/brandlens/internal/warehouse"
)

func usd(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter("en-US", "USD")
	require.NoError(t, err)
	return f
}

func TestDashboardPage(t *testing.T) {
	f := usd(t)
	page := f.Dashboard(Meta{BrandID: 7, Period: warehouse.Period30d}, DashboardData{
		KPIs:        warehouse.BrandKPIs{Revenue: 1234.5, Orders: 1200, RevenueGrowthPct: 12.5},
		Trend:       []warehouse.SalesTrendPoint{{Month: "2024-01", Revenue: 10}},
		TopProducts: []warehouse.TopProduct{{SKU: "A", Name: "Oats", Revenue: 5}},
	})
	require.Equal(t, int64(7), page.BrandID)
	require.Equal(t, "30d", page.Period)
	require.Equal(t, "$1,234.50", page.Cards[0].Value)
	require.Equal(t, "+12.5%", page.Cards[0].Delta)
	require.Equal(t, "improving", page.Cards[0].Trend)
	require.Equal(t, "1,200", page.Cards[1].Value)
	require.Contains(t, page.Charts, "trend")
	require.Contains(t, page.Charts, "top_products")
	require.False(t, page.Loading)
}

func TestEmptyPagesMarshalWithArrays(t *testing.T) {
	f := usd(t)
	page := f.StockSupply(Meta{BrandID: 1}, nil)
	raw, err := json.Marshal(page)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, []any{}, decoded["data"])
	require.Equal(t, false, decoded["loading"])
	require.NotContains(t, decoded, "period")
}

func TestMarketSharePageOverallShare(t *testing.T) {
	f := usd(t)
	page := f.MarketShare(Meta{BrandID: 1, Period: warehouse.Period90d}, []warehouse.MarketShareRow{
		{Category: "Snacks", BrandRevenue: 25, MarketRevenue: 100, SharePct: 25},
		{Category: "Drinks", BrandRevenue: 25, MarketRevenue: 400, SharePct: 6.25},
	}, 2)
	require.Equal(t, "10.0%", page.Cards[0].Value)
	require.Equal(t, "2", page.Cards[2].Value)
}

func TestPurchaseOrdersPage(t *testing.T) {
	f := usd(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	expected := now.AddDate(0, 0, -5)
	delivered := now.AddDate(0, 0, -6)
	page := f.PurchaseOrders(Meta{BrandID: 1}, []warehouse.PurchaseOrder{
		{Number: "PO-1", Status: "delivered", ExpectedAt: expected, DeliveredAt: &delivered, OrderedQty: 10, DeliveredQty: 10},
	}, now)
	require.Equal(t, "100.0%", page.Cards[0].Value)
}

func TestMarketingPageROAS(t *testing.T) {
	f := usd(t)
	page := f.Marketing(Meta{BrandID: 1}, warehouse.MarketingAnalytics{Campaigns: []warehouse.Campaign{
		{Name: "Spring", Channel: "email", Spend: 100, Revenue: 250, Impressions: 1000, Clicks: 50},
	}})
	require.Equal(t, "2.50x", page.Cards[2].Value)
	require.Equal(t, "5.0%", page.Cards[3].Value)
}
