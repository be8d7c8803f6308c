package export

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/warehouse"
)

// Report names accepted by the export routes.
const (
	ReportSalesTrend     = "sales-trend"
	ReportTopProducts    = "top-products"
	ReportCohorts        = "cohorts"
	ReportRetention      = "retention"
	ReportRFM            = "rfm"
	ReportForecast       = "forecast"
	ReportMarketShare    = "market-share"
	ReportMarketing      = "marketing"
	ReportSubscriptions  = "subscriptions"
	ReportPurchaseOrders = "purchase-orders"
	ReportStockSupply    = "stock-supply"
)

// ErrUnknownReport is returned for report names without a table builder.
var ErrUnknownReport = errors.New("export: unknown report")

// Table is a rectangular export. Cells hold string, float64, int or int64
// values, or nil for blanks.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]any
}

// Filename returns "<report>_<YYYY-MM-DD>.<ext>".
func Filename(report string, date time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", report, date.Format("2006-01-02"), ext)
}

// SalesTrendTable lists monthly sales.
func SalesTrendTable(points []warehouse.SalesTrendPoint) Table {
	t := Table{Title: "Sales trend", Headers: []string{"Month", "Revenue", "Orders", "Units"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []any{p.Month, p.Revenue, p.Orders, p.Units})
	}
	return t
}

// TopProductsTable lists the best selling products.
func TopProductsTable(products []warehouse.TopProduct) Table {
	t := Table{Title: "Top products", Headers: []string{"SKU", "Product", "Category", "Revenue", "Units", "Share %"}}
	for _, p := range products {
		t.Rows = append(t.Rows, []any{p.SKU, p.Name, p.Category, p.Revenue, p.Units, p.SharePct})
	}
	return t
}

// CohortTable writes one row per cohort with retention per month offset.
func CohortTable(rows []warehouse.CohortRow) Table {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Retention))
	}
	t := Table{Title: "Cohorts", Headers: []string{"Cohort", "Customers"}}
	for i := 0; i < width; i++ {
		t.Headers = append(t.Headers, "M"+strconv.Itoa(i))
	}
	for _, r := range rows {
		row := []any{r.Cohort, r.Customers}
		for i := 0; i < width; i++ {
			if v, ok := r.RetentionAt(i); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// RetentionTable lists retention per period.
func RetentionTable(points []warehouse.RetentionPoint) Table {
	t := Table{Title: "Retention", Headers: []string{"Period", "Customers", "Retained", "Retained %"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []any{p.Period, p.Customers, p.Retained, p.RetainedPct})
	}
	return t
}

// RFMTable lists segments with their shares.
func RFMTable(analysis warehouse.RFMAnalysis) Table {
	summary := analytics.SummarizeRFM(analysis)
	t := Table{Title: "RFM segments", Headers: []string{"Segment", "Customers", "Revenue", "Share %"}}
	for _, s := range summary.Segments {
		t.Rows = append(t.Rows, []any{s.Name, s.Customers, s.Revenue, s.Pct})
	}
	return t
}

// ForecastTable lists history followed by the projection.
func ForecastTable(f warehouse.Forecast) Table {
	t := Table{Title: "Forecast", Headers: []string{"Month", "Actual", "Forecast", "Lower", "Upper"}}
	for _, h := range f.History {
		t.Rows = append(t.Rows, []any{h.Month, h.Revenue, nil, nil, nil})
	}
	for _, p := range f.Projection {
		t.Rows = append(t.Rows, []any{p.Month, nil, p.Baseline, p.LowerBound, p.UpperBound})
	}
	return t
}

// MarketShareTable flattens the category tree, parents before children.
func MarketShareTable(rows []warehouse.MarketShareRow) Table {
	t := Table{Title: "Market share", Headers: []string{"Category", "Subcategory", "Brand revenue", "Market revenue", "Share %"}}
	for _, c := range analytics.BuildMarketShareTree(rows) {
		t.Rows = append(t.Rows, []any{c.Category, "", c.BrandRevenue, c.MarketRevenue, c.SharePct})
		for _, s := range c.Children {
			t.Rows = append(t.Rows, []any{c.Category, s.Name, s.BrandRevenue, s.MarketRevenue, s.SharePct})
		}
	}
	return t
}

// MarketingTable lists campaigns.
func MarketingTable(data warehouse.MarketingAnalytics) Table {
	t := Table{Title: "Marketing", Headers: []string{"Campaign", "Channel", "Spend", "Impressions", "Clicks", "Conversions", "Revenue"}}
	for _, c := range data.Campaigns {
		t.Rows = append(t.Rows, []any{c.Name, c.Channel, c.Spend, c.Impressions, c.Clicks, c.Conversions, c.Revenue})
	}
	return t
}

// SubscriptionsTable lists the MRR trend.
func SubscriptionsTable(o warehouse.SubscriptionOverview) Table {
	t := Table{Title: "Subscriptions", Headers: []string{"Month", "MRR", "Active"}}
	for _, p := range o.Trend {
		t.Rows = append(t.Rows, []any{p.Month, p.MRR, p.Active})
	}
	return t
}

// PurchaseOrdersTable lists purchase orders.
func PurchaseOrdersTable(orders []warehouse.PurchaseOrder) Table {
	t := Table{Title: "Purchase orders", Headers: []string{"PO", "Status", "Ordered", "Expected", "Delivered", "Ordered qty", "Delivered qty", "Value"}}
	for _, o := range orders {
		var delivered any
		if o.DeliveredAt != nil {
			delivered = formatDate(*o.DeliveredAt)
		}
		t.Rows = append(t.Rows, []any{o.Number, o.Status, formatDate(o.OrderedAt), formatDate(o.ExpectedAt), delivered, o.OrderedQty, o.DeliveredQty, o.Value})
	}
	return t
}

// StockSupplyTable lists positions with their cover.
func StockSupplyTable(items []warehouse.StockItem) Table {
	t := Table{Title: "Stock supply", Headers: []string{"SKU", "Product", "Location", "On hand", "Inbound", "Daily sales", "Cover days", "Status"}}
	for _, p := range analytics.ClassifyStock(items).Positions {
		var cover any
		if !p.NoSales {
			cover = p.CoverDays
		}
		t.Rows = append(t.Rows, []any{p.SKU, p.Name, p.Location, p.OnHand, p.Inbound, p.DailySales, cover, string(p.Status)})
	}
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
