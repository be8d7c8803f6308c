package warehouse

import "time"

// BrandKPIs is the headline scorecard for one brand and period.
type BrandKPIs struct {
	BrandID          int64   `json:"brand_id"`
	Period           Period  `json:"period"`
	Revenue          float64 `json:"revenue"`
	PreviousRevenue  float64 `json:"previous_revenue"`
	Orders           int64   `json:"orders"`
	Units            int64   `json:"units"`
	Customers        int64   `json:"customers"`
	NewCustomers     int64   `json:"new_customers"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	RevenueGrowthPct float64 `json:"revenue_growth_pct"`
}

// SalesTrendPoint is one month of sales. Month is formatted YYYY-MM.
type SalesTrendPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
	Units   int64   `json:"units"`
}

// TopProduct ranks a product by revenue within the period.
type TopProduct struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Units    int64   `json:"units"`
	SharePct float64 `json:"share_pct"`
}

// CohortRow holds retention percentages for customers acquired in Cohort
// (YYYY-MM). Retention[k] is the share still purchasing k months after
// acquisition; the slice is shorter for recent cohorts.
type CohortRow struct {
	Cohort    string    `json:"cohort"`
	Customers int64     `json:"customers"`
	Retention []float64 `json:"retention"`
}

// RetentionAt returns the retention value at offset months and whether the
// cohort is old enough to have one.
func (r CohortRow) RetentionAt(offset int) (float64, bool) {
	if offset < 0 || offset >= len(r.Retention) {
		return 0, false
	}
	return r.Retention[offset], true
}

// RFMSegment counts customers assigned to a named RFM segment.
type RFMSegment struct {
	Name      string  `json:"name"`
	Customers int64   `json:"customers"`
	Revenue   float64 `json:"revenue"`
}

// RFMCell is one cell of the score distribution matrix.
type RFMCell struct {
	Recency   int   `json:"r"`
	Frequency int   `json:"f"`
	Monetary  int   `json:"m"`
	Customers int64 `json:"customers"`
}

// RFMAnalysis groups segment counts and the score matrix.
type RFMAnalysis struct {
	Segments []RFMSegment `json:"segments"`
	Cells    []RFMCell    `json:"cells"`
}

// RetentionPoint is the retained share for one period bucket.
type RetentionPoint struct {
	Period      string  `json:"period"`
	Customers   int64   `json:"customers"`
	Retained    int64   `json:"retained"`
	RetainedPct float64 `json:"retained_pct"`
}

// ForecastHistoryPoint is an observed month of revenue.
type ForecastHistoryPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// ForecastPoint is a projected month with its confidence band.
type ForecastPoint struct {
	Month      string  `json:"month"`
	Baseline   float64 `json:"baseline"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// Forecast combines history with the projection.
type Forecast struct {
	History    []ForecastHistoryPoint `json:"history"`
	Projection []ForecastPoint        `json:"projection"`
}

// MarketShareRow is a flat share row. An empty Subcategory marks the parent
// rollup for Category.
type MarketShareRow struct {
	Category      string  `json:"category"`
	Subcategory   string  `json:"subcategory"`
	BrandRevenue  float64 `json:"brand_revenue"`
	MarketRevenue float64 `json:"market_revenue"`
	SharePct      float64 `json:"share_pct"`
}

// IsRollup reports whether the row is a category-level total.
func (r MarketShareRow) IsRollup() bool {
	return r.Subcategory == ""
}

// Campaign reports marketing performance for one campaign.
type Campaign struct {
	Name        string  `json:"name"`
	Channel     string  `json:"channel"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// MarketingAnalytics lists campaigns active within the period.
type MarketingAnalytics struct {
	Campaigns []Campaign `json:"campaigns"`
}

// SubscriptionPoint is the month-end state of subscriptions.
type SubscriptionPoint struct {
	Month  string  `json:"month"`
	MRR    float64 `json:"mrr"`
	Active int64   `json:"active"`
}

// SubscriptionOverview summarises recurring revenue for the brand.
type SubscriptionOverview struct {
	Active  int64               `json:"active"`
	New     int64               `json:"new"`
	Churned int64               `json:"churned"`
	MRR     float64             `json:"mrr"`
	Trend   []SubscriptionPoint `json:"trend"`
}

// PurchaseOrder is a retailer order placed with the supplier.
type PurchaseOrder struct {
	Number       string     `json:"number"`
	Status       string     `json:"status"`
	OrderedAt    time.Time  `json:"ordered_at"`
	ExpectedAt   time.Time  `json:"expected_at"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	OrderedQty   int64      `json:"ordered_qty"`
	DeliveredQty int64      `json:"delivered_qty"`
	Value        float64    `json:"value"`
}

// Delivered reports whether the order has a delivery date.
func (o PurchaseOrder) Delivered() bool {
	return o.DeliveredAt != nil && !o.DeliveredAt.IsZero()
}

// StockItem is the stock position of a SKU at a location.
type StockItem struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	OnHand     float64 `json:"on_hand"`
	Inbound    float64 `json:"inbound"`
	DailySales float64 `json:"daily_sales"`
}
