package chart

import (
	"fmt"
	"strconv"

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/warehouse"
)

// SalesTrend plots monthly revenue with orders on a secondary axis.
func SalesTrend(points []warehouse.SalesTrendPoint) Chart {
	c := newChart(TypeLine, "Revenue trend", len(points))
	revenue := make([]float64, 0, len(points))
	orders := make([]float64, 0, len(points))
	for _, p := range points {
		c.Labels = append(c.Labels, p.Month)
		revenue = append(revenue, p.Revenue)
		orders = append(orders, float64(p.Orders))
	}
	c.Datasets = append(c.Datasets,
		Dataset{Label: "Revenue", Data: revenue, Color: ColorPrimary, Fill: "origin"},
		Dataset{Label: "Orders", Data: orders, Type: TypeBar, Color: ColorMuted, Axis: "y1"},
	)
	return c
}

// TopProducts ranks products by revenue.
func TopProducts(products []warehouse.TopProduct) Chart {
	c := newChart(TypeBar, "Top products", len(products))
	revenue := make([]float64, 0, len(products))
	for _, p := range products {
		label := p.Name
		if label == "" {
			label = p.SKU
		}
		c.Labels = append(c.Labels, label)
		revenue = append(revenue, p.Revenue)
	}
	c.Datasets = append(c.Datasets, Dataset{Label: "Revenue", Data: revenue, Color: ColorAccent})
	return c
}

// CohortHeatmap lays cohorts out as rows and months since acquisition as
// columns up to maxOffset. Offsets a cohort has not reached stay null.
func CohortHeatmap(rows []warehouse.CohortRow, maxOffset int) Chart {
	c := newChart(TypeMatrix, "Cohort retention", 0)
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Retention))
	}
	if maxOffset >= 0 {
		width = min(width, maxOffset+1)
	}
	m := &Matrix{XLabels: make([]string, 0, width), YLabels: make([]string, 0, len(rows)), Values: make([][]*float64, 0, len(rows))}
	for x := 0; x < width; x++ {
		m.XLabels = append(m.XLabels, "M"+strconv.Itoa(x))
	}
	for _, r := range rows {
		m.YLabels = append(m.YLabels, r.Cohort)
		line := make([]*float64, width)
		for x := 0; x < width; x++ {
			if v, ok := r.RetentionAt(x); ok {
				line[x] = &v
			}
		}
		m.Values = append(m.Values, line)
	}
	c.Labels = m.XLabels
	c.Matrix = m
	return c
}

// Retention plots the retained share per period.
func Retention(points []warehouse.RetentionPoint) Chart {
	c := newChart(TypeLine, "Customer retention", len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		c.Labels = append(c.Labels, p.Period)
		values = append(values, p.RetainedPct)
	}
	c.Datasets = append(c.Datasets, Dataset{Label: "Retained %", Data: values, Color: ColorPositive})
	return c
}

// RFMSegments shows the customer split per segment.
func RFMSegments(segments []analytics.SegmentShare) Chart {
	c := newChart(TypeDoughnut, "RFM segments", len(segments))
	data := make([]float64, 0, len(segments))
	colors := make([]string, 0, len(segments))
	for i, s := range segments {
		c.Labels = append(c.Labels, s.Name)
		data = append(data, float64(s.Customers))
		colors = append(colors, colorAt(i))
	}
	c.Datasets = append(c.Datasets, Dataset{Label: "Customers", Data: data, Colors: colors})
	return c
}

// RFMMatrix sums customers per recency and frequency score, folding the
// monetary score.
func RFMMatrix(cells []warehouse.RFMCell) Chart {
	c := newChart(TypeMatrix, "Recency vs frequency", 5)
	const scores = 5
	m := &Matrix{XLabels: make([]string, 0, scores), YLabels: make([]string, 0, scores), Values: make([][]*float64, scores)}
	for i := 1; i <= scores; i++ {
		m.XLabels = append(m.XLabels, "F"+strconv.Itoa(i))
		m.YLabels = append(m.YLabels, "R"+strconv.Itoa(i))
	}
	for y := range m.Values {
		m.Values[y] = make([]*float64, scores)
		for x := range m.Values[y] {
			zero := 0.0
			m.Values[y][x] = &zero
		}
	}
	for _, cell := range cells {
		if cell.Recency < 1 || cell.Recency > scores || cell.Frequency < 1 || cell.Frequency > scores {
			continue
		}
		*m.Values[cell.Recency-1][cell.Frequency-1] += float64(cell.Customers)
	}
	c.Labels = m.XLabels
	c.Matrix = m
	return c
}

// Forecast draws history followed by the projected baseline and its band.
// History and projection share one label axis. Each series is zero outside
// its own range.
func Forecast(f warehouse.Forecast) Chart {
	n := len(f.History) + len(f.Projection)
	c := newChart(TypeLine, "Sales forecast", n)
	history := make([]float64, n)
	baseline := make([]float64, n)
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i, h := range f.History {
		c.Labels = append(c.Labels, h.Month)
		history[i] = h.Revenue
	}
	offset := len(f.History)
	for i, p := range f.Projection {
		c.Labels = append(c.Labels, p.Month)
		baseline[offset+i] = p.Baseline
		lower[offset+i] = p.LowerBound
		upper[offset+i] = p.UpperBound
	}
	c.Datasets = append(c.Datasets,
		Dataset{Label: "Actual", Data: history, Color: ColorPrimary},
		Dataset{Label: "Forecast", Data: baseline, Color: ColorSecondary, Dashed: true},
		Dataset{Label: "Lower bound", Data: lower, Color: ColorMuted},
		Dataset{Label: "Upper bound", Data: upper, Color: ColorMuted, Fill: "-1"},
	)
	return c
}

// MarketShare compares category shares.
func MarketShare(tree []analytics.CategoryShare) Chart {
	c := newChart(TypeBar, "Market share by category", len(tree))
	shares := make([]float64, 0, len(tree))
	for _, cat := range tree {
		c.Labels = append(c.Labels, cat.Category)
		shares = append(shares, cat.SharePct)
	}
	c.Datasets = append(c.Datasets, Dataset{Label: "Brand share %", Data: shares, Color: ColorPrimary})
	return c
}

// MarketingChannels compares spend and revenue per channel.
func MarketingChannels(summary analytics.MarketingSummary) Chart {
	c := newChart(TypeBar, "Spend vs revenue by channel", len(summary.Channels))
	spend := make([]float64, 0, len(summary.Channels))
	revenue := make([]float64, 0, len(summary.Channels))
	for _, ch := range summary.Channels {
		c.Labels = append(c.Labels, ch.Channel)
		spend = append(spend, ch.Spend)
		revenue = append(revenue, ch.Revenue)
	}
	c.Datasets = append(c.Datasets,
		Dataset{Label: "Spend", Data: spend, Color: ColorSecondary},
		Dataset{Label: "Revenue", Data: revenue, Color: ColorPrimary},
	)
	return c
}

// Subscriptions plots MRR with active subscribers on a secondary axis.
func Subscriptions(trend []warehouse.SubscriptionPoint) Chart {
	c := newChart(TypeLine, "Recurring revenue", len(trend))
	mrr := make([]float64, 0, len(trend))
	active := make([]float64, 0, len(trend))
	for _, p := range trend {
		c.Labels = append(c.Labels, p.Month)
		mrr = append(mrr, p.MRR)
		active = append(active, float64(p.Active))
	}
	c.Datasets = append(c.Datasets,
		Dataset{Label: "MRR", Data: mrr, Color: ColorPrimary},
		Dataset{Label: "Active subscribers", Data: active, Color: ColorAccent, Axis: "y1"},
	)
	return c
}

// OTIF shows delivery performance rates.
func OTIF(summary analytics.OTIFSummary) Chart {
	c := newChart(TypeBar, "Delivery performance", 3)
	c.Labels = append(c.Labels, "On time", "In full", "OTIF")
	c.Datasets = append(c.Datasets, Dataset{
		Label:  "% of delivered orders",
		Data:   []float64{summary.OnTimePct, summary.InFullPct, summary.OTIFPct},
		Colors: []string{ColorAccent, ColorPrimary, ColorPositive},
	})
	return c
}

var stockOrder = []analytics.StockStatus{analytics.StockOut, analytics.StockLow, analytics.StockHealthy, analytics.StockOverstock}

var stockColors = map[analytics.StockStatus]string{
	analytics.StockOut:       ColorNegative,
	analytics.StockLow:       ColorWarning,
	analytics.StockHealthy:   ColorPositive,
	analytics.StockOverstock: ColorMuted,
}

// StockStatus counts SKUs per cover bucket.
func StockStatus(summary analytics.StockSummary) Chart {
	c := newChart(TypeDoughnut, "Stock cover", len(stockOrder))
	data := make([]float64, 0, len(stockOrder))
	colors := make([]string, 0, len(stockOrder))
	for _, status := range stockOrder {
		c.Labels = append(c.Labels, string(status))
		data = append(data, float64(summary.Counts[status]))
		colors = append(colors, stockColors[status])
	}
	c.Datasets = append(c.Datasets, Dataset{Label: "SKUs", Data: data, Colors: colors})
	return c
}

// KPIDelta renders current against previous revenue.
func KPIDelta(k warehouse.BrandKPIs) Chart {
	c := newChart(TypeBar, fmt.Sprintf("Revenue (%s)", k.Period), 2)
	c.Labels = append(c.Labels, "Previous", "Current")
	c.Datasets = append(c.Datasets, Dataset{
		Label:  "Revenue",
		Data:   []float64{k.PreviousRevenue, k.Revenue},
		Colors: []string{ColorMuted, ColorPrimary},
	})
	return c
}
