package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/brandlens/brandlens/internal/warehouse"
)

// SegmentShare is one RFM segment with its share of customers.
type SegmentShare struct {
	Name      string  `json:"name"`
	Customers int64   `json:"customers"`
	Revenue   float64 `json:"revenue"`
	Pct       float64 `json:"pct"`
}

// RFMSummary condenses an RFM analysis for the page header.
type RFMSummary struct {
	TotalCustomers int64          `json:"total_customers"`
	ChampionsPct   float64        `json:"champions_pct"`
	LoyalPct       float64        `json:"loyal_pct"`
	AtRiskPct      float64        `json:"at_risk_pct"`
	LostPct        float64        `json:"lost_pct"`
	AvgRecency     float64        `json:"avg_recency"`
	AvgFrequency   float64        `json:"avg_frequency"`
	AvgMonetary    float64        `json:"avg_monetary"`
	Segments       []SegmentShare `json:"segments"`
}

// SummarizeRFM sums segment counts into shares and averages the R, F and M
// scores weighted by the customers in each matrix cell. Negative counts are
// treated as zero.
func SummarizeRFM(analysis warehouse.RFMAnalysis) RFMSummary {
	summary := RFMSummary{Segments: []SegmentShare{}}

	merged := make(map[string]*SegmentShare)
	order := make([]string, 0, len(analysis.Segments))
	for _, seg := range analysis.Segments {
		name := strings.TrimSpace(seg.Name)
		key := segmentKey(name)
		entry, ok := merged[key]
		if !ok {
			entry = &SegmentShare{Name: name}
			merged[key] = entry
			order = append(order, key)
		}
		entry.Customers += max(seg.Customers, 0)
		entry.Revenue += seg.Revenue
		summary.TotalCustomers += max(seg.Customers, 0)
	}

	total := float64(summary.TotalCustomers)
	for _, key := range order {
		entry := merged[key]
		entry.Pct = pct(float64(entry.Customers), total)
		summary.Segments = append(summary.Segments, *entry)
		switch key {
		case "champions":
			summary.ChampionsPct = entry.Pct
		case "loyal", "loyalcustomers":
			summary.LoyalPct += entry.Pct
		case "atrisk":
			summary.AtRiskPct = entry.Pct
		case "lost":
			summary.LostPct = entry.Pct
		}
	}
	sort.SliceStable(summary.Segments, func(i, j int) bool {
		return summary.Segments[i].Customers > summary.Segments[j].Customers
	})

	var weight, r, f, m float64
	for _, cell := range analysis.Cells {
		if cell.Customers <= 0 {
			continue
		}
		n := float64(cell.Customers)
		weight += n
		r += float64(cell.Recency) * n
		f += float64(cell.Frequency) * n
		m += float64(cell.Monetary) * n
	}
	if weight > 0 {
		summary.AvgRecency = r / weight
		summary.AvgFrequency = f / weight
		summary.AvgMonetary = m / weight
	}
	return summary
}

// segmentKey folds "At Risk", "at_risk" and "at-risk" to one key.
func segmentKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
