package analytics

import "github.com/brandlens/brandlens/internal/warehouse"

// RetentionTrendThreshold is the point change treated as a real shift.
const RetentionTrendThreshold = 3.0

// RetentionSummary condenses a retention series.
type RetentionSummary struct {
	Periods       int     `json:"periods"`
	Average       float64 `json:"average"`
	Latest        float64 `json:"latest"`
	Previous      float64 `json:"previous"`
	Delta         float64 `json:"delta"`
	FirstHalfAvg  float64 `json:"first_half_avg"`
	SecondHalfAvg float64 `json:"second_half_avg"`
	Trend         Trend   `json:"trend"`
}

// SummarizeRetention expects points in chronological order, as returned by
// the warehouse.
func SummarizeRetention(points []warehouse.RetentionPoint) RetentionSummary {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		values = append(values, p.RetainedPct)
	}
	split := HalfSplitTrend(values, RetentionTrendThreshold)
	summary := RetentionSummary{
		Periods:       len(values),
		Average:       mean(values),
		FirstHalfAvg:  split.FirstHalfAvg,
		SecondHalfAvg: split.SecondHalfAvg,
		Trend:         split.Trend,
	}
	if n := len(values); n > 0 {
		summary.Latest = values[n-1]
		if n > 1 {
			summary.Previous = values[n-2]
			summary.Delta = summary.Latest - summary.Previous
		}
	}
	return summary
}
