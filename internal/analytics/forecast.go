package analytics

import "github.com/brandlens/brandlens/internal/warehouse"

// ForecastSummary condenses a sales forecast.
type ForecastSummary struct {
	Months         int     `json:"months"`
	ProjectedTotal float64 `json:"projected_total"`
	TrailingTotal  float64 `json:"trailing_total"`
	GrowthPct      float64 `json:"growth_pct"`
	AvgBandWidth   float64 `json:"avg_band_width"`
}

// SummarizeForecast compares the projected total with the same number of
// trailing history months.
func SummarizeForecast(f warehouse.Forecast) ForecastSummary {
	s := ForecastSummary{Months: len(f.Projection)}
	widths := make([]float64, 0, len(f.Projection))
	for _, p := range f.Projection {
		s.ProjectedTotal += p.Baseline
		widths = append(widths, p.UpperBound-p.LowerBound)
	}
	s.AvgBandWidth = mean(widths)

	start := max(len(f.History)-len(f.Projection), 0)
	for _, h := range f.History[start:] {
		s.TrailingTotal += h.Revenue
	}
	if s.TrailingTotal > 0 && s.Months > 0 {
		s.GrowthPct = (s.ProjectedTotal - s.TrailingTotal) / s.TrailingTotal * 100
	}
	return s
}
