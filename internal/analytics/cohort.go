package analytics

import (
	"sort"

	"github.com/brandlens/brandlens/internal/warehouse"
)

// CohortTrendThreshold is the retention point change treated as a real shift.
const CohortTrendThreshold = 5.0

// CohortPoint names a cohort and its retention at some offset.
type CohortPoint struct {
	Cohort string  `json:"cohort"`
	Value  float64 `json:"value"`
}

// CohortMetric summarises retention at one month offset across cohorts.
type CohortMetric struct {
	Offset        int         `json:"offset"`
	Cohorts       int         `json:"cohorts"`
	Average       float64     `json:"average"`
	Best          CohortPoint `json:"best"`
	Worst         CohortPoint `json:"worst"`
	FirstHalfAvg  float64     `json:"first_half_avg"`
	SecondHalfAvg float64     `json:"second_half_avg"`
	Trend         Trend       `json:"trend"`
}

// CohortSummary is the headline view of the cohort table.
type CohortSummary struct {
	TotalCohorts   int          `json:"total_cohorts"`
	TotalCustomers int64        `json:"total_customers"`
	Month1         CohortMetric `json:"month_1"`
	Month3         CohortMetric `json:"month_3"`
	Month6         CohortMetric `json:"month_6"`
}

// SummarizeCohorts computes month 1, 3 and 6 retention metrics. Cohorts too
// young to have a value at an offset are skipped for that metric.
func SummarizeCohorts(rows []warehouse.CohortRow) CohortSummary {
	ordered := sortedCohorts(rows)
	summary := CohortSummary{TotalCohorts: len(ordered)}
	for _, row := range ordered {
		summary.TotalCustomers += row.Customers
	}
	summary.Month1 = cohortMetric(ordered, 1)
	summary.Month3 = cohortMetric(ordered, 3)
	summary.Month6 = cohortMetric(ordered, 6)
	return summary
}

func cohortMetric(rows []warehouse.CohortRow, offset int) CohortMetric {
	metric := CohortMetric{Offset: offset, Trend: TrendStable}
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		v, ok := row.RetentionAt(offset)
		if !ok {
			continue
		}
		if len(values) == 0 || v > metric.Best.Value {
			metric.Best = CohortPoint{Cohort: row.Cohort, Value: v}
		}
		if len(values) == 0 || v < metric.Worst.Value {
			metric.Worst = CohortPoint{Cohort: row.Cohort, Value: v}
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return metric
	}
	split := HalfSplitTrend(values, CohortTrendThreshold)
	metric.Cohorts = len(values)
	metric.Average = mean(values)
	metric.FirstHalfAvg = split.FirstHalfAvg
	metric.SecondHalfAvg = split.SecondHalfAvg
	metric.Trend = split.Trend
	return metric
}

// sortedCohorts orders rows chronologically; cohort labels are YYYY-MM.
func sortedCohorts(rows []warehouse.CohortRow) []warehouse.CohortRow {
	ordered := make([]warehouse.CohortRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Cohort < ordered[j].Cohort
	})
	return ordered
}
