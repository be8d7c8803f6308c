package analytics

import "github.com/brandlens/brandlens/internal/warehouse"

// SubscriptionSummary derives recurring revenue indicators.
type SubscriptionSummary struct {
	Active       int64   `json:"active"`
	New          int64   `json:"new"`
	Churned      int64   `json:"churned"`
	MRR          float64 `json:"mrr"`
	ARR          float64 `json:"arr"`
	PreviousMRR  float64 `json:"previous_mrr"`
	MRRGrowthPct float64 `json:"mrr_growth_pct"`
	ChurnPct     float64 `json:"churn_pct"`
}

// SummarizeSubscriptions computes ARR, growth against the previous trend
// point and churn over subscribers active at the start of the period.
func SummarizeSubscriptions(o warehouse.SubscriptionOverview) SubscriptionSummary {
	s := SubscriptionSummary{
		Active:  o.Active,
		New:     o.New,
		Churned: o.Churned,
		MRR:     o.MRR,
		ARR:     o.MRR * 12,
	}
	if n := len(o.Trend); n > 1 {
		s.PreviousMRR = o.Trend[n-2].MRR
		if s.PreviousMRR > 0 {
			s.MRRGrowthPct = (s.MRR - s.PreviousMRR) / s.PreviousMRR * 100
		}
	}
	start := o.Active - o.New + o.Churned
	s.ChurnPct = pct(float64(o.Churned), float64(start))
	return s
}
