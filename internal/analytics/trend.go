package analytics

// Trend classifies the direction of a chronological series.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// ClassifyTrend compares the later mean against the earlier one. Differences
// within ±threshold are stable.
func ClassifyTrend(first, second, threshold float64) Trend {
	diff := second - first
	switch {
	case diff > threshold:
		return TrendImproving
	case diff < -threshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// HalfSplit is the outcome of comparing the two halves of a series.
type HalfSplit struct {
	FirstHalfAvg  float64 `json:"first_half_avg"`
	SecondHalfAvg float64 `json:"second_half_avg"`
	Trend         Trend   `json:"trend"`
}

// HalfSplitTrend splits chronological values in half and classifies the
// change between the half means. With an odd count the middle value belongs
// to the second half. Fewer than two values are always stable.
func HalfSplitTrend(values []float64, threshold float64) HalfSplit {
	if len(values) < 2 {
		avg := mean(values)
		return HalfSplit{FirstHalfAvg: avg, SecondHalfAvg: avg, Trend: TrendStable}
	}
	mid := len(values) / 2
	first := mean(values[:mid])
	second := mean(values[mid:])
	return HalfSplit{
		FirstHalfAvg:  first,
		SecondHalfAvg: second,
		Trend:         ClassifyTrend(first, second, threshold),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func pct(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// RevenueTrendPct is the relative change between half means that counts as a
// real revenue shift.
const RevenueTrendPct = 5.0

// RevenueTrend is HalfSplitTrend with a threshold relative to the first half.
func RevenueTrend(values []float64) HalfSplit {
	split := HalfSplitTrend(values, 0)
	if len(values) < 2 {
		return split
	}
	threshold := split.FirstHalfAvg * RevenueTrendPct / 100
	if threshold < 0 {
		threshold = -threshold
	}
	split.Trend = ClassifyTrend(split.FirstHalfAvg, split.SecondHalfAvg, threshold)
	return split
}
