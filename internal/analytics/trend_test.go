package analytics

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHalfSplitTrendDeclining(t *testing.T) {
	split := HalfSplitTrend([]float64{50, 45, 30, 20}, CohortTrendThreshold)
	assert.InDelta(t, 47.5, split.FirstHalfAvg, 1e-9)
	assert.InDelta(t, 25, split.SecondHalfAvg, 1e-9)
	assert.Equal(t, TrendDeclining, split.Trend)
}

func TestHalfSplitTrendOddCountPutsMiddleInSecondHalf(t *testing.T) {
	split := HalfSplitTrend([]float64{10, 20, 30}, 1)
	assert.InDelta(t, 10, split.FirstHalfAvg, 1e-9)
	assert.InDelta(t, 25, split.SecondHalfAvg, 1e-9)
	assert.Equal(t, TrendImproving, split.Trend)
}

func TestHalfSplitTrendShortSeries(t *testing.T) {
	assert.Equal(t, HalfSplit{Trend: TrendStable}, HalfSplitTrend(nil, 5))
	single := HalfSplitTrend([]float64{42}, 5)
	assert.Equal(t, TrendStable, single.Trend)
	assert.Equal(t, 42.0, single.FirstHalfAvg)
	assert.Equal(t, 42.0, single.SecondHalfAvg)
}

func TestClassifyTrendThresholdIsExclusive(t *testing.T) {
	assert.Equal(t, TrendStable, ClassifyTrend(10, 15, 5))
	assert.Equal(t, TrendStable, ClassifyTrend(15, 10, 5))
	assert.Equal(t, TrendImproving, ClassifyTrend(10, 15.01, 5))
	assert.Equal(t, TrendDeclining, ClassifyTrend(15.01, 10, 5))
}

func TestTrendSymmetry(t *testing.T) {
	mirror := map[Trend]Trend{
		TrendImproving: TrendDeclining,
		TrendDeclining: TrendImproving,
		TrendStable:    TrendStable,
	}
	series := [][]float64{
		{50, 45, 30, 20},
		{1, 2, 3, 4, 5, 6},
		{30, 31, 29, 30},
		{12, 40},
	}
	for _, values := range series {
		reversed := slices.Clone(values)
		slices.Reverse(reversed)
		forward := HalfSplitTrend(values, 3)
		backward := HalfSplitTrend(reversed, 3)
		assert.Equal(t, mirror[forward.Trend], backward.Trend, "%v", values)
		assert.InDelta(t, forward.FirstHalfAvg, backward.SecondHalfAvg, 1e-9)
	}

	pairs := [][2]float64{{10, 30}, {30, 10}, {10, 12}, {0, 0}}
	for _, p := range pairs {
		assert.Equal(t, mirror[ClassifyTrend(p[0], p[1], 5)], ClassifyTrend(p[1], p[0], 5))
	}
}

func TestRevenueTrendUsesRelativeThreshold(t *testing.T) {
	assert.Equal(t, TrendStable, RevenueTrend([]float64{1000, 1000, 1030, 1040}).Trend)
	assert.Equal(t, TrendImproving, RevenueTrend([]float64{1000, 1000, 1100, 1100}).Trend)
	assert.Equal(t, TrendDeclining, RevenueTrend([]float64{1000, 1000, 900, 900}).Trend)
	assert.Equal(t, TrendStable, RevenueTrend([]float64{42}).Trend)
}
