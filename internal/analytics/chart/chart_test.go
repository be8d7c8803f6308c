package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/warehouse"
)

func TestSalesTrendAlignsSeries(t *testing.T) {
	c := SalesTrend([]warehouse.SalesTrendPoint{
		{Month: "2024-01", Revenue: 100, Orders: 4},
		{Month: "2024-02", Revenue: 150, Orders: 6},
	})
	require.Equal(t, TypeLine, c.Type)
	require.Equal(t, []string{"2024-01", "2024-02"}, c.Labels)
	require.Len(t, c.Datasets, 2)
	require.Equal(t, []float64{100, 150}, c.Datasets[0].Data)
	require.Equal(t, []float64{4, 6}, c.Datasets[1].Data)
	require.Equal(t, "y1", c.Datasets[1].Axis)
}

func TestEmptyInputsMarshalAsArrays(t *testing.T) {
	raw, err := json.Marshal(TopProducts(nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"bar","title":"Top products","labels":[],"datasets":[{"label":"Revenue","data":[],"color":"#0ea5e9"}]}`, string(raw))
}

func TestTopProductsFallsBackToSKU(t *testing.T) {
	c := TopProducts([]warehouse.TopProduct{{SKU: "SKU-1", Revenue: 10}, {SKU: "SKU-2", Name: "Granola", Revenue: 5}})
	require.Equal(t, []string{"SKU-1", "Granola"}, c.Labels)
}

func TestCohortHeatmapLeavesUnreachedCellsNull(t *testing.T) {
	c := CohortHeatmap([]warehouse.CohortRow{
		{Cohort: "2024-01", Customers: 100, Retention: []float64{100, 40, 30}},
		{Cohort: "2024-02", Customers: 80, Retention: []float64{100, 35}},
	}, 6)
	require.NotNil(t, c.Matrix)
	require.Equal(t, []string{"M0", "M1", "M2"}, c.Matrix.XLabels)
	require.Equal(t, []string{"2024-01", "2024-02"}, c.Matrix.YLabels)
	require.NotNil(t, c.Matrix.Values[0][2])
	require.InDelta(t, 30, *c.Matrix.Values[0][2], 1e-9)
	require.Nil(t, c.Matrix.Values[1][2])
}

func TestCohortHeatmapCapsOffsets(t *testing.T) {
	c := CohortHeatmap([]warehouse.CohortRow{{Cohort: "2024-01", Retention: []float64{100, 50, 40, 30}}}, 1)
	require.Len(t, c.Matrix.XLabels, 2)
	require.Len(t, c.Matrix.Values[0], 2)
}

func TestRFMMatrixFoldsMonetaryAndSkipsOutOfRange(t *testing.T) {
	c := RFMMatrix([]warehouse.RFMCell{
		{Recency: 5, Frequency: 5, Monetary: 5, Customers: 10},
		{Recency: 5, Frequency: 5, Monetary: 1, Customers: 2},
		{Recency: 0, Frequency: 3, Customers: 99},
		{Recency: 1, Frequency: 1, Customers: 3},
	})
	require.InDelta(t, 12, *c.Matrix.Values[4][4], 1e-9)
	require.InDelta(t, 3, *c.Matrix.Values[0][0], 1e-9)
	require.InDelta(t, 0, *c.Matrix.Values[2][2], 1e-9)
}

func TestForecastConcatenatesHistoryAndProjection(t *testing.T) {
	c := Forecast(warehouse.Forecast{
		History:    []warehouse.ForecastHistoryPoint{{Month: "2024-01", Revenue: 10}},
		Projection: []warehouse.ForecastPoint{{Month: "2024-02", Baseline: 12, LowerBound: 9, UpperBound: 15}},
	})
	require.Equal(t, []string{"2024-01", "2024-02"}, c.Labels)
	require.Equal(t, []float64{10, 0}, c.Datasets[0].Data)
	require.Equal(t, []float64{0, 12}, c.Datasets[1].Data)
	require.True(t, c.Datasets[1].Dashed)
	require.Equal(t, []float64{0, 15}, c.Datasets[3].Data)
}

func TestStockStatusUsesFixedOrder(t *testing.T) {
	c := StockStatus(analytics.StockSummary{Counts: map[analytics.StockStatus]int{analytics.StockLow: 2, analytics.StockOverstock: 1}})
	require.Equal(t, []string{"out", "low", "healthy", "overstock"}, c.Labels)
	require.Equal(t, []float64{0, 2, 0, 1}, c.Datasets[0].Data)
	require.Equal(t, ColorNegative, c.Datasets[0].Colors[0])
}

func TestRFMSegmentsCyclesPalette(t *testing.T) {
	segments := make([]analytics.SegmentShare, len(seriesColors)+1)
	for i := range segments {
		segments[i] = analytics.SegmentShare{Name: "s", Customers: int64(i)}
	}
	c := RFMSegments(segments)
	require.Equal(t, c.Datasets[0].Colors[0], c.Datasets[0].Colors[len(seriesColors)])
}

func TestOTIFAndMarketing(t *testing.T) {
	o := OTIF(analytics.OTIFSummary{OnTimePct: 90, InFullPct: 80, OTIFPct: 75})
	require.Equal(t, []float64{90, 80, 75}, o.Datasets[0].Data)

	m := MarketingChannels(analytics.MarketingSummary{Channels: []analytics.ChannelSummary{{Channel: "email", Spend: 10, Revenue: 40}}})
	require.Equal(t, []string{"email"}, m.Labels)
	require.Equal(t, []float64{10}, m.Datasets[0].Data)
	require.Equal(t, []float64{40}, m.Datasets[1].Data)
}
