package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue metrics
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.NoError(t, m.Track("analytics:warmup").End(nil))
	err := m.Track("analytics:warmup").End(errors.New("boom"))
	assert.EqualError(t, err, "boom")

	assert.Equal(t, 1.0, counterValue(t, reg, "brandlens_jobs_total", map[string]string{"job": "analytics:warmup", "status": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "brandlens_jobs_total", map[string]string{"job": "analytics:warmup", "status": "failure"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "brandlens_jobs_failures_total", map[string]string{"job": "analytics:warmup"}))
}

func TestAddWarmedIgnoresNonPositive(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.AddWarmed("kpis", 0)
	m.AddWarmed("kpis", 3)
	assert.Equal(t, 3.0, counterValue(t, reg, "brandlens_analytics_warmed_total", map[string]string{"kind": "kpis"}))

	var nilMetrics *Metrics
	nilMetrics.AddWarmed("kpis", 1)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
