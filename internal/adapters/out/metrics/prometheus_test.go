package metrics_test

import (
	"testing"
	"time"

	"dispatch/internal/adapters/out/metrics"
	"dispatch/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.DispatchMetrics = (*metrics.Prometheus)(nil)

func TestPrometheus_CountsOffers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheus(reg)

	m.OfferCreated("ALL")
	m.OfferCreated("ALL")
	m.OfferCreated("ONE_BY_ONE")
	m.OfferResolved("Expired", "timeout")
	m.OfferResolved("Accepted", "")
	m.OrderExhausted()

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]int{}
	for _, f := range families {
		byName[f.GetName()] = len(f.GetMetric())
	}
	assert.Equal(t, 2, byName["dispatch_offers_created_total"])
	assert.Equal(t, 2, byName["dispatch_offers_resolved_total"])
	assert.Equal(t, 1, byName["dispatch_orders_exhausted_total"])

	count, err := testutil.GatherAndCount(reg, "dispatch_offers_created_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrometheus_SweepCompleted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheus(reg)

	m.SweepCompleted(120*time.Millisecond, 2, 3, 1, 0)
	m.SweepCompleted(80*time.Millisecond, 1, 0, 0, 1)

	count, err := testutil.GatherAndCount(reg, "dispatch_sweeps_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	families, err := reg.Gather()
	require.NoError(t, err)

	items := map[string]float64{}
	var sweeps float64
	var observed uint64
	for _, f := range families {
		switch f.GetName() {
		case "dispatch_sweep_items_total":
			for _, metric := range f.GetMetric() {
				items[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
			}
		case "dispatch_sweeps_total":
			sweeps = f.GetMetric()[0].GetCounter().GetValue()
		case "dispatch_sweep_duration_seconds":
			observed = f.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}

	assert.Equal(t, float64(2), sweeps)
	assert.Equal(t, uint64(2), observed)
	assert.Equal(t, map[string]float64{"expired": 3, "distributed": 3, "failed": 1, "errors": 1}, items)
}

func TestPrometheus_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewPrometheus(reg)

	assert.Panics(t, func() { metrics.NewPrometheus(reg) })
}
