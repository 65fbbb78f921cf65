// Package metrics exports dispatch activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dispatch"

// Prometheus implements ports.DispatchMetrics.
type Prometheus struct {
	sweeps         prometheus.Counter
	sweepDuration  prometheus.Histogram
	sweepOrders    *prometheus.CounterVec
	offersCreated  *prometheus.CounterVec
	offersResolved *prometheus.CounterVec
	exhausted      prometheus.Counter
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Total number of completed dispatch sweeps",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of dispatch sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
		sweepOrders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_items_total",
				Help:      "Offers expired and orders distributed, failed or errored by sweeps",
			},
			[]string{"outcome"},
		),
		offersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offers_created_total",
				Help:      "Total number of offers created",
			},
			[]string{"mode"},
		),
		offersResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offers_resolved_total",
				Help:      "Total number of offers that left the pending state",
			},
			[]string{"status", "reason"},
		),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_exhausted_total",
			Help:      "Total number of orders marked as having no courier available",
		}),
	}

	reg.MustRegister(m.sweeps, m.sweepDuration, m.sweepOrders, m.offersCreated, m.offersResolved, m.exhausted)
	return m
}

func (m *Prometheus) OfferCreated(mode string) {
	m.offersCreated.WithLabelValues(mode).Inc()
}

func (m *Prometheus) OfferResolved(status, reason string) {
	if reason == "" {
		reason = "none"
	}
	m.offersResolved.WithLabelValues(status, reason).Inc()
}

func (m *Prometheus) OrderExhausted() {
	m.exhausted.Inc()
}

func (m *Prometheus) SweepCompleted(duration time.Duration, expired, distributed, failed, errors int) {
	m.sweeps.Inc()
	m.sweepDuration.Observe(duration.Seconds())
	m.sweepOrders.WithLabelValues("expired").Add(float64(expired))
	m.sweepOrders.WithLabelValues("distributed").Add(float64(distributed))
	m.sweepOrders.WithLabelValues("failed").Add(float64(failed))
	m.sweepOrders.WithLabelValues("errors").Add(float64(errors))
}
