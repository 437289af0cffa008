// Package metrics exposes Prometheus instruments for country resolution.
// Every method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for resolution and batch runs.
type Metrics struct {
	// Resolutions by match method
	Resolutions *prometheus.CounterVec

	// Wall time of a full batch, dedup and sort included
	BatchDuration prometheus.Histogram

	// Distinct raw values per batch
	BatchDistinct prometheus.Histogram

	// Bundle reloads by outcome
	Reloads *prometheus.CounterVec
}

// New registers all instruments on reg. A nil reg creates unregistered
// instruments, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coo_resolutions_total",
			Help: "Total resolved raw values by match method",
		}, []string{"method"}),

		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "coo_batch_duration_seconds",
			Help:    "Duration of batch resolution including deduplication and sorting",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		BatchDistinct: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "coo_batch_distinct_values",
			Help:    "Distinct raw values per batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),

		Reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coo_bundle_reloads_total",
			Help: "Vocabulary bundle reloads by outcome",
		}, []string{"outcome"}),
	}
}

// IncResolution counts one resolution with the given method tag.
func (m *Metrics) IncResolution(method string) {
	if m != nil {
		m.Resolutions.WithLabelValues(method).Inc()
	}
}

// ObserveBatch records a finished batch.
func (m *Metrics) ObserveBatch(d time.Duration, distinct int) {
	if m != nil {
		m.BatchDuration.Observe(d.Seconds())
		m.BatchDistinct.Observe(float64(distinct))
	}
}

// IncReload records a bundle reload attempt ("ok" or "error").
func (m *Metrics) IncReload(outcome string) {
	if m != nil {
		m.Reloads.WithLabelValues(outcome).Inc()
	}
}
