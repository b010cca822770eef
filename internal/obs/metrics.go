// Package obs exposes the prometheus counters and histogram tracking the
// index's insert and search surface, wired into cmd/ivfadc-bench.
//
// Adapted from the teacher's internal/obs/metrics.go (xDarkicex/libravdb),
// same promauto pattern, metric names rebased from the teacher's libravdb_
// prefix onto this module's domain and a TrainingDuration histogram added
// since training is the one long-running operation a benchmark run times.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/histogram the index surface reports.
type Metrics struct {
	VectorInserts    prometheus.Counter
	SearchQueries    prometheus.Counter
	SearchErrors     prometheus.Counter
	SearchLatency    prometheus.Histogram
	TrainingDuration prometheus.Histogram
}

// NewMetrics registers and returns a fresh Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		VectorInserts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ivfadc_vector_inserts_total",
			Help: "Total vector insertions",
		}),
		SearchQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ivfadc_search_queries_total",
			Help: "Total search queries",
		}),
		SearchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ivfadc_search_errors_total",
			Help: "Total search errors",
		}),
		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "ivfadc_search_latency_seconds",
			Help: "Search latency",
		}),
		TrainingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ivfadc_training_duration_seconds",
			Help:    "Time spent training the coarse and product quantizers",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
