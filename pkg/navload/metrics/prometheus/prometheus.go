// Package prometheus implements metrics.LoaderMetrics on top of
// prometheus/client_golang.
package prometheus

import (
	"time"

	"github.com/ib-77/navload/pkg/navload/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// loaderMetrics is the Prometheus implementation of metrics.LoaderMetrics.
type loaderMetrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	deduplicated  *prometheus.CounterVec
	stale         *prometheus.CounterVec
	commits       *prometheus.CounterVec
	initialData   *prometheus.CounterVec
	navigations   *prometheus.CounterVec
	navDuration   *prometheus.HistogramVec
}

// New registers the loader metrics with reg. A nil reg falls back to the
// default registerer.
func New(reg prometheus.Registerer) metrics.LoaderMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &loaderMetrics{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navload_fetches_total",
				Help: "Total number of settled loader fetches by outcome",
			},
			[]string{"key", "outcome"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "navload_fetch_duration_milliseconds",
				Help: "Duration of loader fetches in milliseconds",
				Buckets: []float64{
					1,    // 1ms - cached or local
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					250,  // 250ms
					500,  // 500ms
					1000, // 1s
					5000, // 5s - slow backend
				},
			},
			[]string{"key"},
		),
		deduplicated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navload_deduplicated_loads_total",
				Help: "Loads that reused a fetch already in flight for the same navigation",
			},
			[]string{"key"},
		),
		stale: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navload_stale_results_total",
				Help: "Fetch settlements dropped because a newer fetch superseded them",
			},
			[]string{"key"},
		),
		commits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navload_commits_total",
				Help: "Staged loader state published to views",
			},
			[]string{"key"},
		),
		initialData: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navload_initial_data_hits_total",
				Help: "Loads served from the initial-data snapshot",
			},
			[]string{"key"},
		),
		navigations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navload_navigations_total",
				Help: "Navigation attempts by outcome",
			},
			[]string{"outcome"},
		),
		navDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navload_navigation_duration_milliseconds",
				Help:    "Duration of navigation attempts in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"outcome"},
		),
	}
}

func (m *loaderMetrics) ObserveFetch(key, outcome string, duration time.Duration) {
	key = metrics.KeyLabel(key)
	m.fetches.WithLabelValues(key, outcome).Inc()
	m.fetchDuration.WithLabelValues(key).Observe(float64(duration.Microseconds()) / 1000)
}

func (m *loaderMetrics) RecordDeduplicated(key string) {
	m.deduplicated.WithLabelValues(metrics.KeyLabel(key)).Inc()
}

func (m *loaderMetrics) RecordStale(key string) {
	m.stale.WithLabelValues(metrics.KeyLabel(key)).Inc()
}

func (m *loaderMetrics) RecordCommit(key string) {
	m.commits.WithLabelValues(metrics.KeyLabel(key)).Inc()
}

func (m *loaderMetrics) RecordInitialData(key string) {
	m.initialData.WithLabelValues(metrics.KeyLabel(key)).Inc()
}

func (m *loaderMetrics) ObserveNavigation(outcome string, duration time.Duration) {
	m.navigations.WithLabelValues(outcome).Inc()
	m.navDuration.WithLabelValues(outcome).Observe(float64(duration.Microseconds()) / 1000)
}
