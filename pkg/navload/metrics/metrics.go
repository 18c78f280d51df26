// Package metrics defines the optional instrumentation hooks for loaders and
// navigations.
//
// A nil LoaderMetrics disables collection. Callers go through the package
// level helpers, which are nil-safe, so an uninstrumented router pays nothing.
package metrics

import "time"

// LoaderMetrics provides observability for loader and navigation activity.
//
// Example implementations:
//   - Prometheus metrics (see metrics/prometheus)
//   - In-memory counters for testing
type LoaderMetrics interface {
	// ObserveFetch records a settled fetch; outcome is success, failure or cancel
	ObserveFetch(key, outcome string, duration time.Duration)

	// RecordDeduplicated records a load that reused the in-flight fetch
	RecordDeduplicated(key string)

	// RecordStale records a settlement dropped because it was superseded
	RecordStale(key string)

	// RecordCommit records staged state becoming visible
	RecordCommit(key string)

	// RecordInitialData records a load served from the initial-data snapshot
	RecordInitialData(key string)

	// ObserveNavigation records a finished navigation attempt
	ObserveNavigation(outcome string, duration time.Duration)
}

func ObserveFetch(m LoaderMetrics, key, outcome string, duration time.Duration) {
	if m != nil {
		m.ObserveFetch(key, outcome, duration)
	}
}

func RecordDeduplicated(m LoaderMetrics, key string) {
	if m != nil {
		m.RecordDeduplicated(key)
	}
}

func RecordStale(m LoaderMetrics, key string) {
	if m != nil {
		m.RecordStale(key)
	}
}

func RecordCommit(m LoaderMetrics, key string) {
	if m != nil {
		m.RecordCommit(key)
	}
}

func RecordInitialData(m LoaderMetrics, key string) {
	if m != nil {
		m.RecordInitialData(key)
	}
}

// ObserveNavigation records a navigation attempt.
//
// Example usage:
//
//	start := time.Now()
//	_, err := g.Navigate(ctx, loc)
//	metrics.ObserveNavigation(m, outcomeOf(err), time.Since(start))
func ObserveNavigation(m LoaderMetrics, outcome string, duration time.Duration) {
	if m != nil {
		m.ObserveNavigation(outcome, duration)
	}
}

// KeyLabel maps an empty loader key to a stable label value.
func KeyLabel(key string) string {
	if key == "" {
		return "anonymous"
	}
	return key
}
