package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue finds a counter sample by family name and label values.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if labels[l.GetName()] != l.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestLoaderMetrics_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFetch("user", "success", 12*time.Millisecond)
	m.ObserveFetch("user", "failure", time.Millisecond)
	m.ObserveFetch("", "success", time.Millisecond)
	m.RecordDeduplicated("user")
	m.RecordStale("user")
	m.RecordCommit("user")
	m.RecordCommit("user")
	m.RecordInitialData("root")
	m.ObserveNavigation("success", 3*time.Millisecond)

	assert.Equal(t, 1.0, counterValue(t, reg, "navload_fetches_total", map[string]string{"key": "user", "outcome": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "navload_fetches_total", map[string]string{"key": "user", "outcome": "failure"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "navload_fetches_total", map[string]string{"key": "anonymous", "outcome": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "navload_deduplicated_loads_total", map[string]string{"key": "user"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "navload_stale_results_total", map[string]string{"key": "user"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "navload_commits_total", map[string]string{"key": "user"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "navload_initial_data_hits_total", map[string]string{"key": "root"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "navload_navigations_total", map[string]string{"outcome": "success"}))
}

func TestLoaderMetrics_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_ = New(reg)

	assert.Panics(t, func() { _ = New(reg) })
}
