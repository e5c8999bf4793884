package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the agent.
type Metrics struct {
	PollPasses     *prometheus.CounterVec   // labels: poller={modal,table}
	PollDuration   *prometheus.HistogramVec // labels: poller
	HostErrors     *prometheus.CounterVec   // labels: poller
	PollersRunning prometheus.Gauge

	// Modal metrics.
	ModalsWired     prometheus.Counter
	SACCalculations *prometheus.CounterVec // labels: outcome={written,cleared,error}

	// Table metrics.
	TablesAugmented *prometheus.CounterVec // labels: variant={view,edit}
	RMVCells        *prometheus.CounterVec // labels: outcome={value,placeholder}
	UnexpectedShape *prometheus.CounterVec // labels: variant

	// MutationNudges counts document mutation notifications from the host.
	MutationNudges prometheus.Counter
}

// NewMetrics creates and registers all agent metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PollPasses,
		m.PollDuration,
		m.HostErrors,
		m.PollersRunning,
		m.ModalsWired,
		m.SACCalculations,
		m.TablesAugmented,
		m.RMVCells,
		m.UnexpectedShape,
		m.MutationNudges,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PollPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosac",
			Name:      "poll_passes_total",
			Help:      "Completed detection passes by poller.",
		}, []string{"poller"}),
		PollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "autosac",
			Name:      "poll_duration_seconds",
			Help:      "Duration of one detection pass against the host page.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"poller"}),
		HostErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosac",
			Name:      "host_errors_total",
			Help:      "Detection passes that failed to query the host page.",
		}, []string{"poller"}),
		PollersRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "autosac",
			Name:      "pollers_running",
			Help:      "Number of pollers currently scheduled.",
		}),
		ModalsWired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autosac",
			Name:      "modals_wired_total",
			Help:      "Tank-entry modal instances wired with recalculation triggers.",
		}),
		SACCalculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosac",
			Name:      "sac_calculations_total",
			Help:      "SAC recalculations by outcome.",
		}, []string{"outcome"}),
		TablesAugmented: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosac",
			Name:      "tables_augmented_total",
			Help:      "Summary tables that received an RMV column, by variant.",
		}, []string{"variant"}),
		RMVCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosac",
			Name:      "rmv_cells_total",
			Help:      "RMV data cells inserted, by outcome.",
		}, []string{"outcome"}),
		UnexpectedShape: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autosac",
			Name:      "unexpected_table_shape_total",
			Help:      "Passes that found a table narrower than its known baseline.",
		}, []string{"variant"}),
		MutationNudges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autosac",
			Name:      "mutation_nudges_total",
			Help:      "Document mutation notifications received from the host page.",
		}),
	}
}
