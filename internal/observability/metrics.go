package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// rating pipeline and sweep engines.
type Metrics struct {
	RatingsComputed    prometheus.Counter
	ScenariosEvaluated *prometheus.CounterVec // labels: sweep={contingency,sensitivity}, outcome={ok,solve_failed}
	SweepDuration      *prometheus.HistogramVec
	SweepRunning       prometheus.Gauge
	ContingencyRecords prometheus.Counter
	SamplesSkipped     prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RatingsComputed,
		m.ScenariosEvaluated,
		m.SweepDuration,
		m.SweepRunning,
		m.ContingencyRecords,
		m.SamplesSkipped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct as many instances as they like without "already registered"
// panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RatingsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "line_rating",
			Name:      "ratings_computed_total",
			Help:      "Total per-line thermal ratings computed.",
		}),
		ScenariosEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "line_rating",
			Name:      "scenarios_evaluated_total",
			Help:      "Sweep scenarios evaluated by sweep type and outcome.",
		}, []string{"sweep", "outcome"}),
		SweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "line_rating",
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of a full sweep by sweep type.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"sweep"}),
		SweepRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "line_rating",
			Name:      "sweep_running",
			Help:      "1 while a sweep is executing, 0 otherwise.",
		}),
		ContingencyRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "line_rating",
			Name:      "contingency_records_total",
			Help:      "Total at-risk or overcapacity rows collected across sweeps.",
		}),
		SamplesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "line_rating",
			Name:      "sensitivity_samples_skipped_total",
			Help:      "Sensitivity samples skipped due to solver non-convergence.",
		}),
	}
}
