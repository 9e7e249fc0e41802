package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector manages the Prometheus metrics Prism exposes in watch mode.
// All metrics live in the "prism" namespace.
type Collector struct {
	registry *prometheus.Registry

	// Generation run metrics
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram

	// Per-run decision metrics
	switchesResolved prometheus.Counter
	armsEvaluated    prometheus.Counter
	emptySelections  prometheus.Counter
	fragmentBytes    prometheus.Counter

	// Manifest reload metrics
	reloadsTotal    *prometheus.CounterVec
	manifestsLoaded prometheus.Gauge
}

// NewCollector creates a collector registered against the given
// registry. If registry is nil, a fresh one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "prism",
				Name:      "runs_total",
				Help:      "Total number of generation runs",
			},
			[]string{"status"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "prism",
				Name:      "run_duration_seconds",
				Help:      "Duration of generation runs in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),

		switchesResolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "prism",
				Name:      "switches_resolved_total",
				Help:      "Total number of switches resolved across all runs",
			},
		),

		armsEvaluated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "prism",
				Name:      "arms_evaluated_total",
				Help:      "Total number of switch arm conditions evaluated",
			},
		),

		emptySelections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "prism",
				Name:      "empty_selections_total",
				Help:      "Total number of switches that produced no output",
			},
		),

		fragmentBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "prism",
				Name:      "fragment_bytes_total",
				Help:      "Total bytes of generated fragment output",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "prism",
				Name:      "manifest_reloads_total",
				Help:      "Total number of manifest reloads in watch mode",
			},
			[]string{"status"},
		),

		manifestsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "prism",
				Name:      "manifests_loaded",
				Help:      "Number of manifest units currently loaded",
			},
		),
	}

	registry.MustRegister(
		c.runsTotal,
		c.runDuration,
		c.switchesResolved,
		c.armsEvaluated,
		c.emptySelections,
		c.fragmentBytes,
		c.reloadsTotal,
		c.manifestsLoaded,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun records a completed generation run.
func (c *Collector) RecordRun(duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.runsTotal.WithLabelValues(status).Inc()
	c.runDuration.Observe(duration.Seconds())
}

// RecordSelection records one resolved switch.
func (c *Collector) RecordSelection(armsEvaluated int, empty bool) {
	c.switchesResolved.Inc()
	c.armsEvaluated.Add(float64(armsEvaluated))
	if empty {
		c.emptySelections.Inc()
	}
}

// RecordOutput records the size of a run's generated output.
func (c *Collector) RecordOutput(bytes int64) {
	c.fragmentBytes.Add(float64(bytes))
}

// RecordReload records a manifest reload attempt in watch mode.
func (c *Collector) RecordReload(success bool, unitCount int) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.reloadsTotal.WithLabelValues(status).Inc()
	if success {
		c.manifestsLoaded.Set(float64(unitCount))
	}
}
