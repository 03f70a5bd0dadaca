// Package metrics provides Prometheus metrics for scoring runs.
//
// A run is short lived, so metrics are not served over HTTP. They can be
// written to a file in the textfile-collector format for node_exporter to
// pick up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure kinds used as the "kind" label of the failures counter.
const (
	KindDimensionMismatch = "dimension_mismatch"
	KindDivisionByZero    = "division_by_zero"
	KindMalformedInput    = "malformed_input"
	KindIO                = "io"
	KindOther             = "other"
)

// Manager owns the scoring metrics on one registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	runs         prometheus.Counter
	failures     *prometheus.CounterVec
	rowsScored   prometheus.Gauge
	criteria     prometheus.Gauge
	runDuration  prometheus.Histogram
	lastSuccess  prometheus.Gauge
	bestScore    prometheus.Gauge
	tiedRankRows prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry
// it registers on a fresh private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "topsis",
		histogramBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of scoring runs started",
		ConstLabels: m.constLabels,
	})

	m.failures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_failures_total",
		Help:        "Total number of failed scoring runs by failure kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.rowsScored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_scored",
		Help:        "Number of alternatives in the last successful run",
		ConstLabels: m.constLabels,
	})

	m.criteria = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "criteria",
		Help:        "Number of criteria in the last successful run",
		ConstLabels: m.constLabels,
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of a scoring run including table I/O",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.lastSuccess = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_timestamp_seconds",
		Help:        "Unix time of the last successful run",
		ConstLabels: m.constLabels,
	})

	m.bestScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "best_score",
		Help:        "Highest score of the last successful run",
		ConstLabels: m.constLabels,
	})

	m.tiedRankRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tied_rank_rows",
		Help:        "Number of alternatives sharing a rank with another in the last successful run",
		ConstLabels: m.constLabels,
	})
}

// RecordRun increments the runs counter.
func (m *Manager) RecordRun() { m.runs.Inc() }

// RecordFailure counts a failed run of the given kind.
func (m *Manager) RecordFailure(kind string) { m.failures.WithLabelValues(kind).Inc() }

// RecordSuccess stores the shape and outcome of a successful run.
func (m *Manager) RecordSuccess(rows, criteria, tied int, best float64, unixSeconds float64) {
	m.rowsScored.Set(float64(rows))
	m.criteria.Set(float64(criteria))
	m.tiedRankRows.Set(float64(tied))
	m.bestScore.Set(best)
	m.lastSuccess.Set(unixSeconds)
}

// ObserveDuration records the run duration in seconds.
func (m *Manager) ObserveDuration(seconds float64) { m.runDuration.Observe(seconds) }

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes every metric of the manager's registry to path in the
// Prometheus text format. The file is replaced atomically.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
