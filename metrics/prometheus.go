// Package metrics provides a Prometheus-backed routesplit.MetricsCollector.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bjaus/routesplit"
)

// PrometheusCollector implements routesplit.MetricsCollector backed by Prometheus.
//
// Metrics are created and registered on first use, so constructing a collector
// that is never exercised leaves the registerer untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	sessionGroups *prometheus.GaugeVec
	sessionRecs   *prometheus.GaugeVec
	runs          *prometheus.CounterVec
	runFiles      prometheus.Gauge
	runRecords    prometheus.Gauge
	runDuplicates prometheus.Gauge
	runGroups     prometheus.Gauge
	runDocuments  prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ routesplit.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "routesplit" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "routesplit"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "stage",
			Name:      "duration_seconds",
			Help:      "Time spent in each pipeline stage in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms .. ~4.4m
		}, []string{"stage"})

		p.stageFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "stage",
			Name:      "failures_total",
			Help:      "Total stage failures by stage.",
		}, []string{"stage"})

		p.sessionGroups = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "session",
			Name:      "groups",
			Help:      "Groups assigned to each session by the last run.",
		}, []string{"session"})

		p.sessionRecs = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "session",
			Name:      "records",
			Help:      "Records assigned to each session by the last run.",
		}, []string{"session"})

		p.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "run",
			Name:      "total",
			Help:      "Total runs by result (success, failure).",
		}, []string{"result"})

		p.runFiles = p.runGauge("files", "Export files read by the last run.")
		p.runRecords = p.runGauge("records", "Records kept by the last run.")
		p.runDuplicates = p.runGauge("duplicates", "Duplicate records dropped by the last run.")
		p.runGroups = p.runGauge("groups", "Distinct groups found by the last run.")
		p.runDocuments = p.runGauge("documents", "Chunked documents produced by the last run.")

		p.reg.MustRegister(p.stageDuration)
		p.reg.MustRegister(p.stageFailures)
		p.reg.MustRegister(p.sessionGroups)
		p.reg.MustRegister(p.sessionRecs)
		p.reg.MustRegister(p.runs)
		p.reg.MustRegister(p.runFiles)
		p.reg.MustRegister(p.runRecords)
		p.reg.MustRegister(p.runDuplicates)
		p.reg.MustRegister(p.runGroups)
		p.reg.MustRegister(p.runDocuments)
	})
}

func (p *PrometheusCollector) runGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: p.namespace,
		Subsystem: "run",
		Name:      name,
		Help:      help,
	})
}

// ObserveStage records the stage duration and counts failures.
func (p *PrometheusCollector) ObserveStage(stage routesplit.Stage, d time.Duration, err error) {
	p.ensureRegistered()
	p.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
	if err != nil {
		p.stageFailures.WithLabelValues(string(stage)).Inc()
	}
}

// RecordSessionLoad sets the per-session gauges.
func (p *PrometheusCollector) RecordSessionLoad(load routesplit.SessionLoad) {
	p.ensureRegistered()
	p.sessionGroups.WithLabelValues(string(load.Session)).Set(float64(load.Groups))
	p.sessionRecs.WithLabelValues(string(load.Session)).Set(float64(load.Records))
}

// RecordRun counts the run by result and sets the run gauges.
func (p *PrometheusCollector) RecordRun(stats *routesplit.Stats, err error) {
	p.ensureRegistered()
	result := "success"
	if err != nil {
		result = "failure"
	}
	p.runs.WithLabelValues(result).Inc()

	if stats == nil {
		return
	}
	p.runFiles.Set(float64(stats.Files()))
	p.runRecords.Set(float64(stats.Records()))
	p.runDuplicates.Set(float64(stats.Duplicates()))
	p.runGroups.Set(float64(stats.Groups()))
	p.runDocuments.Set(float64(stats.Documents()))
}
