// Package metric holds the Prometheus collectors for graph queries, ingestion,
// serialization and drift detection.
package metric

import (
	"errors"
	"net/http"
	"time"

	semmetric "github.com/c360studio/semstreams/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fmeakg"

// serviceName keys the collectors in the semstreams registry.
const serviceName = "fmeakg"

// Ingestion outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Metrics holds Prometheus metrics for the knowledge graph.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *semmetric.MetricsRegistry

	queriesTotal  *prometheus.CounterVec   // By template and status (ok/error)
	queryRows     *prometheus.CounterVec   // By template
	queryDuration *prometheus.HistogramVec // By template

	ingestionsTotal *prometheus.CounterVec // By outcome and cause (known/unknown)
	triplesAdded    prometheus.Counter

	serializeDuration prometheus.Histogram
	serializeFailures prometheus.Counter
	graphTriples      prometheus.Gauge

	driftTotal prometheus.Counter
}

// New creates the collectors and registers them with a fresh semstreams
// registry, which also carries the platform and Go runtime metrics.
func New() (*Metrics, error) {
	return NewWithRegistry(semmetric.NewMetricsRegistry())
}

// NewWithRegistry creates the collectors and registers them with registry.
func NewWithRegistry(registry *semmetric.MetricsRegistry) (*Metrics, error) {
	if registry == nil {
		return nil, errors.New("metrics registry is nil")
	}

	m := &Metrics{
		registry: registry,

		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "executions_total",
			Help:      "Total number of query template executions",
		}, []string{"template", "status"}),

		queryRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "rows_total",
			Help:      "Total number of rows returned by query templates",
		}, []string{"template"}),

		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Query template execution duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"template"}),

		ingestionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "events_total",
			Help:      "Total number of ingested failure events",
		}, []string{"outcome", "cause"}),

		triplesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "triples_added_total",
			Help:      "Total number of new triples committed by ingestion",
		}),

		serializeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "serialize_duration_seconds",
			Help:      "Duration of full graph serialization in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		serializeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "serialize_failures_total",
			Help:      "Total number of failed serializations",
		}),

		graphTriples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "triples",
			Help:      "Current number of triples in the graph",
		}),

		driftTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "drift_total",
			Help:      "Total number of external modifications of the persisted graph",
		}),
	}

	if err := registry.RegisterCounterVec(serviceName, "query_executions", m.queriesTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(serviceName, "query_rows", m.queryRows); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(serviceName, "query_duration", m.queryDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(serviceName, "ingest_events", m.ingestionsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(serviceName, "ingest_triples_added", m.triplesAdded); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram(serviceName, "store_serialize_duration", m.serializeDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(serviceName, "store_serialize_failures", m.serializeFailures); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(serviceName, "store_triples", m.graphTriples); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(serviceName, "store_drift", m.driftTotal); err != nil {
		return nil, err
	}
	return m, nil
}

// Registry exposes the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry.PrometheusRegistry()
}

// MetricsRegistry returns the semstreams registry shared with components.
func (m *Metrics) MetricsRegistry() *semmetric.MetricsRegistry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry.PrometheusRegistry(), promhttp.HandlerOpts{})
}

// RecordQuery records one query template execution.
func (m *Metrics) RecordQuery(template string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queriesTotal.WithLabelValues(template, status).Inc()
	m.queryRows.WithLabelValues(template).Add(float64(rows))
	m.queryDuration.WithLabelValues(template).Observe(duration.Seconds())
}

// RecordIngest records one ingestion attempt.
func (m *Metrics) RecordIngest(outcome string, knownCause bool, added int) {
	if m == nil {
		return
	}

	cause := "unknown"
	if knownCause {
		cause = "known"
	}
	m.ingestionsTotal.WithLabelValues(outcome, cause).Inc()
	if added > 0 {
		m.triplesAdded.Add(float64(added))
	}
}

// RecordSerialize records one serialization of the graph.
func (m *Metrics) RecordSerialize(duration time.Duration, err error) {
	if m == nil {
		return
	}

	m.serializeDuration.Observe(duration.Seconds())
	if err != nil {
		m.serializeFailures.Inc()
	}
}

// SetGraphSize updates the triple count gauge.
func (m *Metrics) SetGraphSize(n int) {
	if m == nil {
		return
	}
	m.graphTriples.Set(float64(n))
}

// RecordDrift counts an external modification of the persisted graph.
func (m *Metrics) RecordDrift() {
	if m == nil {
		return
	}
	m.driftTotal.Inc()
}

// Outcome maps an ingestion error to its outcome label.
func Outcome(err error, invalid ...error) string {
	if err == nil {
		return OutcomeSuccess
	}
	for _, target := range invalid {
		if errors.Is(err, target) {
			return OutcomeInvalid
		}
	}
	return OutcomeFailed
}
