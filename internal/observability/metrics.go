package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fews_explorer"

// Metrics holds the Prometheus counters, histograms, and gauges for the explorer.
type Metrics struct {
	// Upstream FEWS web service calls.
	UpstreamRequests *prometheus.CounterVec   // labels: resource={locations,parameters,timeseries}, outcome={success,transport,decode,unknown}
	UpstreamDuration *prometheus.HistogramVec // labels: resource
	UpstreamHealthy  prometheus.Gauge

	// Query operations as seen by callers.
	Queries           *prometheus.CounterVec   // labels: operation, outcome={ok,<error kind>}
	QueryDuration     *prometheus.HistogramVec // labels: operation
	RecordsNormalized *prometheus.CounterVec   // labels: resource
	OrphanRows        prometheus.Counter

	// Observation publishing.
	ObservationsPublished prometheus.Counter
	PublishErrors         prometheus.Counter
}

// NewMetrics creates and registers all explorer metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.UpstreamHealthy,
		m.Queries,
		m.QueryDuration,
		m.RecordsNormalized,
		m.OrphanRows,
		m.ObservationsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "FEWS web service requests by resource and outcome.",
		}, []string{"resource", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "FEWS web service request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"resource"}),
		UpstreamHealthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_healthy",
			Help:      "1 when the last request to the configured FEWS deployment reached it, 0 after a transport failure.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Explorer queries by operation and outcome.",
		}, []string{"operation", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end explorer query duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		RecordsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_normalized_total",
			Help:      "Records produced by the response normalizer by resource.",
		}, []string{"resource"}),
		OrphanRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_rows_total",
			Help:      "Time series rows dropped because their pair was not selected.",
		}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Observations written to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish attempts.",
		}),
	}
}
