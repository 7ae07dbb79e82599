// Package metrics provides Prometheus metrics collection for the fraud
// scoring service. It defines and manages all prediction, evaluation, and
// system metrics that are exposed via the Prometheus metrics endpoint for
// monitoring and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scoring service.
// It provides counters, gauges, and histograms for monitoring
// prediction volume, failures, latency, and score distribution.
type Metrics struct {
	// Prediction metrics
	PredictRequests  prometheus.Counter   // Total number of scoring requests handled
	PredictErrors    prometheus.Counter   // Total number of failed scoring requests
	PredictLatency   prometheus.Histogram // End-to-end scoring latency in seconds
	PredictionScores prometheus.Histogram // Distribution of fraud probabilities

	// Batch metrics
	BatchRows     prometheus.Counter // Total rows received in batch requests
	BatchFailures prometheus.Counter // Total rows rejected during batch scoring

	// Model metrics
	ModelAge       prometheus.Gauge   // Age of the loaded model artifact in seconds
	ThresholdValue prometheus.Gauge   // Currently effective decision threshold
	SchemaErrors   prometheus.Counter // Total number of feature coercion errors

	// Transport metrics
	WSClients prometheus.Gauge // Connected score-feed WebSocket clients

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all Prometheus metrics using the default registry.
// This is the standard way to create metrics for production use.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows for isolated metric collection in tests without affecting
// the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "predict_requests_total",
			Help: "Total number of scoring requests handled",
		}),
		PredictErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "predict_errors_total",
			Help: "Total number of failed scoring requests",
		}),
		PredictLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "predict_latency_seconds",
			Help:    "End-to-end scoring latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_scores",
			Help:    "Distribution of fraud probabilities produced by the model",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		BatchRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "batch_rows_total",
			Help: "Total rows received in batch scoring requests",
		}),
		BatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "batch_row_failures_total",
			Help: "Total rows rejected during batch scoring",
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
		ThresholdValue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "decision_threshold",
			Help: "Currently effective decision threshold",
		}),
		SchemaErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "schema_errors_total",
			Help: "Total number of feature coercion errors",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_score_clients",
			Help: "Connected score-feed WebSocket clients",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}

// PredictionsInc records one handled scoring request.
func (m *Metrics) PredictionsInc() { m.PredictRequests.Inc() }

// PredictionErrorsInc records one failed scoring request.
func (m *Metrics) PredictionErrorsInc() {
	m.PredictErrors.Inc()
	m.ErrorsTotal.Inc()
}

// PredictionLatencyObserve records end-to-end scoring latency.
func (m *Metrics) PredictionLatencyObserve(seconds float64) {
	m.PredictLatency.Observe(seconds)
}

// PredictionScoresObserve records a produced fraud probability.
func (m *Metrics) PredictionScoresObserve(score float64) {
	m.PredictionScores.Observe(score)
}
