package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal    *prometheus.CounterVec
	breakerState    prometheus.Gauge
	successRate     prometheus.Gauge
	storageDuration *prometheus.HistogramVec
	queriesTotal    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlevault_fetches_total",
				Help: "Total number of upstream history fetches",
			},
			[]string{"symbol", "outcome"},
		),
		breakerState: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "candlevault_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
		),
		successRate: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "candlevault_run_success_rate",
				Help: "Success rate of the last ingestion run in percent",
			},
		),
		storageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "candlevault_storage_duration_seconds",
				Help:    "Duration of object storage operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		queriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlevault_queries_total",
				Help: "Total number of analytics queries served",
			},
			[]string{"op", "outcome"},
		),
	}
}

// RecordFetch records the outcome of a single symbol fetch.
func (r *Recorder) RecordFetch(symbol, outcome string) {
	r.fetchesTotal.WithLabelValues(symbol, outcome).Inc()
}

// RecordBreakerState records the current circuit breaker state.
func (r *Recorder) RecordBreakerState(state string) {
	var v float64
	switch state {
	case "OPEN":
		v = 1
	case "HALF_OPEN":
		v = 2
	}
	r.breakerState.Set(v)
}

// RecordSuccessRate records the success rate of an ingestion run.
func (r *Recorder) RecordSuccessRate(pct float64) {
	r.successRate.Set(pct)
}

// RecordStorageLatency records object storage operation latency in seconds.
func (r *Recorder) RecordStorageLatency(op string, seconds float64) {
	r.storageDuration.WithLabelValues(op).Observe(seconds)
}

// RecordQuery records an analytics query outcome.
func (r *Recorder) RecordQuery(op, outcome string) {
	r.queriesTotal.WithLabelValues(op, outcome).Inc()
}
