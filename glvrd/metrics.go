package glvrd

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API metrics
	apiCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glvrd_api_calls_total",
			Help: "Total number of Glavred API calls by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	apiCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glvrd_api_call_duration_seconds",
			Help:    "Duration of Glavred API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Session metrics
	sessionRenewals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glvrd_session_renewals_total",
			Help: "Total number of session creation calls",
		},
		[]string{"status"},
	)

	// Hint cache metrics
	hintLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glvrd_hint_cache_lookups_total",
			Help: "Hint cache lookups during decoration",
		},
		[]string{"result"}, // hit, miss
	)

	// Score distribution
	scoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glvrd_score_distribution",
			Help:    "Distribution of readability scores (0-10)",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	// Retry metrics
	retryAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glvrd_retry_attempts",
			Help:    "Number of attempts per request",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	retryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glvrd_retry_total",
			Help: "Total number of retries by reason",
		},
		[]string{"reason"},
	)

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "glvrd_circuit_breaker_state",
			Help: "Current state of circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	circuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glvrd_circuit_breaker_trips_total",
			Help: "Total number of circuit breaker trips",
		},
		[]string{"name"},
	)
)

// MetricsRecorder provides methods to record metrics
type MetricsRecorder struct {
	enabled bool
}

// NewMetricsRecorder creates a new metrics recorder
func NewMetricsRecorder(enabled bool) *MetricsRecorder {
	return &MetricsRecorder{enabled: enabled}
}

// Enabled reports whether metrics are recorded
func (m *MetricsRecorder) Enabled() bool {
	return m.enabled
}

// RecordAPICall records one API call and its duration
func (m *MetricsRecorder) RecordAPICall(operation, status string, seconds float64) {
	if !m.enabled {
		return
	}
	apiCallsTotal.WithLabelValues(operation, status).Inc()
	apiCallDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordSessionRenewal records a session creation call
func (m *MetricsRecorder) RecordSessionRenewal(status string) {
	if !m.enabled {
		return
	}
	sessionRenewals.WithLabelValues(status).Inc()
}

// RecordHintLookups records cache hits and misses of one decoration
func (m *MetricsRecorder) RecordHintLookups(hits, misses int) {
	if !m.enabled {
		return
	}
	hintLookups.WithLabelValues("hit").Add(float64(hits))
	hintLookups.WithLabelValues("miss").Add(float64(misses))
}

// RecordScore records a score
func (m *MetricsRecorder) RecordScore(score Score) {
	if !m.enabled {
		return
	}
	scoreDistribution.Observe(float64(score))
}

// RecordRetryAttempt records attempts made for one request
func (m *MetricsRecorder) RecordRetryAttempt(attempts int) {
	if !m.enabled {
		return
	}
	retryAttempts.Observe(float64(attempts))
}

// RecordRetry records a retry
func (m *MetricsRecorder) RecordRetry(reason string) {
	if !m.enabled {
		return
	}
	retryTotal.WithLabelValues(reason).Inc()
}

// RecordCircuitBreakerState records circuit breaker state
func (m *MetricsRecorder) RecordCircuitBreakerState(name string, state int) {
	if !m.enabled {
		return
	}
	circuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *MetricsRecorder) RecordCircuitBreakerTrip(name string) {
	if !m.enabled {
		return
	}
	circuitBreakerTrips.WithLabelValues(name).Inc()
}

// GetMetricsHandler returns an HTTP handler for Prometheus metrics
func GetMetricsHandler() http.Handler {
	return promhttp.Handler()
}
