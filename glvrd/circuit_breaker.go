package glvrd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerTransport wraps a Transport with circuit breaker functionality
type CircuitBreakerTransport struct {
	next Transport
	cb   *gobreaker.CircuitBreaker[*Response]
}

// NewCircuitBreakerTransport creates a new circuit breaker wrapper around a Transport
func NewCircuitBreakerTransport(next Transport, config *CircuitBreakerConfig, metrics *MetricsRecorder) *CircuitBreakerTransport {
	if config == nil {
		config = defaultCircuitBreakerConfig()
	}
	if metrics == nil {
		metrics = NewMetricsRecorder(false)
	}

	settings := gobreaker.Settings{
		Name:        "glvrd-api",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: config.ReadyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())

			metrics.RecordCircuitBreakerState(name, stateToInt(to))
			if to == gobreaker.StateOpen {
				metrics.RecordCircuitBreakerTrip(name)
			}

			if config.OnStateChange != nil {
				config.OnStateChange(name, from, to)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !ShouldTripCircuit(err)
		},
	}

	return &CircuitBreakerTransport{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*Response](settings),
	}
}

// Do executes the request through the circuit breaker. 5xx responses count
// as failures but are still returned to the caller.
func (w *CircuitBreakerTransport) Do(ctx context.Context, method, url, body string) (*Response, error) {
	resp, err := w.cb.Execute(func() (*Response, error) {
		r, err := w.next.Do(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			return r, &statusError{code: r.StatusCode}
		}
		return r, nil
	})

	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Debug("Circuit breaker is open, request rejected",
				"error", err)
		} else if errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Debug("Circuit breaker in half-open state, too many requests",
				"error", err)
		}
		return nil, err
	}

	return resp, nil
}

// State returns the current state of the circuit breaker
func (w *CircuitBreakerTransport) State() gobreaker.State {
	return w.cb.State()
}

// Counts returns the current counts of the circuit breaker
func (w *CircuitBreakerTransport) Counts() gobreaker.Counts {
	return w.cb.Counts()
}

// GetHealth returns the health status of the circuit breaker
func (w *CircuitBreakerTransport) GetHealth() HealthStatus {
	state := w.cb.State()
	counts := w.cb.Counts()

	var healthy bool
	var status string

	switch state {
	case gobreaker.StateClosed:
		healthy = true
		status = "closed"
	case gobreaker.StateHalfOpen:
		healthy = true // Degraded but operational
		status = "half-open"
	case gobreaker.StateOpen:
		healthy = false
		status = "open"
	default:
		status = "unknown"
	}

	return HealthStatus{
		Healthy: healthy,
		Status:  status,
		Details: map[string]interface{}{
			"state":                state.String(),
			"requests":             counts.Requests,
			"total_failures":       counts.TotalFailures,
			"consecutive_failures": counts.ConsecutiveFailures,
		},
	}
}

// ShouldTripCircuit determines if an error should count as a breaker failure
func ShouldTripCircuit(err error) bool {
	if err == nil {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError
	}

	// Caller gave up, the service is not at fault
	if errors.Is(err, context.Canceled) {
		return false
	}

	return true
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
