package glvrd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sethvargo/go-retry"
)

// statusError marks a response whose HTTP status is worth retrying or
// counting as a breaker failure. It never leaves the wrappers.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http status %d", e.code)
}

// RetryTransport wraps a Transport with retry logic for network failures,
// 429 and 5xx responses. Service rejections with status "error" arrive as
// 2xx responses and are never retried.
type RetryTransport struct {
	next    Transport
	config  *RetryConfig
	metrics *MetricsRecorder
}

// NewRetryTransport creates a new retry wrapper around a Transport
func NewRetryTransport(next Transport, config *RetryConfig, metrics *MetricsRecorder) *RetryTransport {
	if config == nil {
		config = defaultRetryConfig()
	}
	if metrics == nil {
		metrics = NewMetricsRecorder(false)
	}

	return &RetryTransport{
		next:    next,
		config:  config,
		metrics: metrics,
	}
}

// Do executes the request with retry logic. When every attempt ends in a
// retryable status, the last response is returned as is.
func (w *RetryTransport) Do(ctx context.Context, method, url, body string) (*Response, error) {
	var resp *Response
	attempts := 0

	err := retry.Do(ctx, w.backoff(), func(ctx context.Context) error {
		attempts++
		r, err := w.next.Do(ctx, method, url, body)
		if err != nil {
			if !IsRetryableError(err) {
				slog.Debug("Non-retryable error, giving up",
					"error", err,
					"attempts", attempts)
				return err
			}
			slog.Debug("Retrying request after error",
				"attempt", attempts,
				"error", err)
			w.metrics.RecordRetry("network")
			return retry.RetryableError(err)
		}

		resp = r
		if IsRetryableStatus(r.StatusCode) {
			slog.Debug("Retrying request after status",
				"attempt", attempts,
				"status", r.StatusCode)
			w.metrics.RecordRetry(fmt.Sprintf("http_%d", r.StatusCode))
			return retry.RetryableError(&statusError{code: r.StatusCode})
		}
		return nil
	})

	w.metrics.RecordRetryAttempt(attempts)
	if attempts > 1 {
		slog.Info("Request finished after retry",
			"attempts", attempts,
			"error", err)
	}

	if err != nil {
		var se *statusError
		if errors.As(err, &se) && resp != nil {
			return resp, nil
		}
		return nil, err
	}
	return resp, nil
}

func (w *RetryTransport) backoff() retry.Backoff {
	retries := uint64(0)
	if w.config.MaxAttempts > 1 {
		retries = uint64(w.config.MaxAttempts - 1)
	}

	var base retry.Backoff
	switch w.config.Strategy {
	case RetryStrategyConstant:
		base = retry.NewConstant(w.config.InitialDelay)
	case RetryStrategyFibonacci:
		base = retry.NewFibonacci(w.config.InitialDelay)
	case RetryStrategyExponential:
		fallthrough
	default:
		base = retry.NewExponential(w.config.InitialDelay)
	}

	// Add jitter to prevent thundering herd
	if jitter := w.config.InitialDelay / 10; jitter > 0 {
		base = retry.WithJitter(jitter, base)
	}

	return retry.WithMaxRetries(retries, retry.WithCappedDuration(w.config.MaxDelay, base))
}

// IsRetryableStatus reports whether an HTTP status should be retried
func IsRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// IsRetryableError determines if a transport error should trigger a retry
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Cancelled context is not retryable
	if errors.Is(err, context.Canceled) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return IsRetryableStatus(se.code)
	}

	// Timeouts and connection failures are retryable
	return true
}
