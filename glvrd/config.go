package glvrd

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config holds the configuration for a Client
type Config struct {
	App                  string                // Application identifier sent as the app parameter
	BaseURL              string                // API root, operations are appended to it
	Timeout              time.Duration         // Per-request timeout of the default transport
	SessionLifetime      time.Duration         // Used when the service does not report a lifespan
	SingleFlightRenewal  bool                  // Share one in-flight renewal between concurrent callers
	EnableMetrics        bool                  // Record Prometheus metrics
	EnableCircuitBreaker bool                  // Enable circuit breaker pattern
	EnableRetry          bool                  // Enable retry with backoff for network failures
	CircuitBreakerConfig *CircuitBreakerConfig // Circuit breaker configuration
	RetryConfig          *RetryConfig          // Retry configuration
}

// NewDefaultConfig creates a config with sensible defaults.
// An empty app is allowed; the service rejects such requests with missing_param.
func NewDefaultConfig(app string) Config {
	return Config{
		App:             app,
		BaseURL:         DefaultBaseURL,
		Timeout:         DefaultTimeout,
		SessionLifetime: DefaultSessionLifetime,
	}
}

// NewProductionConfig creates a config with metrics and all resilience features
func NewProductionConfig(app string) Config {
	return NewDefaultConfig(app).
		WithMetrics().
		WithCircuitBreaker().
		WithRetry()
}

// WithBaseURL sets the API root
func (c Config) WithBaseURL(base string) Config {
	c.BaseURL = base
	return c
}

// WithTimeout sets the request timeout
func (c Config) WithTimeout(timeout time.Duration) Config {
	if timeout < 0 {
		panic("timeout must be positive")
	}
	c.Timeout = timeout
	return c
}

// WithSessionLifetime sets the fallback session lifetime
func (c Config) WithSessionLifetime(lifetime time.Duration) Config {
	if lifetime <= 0 {
		panic("session lifetime must be positive")
	}
	c.SessionLifetime = lifetime
	return c
}

// WithSingleFlightRenewal makes concurrent callers share one session renewal
func (c Config) WithSingleFlightRenewal() Config {
	c.SingleFlightRenewal = true
	return c
}

// WithMetrics enables Prometheus metrics
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithCircuitBreaker enables circuit breaker with default settings
func (c Config) WithCircuitBreaker() Config {
	c.EnableCircuitBreaker = true
	c.CircuitBreakerConfig = defaultCircuitBreakerConfig()
	return c
}

// WithCircuitBreakerConfig enables circuit breaker with custom settings
func (c Config) WithCircuitBreakerConfig(config *CircuitBreakerConfig) Config {
	c.EnableCircuitBreaker = true
	c.CircuitBreakerConfig = config
	return c
}

// WithRetry enables retry with default exponential backoff
func (c Config) WithRetry() Config {
	c.EnableRetry = true
	c.RetryConfig = defaultRetryConfig()
	return c
}

// WithRetryConfig enables retry with custom settings
func (c Config) WithRetryConfig(config *RetryConfig) Config {
	c.EnableRetry = true
	c.RetryConfig = config
	return c
}

// Validate checks if the config is valid
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: invalid base URL %q", ErrInvalidConfig, c.BaseURL)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}

	if c.SessionLifetime < 0 {
		return fmt.Errorf("%w: session lifetime must be positive", ErrInvalidConfig)
	}

	if c.EnableCircuitBreaker && c.CircuitBreakerConfig == nil {
		return errors.New("circuit breaker enabled but config is nil")
	}

	if c.EnableRetry {
		if c.RetryConfig == nil {
			return errors.New("retry enabled but config is nil")
		}

		if !isValidRetryStrategy(c.RetryConfig.Strategy) {
			return fmt.Errorf("invalid retry strategy: %s", c.RetryConfig.Strategy)
		}

		if c.RetryConfig.MaxAttempts <= 0 {
			return errors.New("retry MaxAttempts must be positive")
		}

		if c.RetryConfig.InitialDelay <= 0 {
			return errors.New("retry InitialDelay must be positive")
		}

		if c.RetryConfig.MaxDelay <= 0 {
			return errors.New("retry MaxDelay must be positive")
		}
	}

	return nil
}

func defaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		Strategy:     RetryStrategyExponential,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
	}
}

func defaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if 5 consecutive failures OR failure rate > 60%
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && failureRatio > 0.6)
		},
	}
}

func isValidRetryStrategy(strategy RetryStrategy) bool {
	switch strategy {
	case RetryStrategyExponential, RetryStrategyConstant, RetryStrategyFibonacci:
		return true
	default:
		return false
	}
}
