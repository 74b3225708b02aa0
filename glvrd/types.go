package glvrd

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/sony/gobreaker/v2"
)

// Session is the authentication token currently held by a client
type Session struct {
	Token     string    // Token issued by the service
	ExpiresAt time.Time // Instant after which the token is no longer used
}

// ValidAt reports whether the session can still be used at the given instant
func (s Session) ValidAt(now time.Time) bool {
	return s.Token != "" && s.ExpiresAt.After(now)
}

// SessionResponse is the payload of a session check.
// Cached is true when no network call was needed.
type SessionResponse struct {
	Status   string `json:"status"`
	Session  string `json:"session"`
	Lifespan int    `json:"lifespan,omitempty"` // seconds, when the service reports it
	Cached   bool   `json:"cached,omitempty"`
}

// Fragment is a flagged span of the proofread text
type Fragment struct {
	Start  int    `json:"start"`   // Offset of the first character, as reported by the service
	End    int    `json:"end"`     // Offset past the fragment, as reported by the service
	HintID string `json:"hint_id"` // Opaque hint identifier
	Hint   *Hint  `json:"hint,omitempty"`
}

// Hint explains why a fragment was flagged
type Hint struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Penalty     float64 `json:"penalty,omitempty"`
}

// ProofreadResult is the outcome of one proofreading call
type ProofreadResult struct {
	Status    string      `json:"status"`
	Text      string      `json:"text"`
	Fragments []*Fragment `json:"fragments"`
	Score     *Score      `json:"score,omitempty"`
}

// FragmentText returns the part of the text covered by f. Offsets are
// UTF-16 code units and are clamped to the text bounds.
func (r *ProofreadResult) FragmentText(f *Fragment) string {
	units := utf16.Encode([]rune(r.Text))
	start, end := f.Start, f.End
	if start < 0 {
		start = 0
	}
	if end > len(units) {
		end = len(units)
	}
	if start >= end {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}

// ServiceLimits are the limits advertised by the status endpoint
type ServiceLimits struct {
	MaxTextLength int `json:"max_text_length"`
	MaxHintsCount int `json:"max_hints_count"`
}

// StatusResponse is the payload of the status endpoint
type StatusResponse struct {
	Status string `json:"status"`
	ServiceLimits
}

type hintsResponse struct {
	Status string           `json:"status"`
	Hints  map[string]*Hint `json:"hints"`
}

// HealthStatus represents the health state of a client
type HealthStatus struct {
	Healthy bool                   // Overall health status
	Status  string                 // Human-readable status message
	Details map[string]interface{} // Additional health details
}

// Transport sends a single request to the service.
// body is the form-encoded payload for POST and empty for GET.
type Transport interface {
	Do(ctx context.Context, method, url, body string) (*Response, error)
}

// Response is the raw outcome of a request that reached the service
type Response struct {
	StatusCode int
	StatusText string
	Body       []byte
}

// CircuitBreakerConfig holds circuit breaker settings
type CircuitBreakerConfig struct {
	MaxRequests   uint32                                      // Max requests in half-open state
	Interval      time.Duration                               // Interval for closed state
	Timeout       time.Duration                               // Timeout for open state
	ReadyToTrip   func(counts gobreaker.Counts) bool          // Custom trip condition
	OnStateChange func(name string, from, to gobreaker.State) // State change callback
}

// RetryConfig holds retry settings
type RetryConfig struct {
	MaxAttempts  int           // Maximum number of attempts, including the first one
	Strategy     RetryStrategy // Backoff strategy to use
	InitialDelay time.Duration // Initial delay between retries
	MaxDelay     time.Duration // Maximum delay between retries
}

// RetryStrategy defines the backoff strategy for retries
type RetryStrategy string

const (
	RetryStrategyExponential RetryStrategy = "exponential"
	RetryStrategyConstant    RetryStrategy = "constant"
	RetryStrategyFibonacci   RetryStrategy = "fibonacci"
)

const (
	DefaultBaseURL         = "https://api.glvrd.ru/v2/"
	DefaultSessionLifetime = 3600 * time.Second
	DefaultTimeout         = 30 * time.Second

	StatusOK     = "ok"
	StatusError  = "error"
	CodeNetwork  = "network_error"
	CodeMissing  = "missing_param"
	opSession    = "session"
	opStatus     = "status"
	opProofread  = "proofread"
	opHints      = "hints"
	formMimeType = "application/x-www-form-urlencoded"
)

// Error definitions
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrEmptyIDs      = errors.New("hint ids cannot be empty")
	ErrNilResult     = errors.New("proofread result is nil")
	ErrMalformed     = errors.New("malformed response")
)

// APIError is a rejection reported by the service or synthesized for
// network failures.
type APIError struct {
	Status     string                 `json:"status"`
	Code       string                 `json:"code"`
	StatusText string                 `json:"statusText,omitempty"`
	HTTPStatus int                    `json:"-"`
	Body       map[string]interface{} `json:"-"` // Parsed service payload, nil when synthesized
}

func (e *APIError) Error() string {
	if e.StatusText != "" {
		return fmt.Sprintf("glvrd: %s: %s", e.Code, e.StatusText)
	}
	return fmt.Sprintf("glvrd: %s", e.Code)
}

// IsNetworkError reports whether err is a transport level failure
func IsNetworkError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeNetwork
}

// ErrorCode returns the service error code carried by err, or "" if err is
// not an API rejection.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func networkError(statusCode int, statusText string) *APIError {
	return &APIError{
		Status:     StatusError,
		Code:       CodeNetwork,
		StatusText: statusText,
		HTTPStatus: statusCode,
	}
}
