package glvrd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client talks to the Glavred API. It owns one session and one hint cache;
// nothing is shared between clients.
type Client struct {
	config    Config
	baseURL   string
	transport Transport
	breaker   *CircuitBreakerTransport
	metrics   *MetricsRecorder

	sessions *sessionStore
	renewals singleflight.Group
	cache    *hintCache

	limitsMu sync.RWMutex
	limits   ServiceLimits
}

// Option customizes a Client at construction time
type Option func(*Client)

// WithTransport replaces the default HTTP transport
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithClock replaces time.Now for session expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.sessions.now = now
	}
}

// New creates a Client. Retry and circuit breaker layers are applied around
// the transport when enabled in cfg, retry being the inner layer.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SessionLifetime == 0 {
		cfg.SessionLifetime = DefaultSessionLifetime
	}

	c := &Client{
		config:   cfg,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/") + "/",
		sessions: &sessionStore{now: time.Now},
		cache:    newHintCache(),
		metrics:  NewMetricsRecorder(cfg.EnableMetrics),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(cfg.Timeout)
	}

	if cfg.EnableRetry {
		slog.Info("Enabling retry logic",
			"max_attempts", cfg.RetryConfig.MaxAttempts,
			"strategy", cfg.RetryConfig.Strategy)
		c.transport = NewRetryTransport(c.transport, cfg.RetryConfig, c.metrics)
	}

	if cfg.EnableCircuitBreaker {
		slog.Info("Enabling circuit breaker",
			"max_requests", cfg.CircuitBreakerConfig.MaxRequests,
			"timeout", cfg.CircuitBreakerConfig.Timeout)
		c.breaker = NewCircuitBreakerTransport(c.transport, cfg.CircuitBreakerConfig, c.metrics)
		c.transport = c.breaker
	}

	return c, nil
}

// App returns the configured application identifier
func (c *Client) App() string {
	return c.config.App
}

// Limits returns the limits from the last status call. They are advisory.
func (c *Client) Limits() ServiceLimits {
	c.limitsMu.RLock()
	defer c.limitsMu.RUnlock()
	return c.limits
}

func (c *Client) setLimits(l ServiceLimits) {
	c.limitsMu.Lock()
	c.limits = l
	c.limitsMu.Unlock()
}

// GetStatus reads the service status and limits. No session is required.
func (c *Client) GetStatus(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call(ctx, http.MethodGet, opStatus, &resp); err != nil {
		return nil, err
	}
	c.setLimits(resp.ServiceLimits)
	return &resp, nil
}

// PostStatus ensures a session, refreshes the limits and extends the
// current session by a full lifetime.
func (c *Client) PostStatus(ctx context.Context) (*StatusResponse, error) {
	session, err := c.CheckSession(ctx)
	if err != nil {
		return nil, err
	}

	issuedAt := c.sessions.now()
	var resp StatusResponse
	if err := c.callInSession(ctx, session.Session, http.MethodPost, opStatus, &resp); err != nil {
		return nil, err
	}
	c.setLimits(resp.ServiceLimits)

	if s := c.sessions.get(); s.Token != "" && s.Token == session.Session {
		c.sessions.set(Session{Token: s.Token, ExpiresAt: issuedAt.Add(c.config.SessionLifetime)})
	}
	return &resp, nil
}

// ProofreadOption is a functional option for a proofreading call
type ProofreadOption func(*proofreadOptions)

type proofreadOptions struct {
	skipDecoration bool
}

// SkipDecoration returns the raw result: no score and no hints
func SkipDecoration() ProofreadOption {
	return func(o *proofreadOptions) {
		o.skipDecoration = true
	}
}

// Proofread submits text for analysis. Unless decoration is skipped, the
// score is computed from the raw fragments and then every fragment gets
// its hint attached.
func (c *Client) Proofread(ctx context.Context, text string, opts ...ProofreadOption) (*ProofreadResult, error) {
	options := &proofreadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	session, err := c.CheckSession(ctx)
	if err != nil {
		return nil, err
	}

	var result ProofreadResult
	if err := c.callInSession(ctx, session.Session, http.MethodPost, opProofread, &result, formField{Key: "text", Value: text}); err != nil {
		return nil, fmt.Errorf("proofread: %w", err)
	}
	for i, fragment := range result.Fragments {
		if fragment == nil {
			return nil, fmt.Errorf("proofread: fragment %d is null: %w", i, ErrMalformed)
		}
	}
	result.Text = text

	slog.Debug("Text proofread",
		"length", len(text),
		"fragments", len(result.Fragments))

	if options.skipDecoration {
		return &result, nil
	}

	score := ComputeScore(&result)
	result.Score = &score
	c.metrics.RecordScore(score)

	return c.DecorateHints(ctx, &result)
}

// DecorateHints attaches a hint to every fragment. Cached hints are used
// directly; all missing ids are fetched with a single GetHints call.
func (c *Client) DecorateHints(ctx context.Context, result *ProofreadResult) (*ProofreadResult, error) {
	if result == nil {
		return nil, ErrNilResult
	}

	token := c.sessions.get().Token
	var ids []string
	var pending []*Fragment
	seen := make(map[string]bool)
	hits := 0

	for _, fragment := range result.Fragments {
		if fragment == nil {
			continue
		}
		if hint, ok := c.cache.get(token, fragment.HintID); ok {
			fragment.Hint = hint
			hits++
			continue
		}
		pending = append(pending, fragment)
		if !seen[fragment.HintID] {
			seen[fragment.HintID] = true
			ids = append(ids, fragment.HintID)
		}
	}

	c.metrics.RecordHintLookups(hits, len(pending))
	if len(ids) == 0 {
		return result, nil
	}

	hints, err := c.GetHints(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, fragment := range pending {
		fragment.Hint = hints[fragment.HintID]
	}
	return result, nil
}

// GetHints fetches the given hint ids in one request and caches them under
// the session the request was sent in. Only the fetched hints are returned.
func (c *Client) GetHints(ctx context.Context, ids []string) (map[string]*Hint, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyIDs
	}

	session, err := c.CheckSession(ctx)
	if err != nil {
		return nil, err
	}

	token := session.Session
	var resp hintsResponse
	if err := c.callInSession(ctx, token, http.MethodPost, opHints, &resp, formField{Key: "ids", Value: strings.Join(ids, ",")}); err != nil {
		return nil, fmt.Errorf("load hints: %w", err)
	}

	for id, hint := range resp.Hints {
		c.cache.put(token, id, hint)
	}

	slog.Info("Hints loaded",
		"requested", len(ids),
		"received", len(resp.Hints))

	if resp.Hints == nil {
		resp.Hints = map[string]*Hint{}
	}
	return resp.Hints, nil
}

// CachedHint returns a hint cached under the current session
func (c *Client) CachedHint(id string) (*Hint, bool) {
	return c.cache.get(c.sessions.get().Token, id)
}

// GetHealth reports session, limits and circuit breaker state. It makes
// no network calls.
func (c *Client) GetHealth(ctx context.Context) HealthStatus {
	session := c.sessions.get()
	valid := c.HasValidSession()
	limits := c.Limits()

	details := map[string]interface{}{
		"app":             c.config.App,
		"session_valid":   valid,
		"cached_hints":    c.cache.size(session.Token),
		"max_text_length": limits.MaxTextLength,
		"max_hints_count": limits.MaxHintsCount,
	}
	if !session.ExpiresAt.IsZero() {
		details["session_expires_at"] = session.ExpiresAt
	}

	health := HealthStatus{Healthy: true, Status: "ready", Details: details}
	if !valid {
		health.Status = "no session"
	}

	if c.breaker != nil {
		cb := c.breaker.GetHealth()
		for k, v := range cb.Details {
			details["circuit_breaker_"+k] = v
		}
		if !cb.Healthy {
			health.Healthy = false
			health.Status = fmt.Sprintf("circuit open (%s)", health.Status)
		}
	}

	return health
}
