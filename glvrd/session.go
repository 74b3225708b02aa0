package glvrd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// sessionStore holds the single session of a client. The lock only guards
// the fields; renewals are not serialized unless single-flight is enabled,
// so two concurrent renewals both hit the service and the last one wins.
type sessionStore struct {
	mu      sync.RWMutex
	session Session
	now     func() time.Time
}

// current returns the session if it is valid right now
func (s *sessionStore) current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.session.ValidAt(s.now())
}

func (s *sessionStore) get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *sessionStore) set(session Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

// HasValidSession reports whether a token exists and its expiry is still ahead
func (c *Client) HasValidSession() bool {
	_, ok := c.sessions.current()
	return ok
}

// Session returns the stored session, valid or not
func (c *Client) Session() Session {
	return c.sessions.get()
}

// GetSession unconditionally requests a new session and replaces the stored
// one, even if it was still valid.
func (c *Client) GetSession(ctx context.Context) (*SessionResponse, error) {
	issuedAt := c.sessions.now()

	var resp SessionResponse
	if err := c.call(ctx, http.MethodPost, opSession, &resp); err != nil {
		c.metrics.RecordSessionRenewal("error")
		return nil, fmt.Errorf("create session: %w", err)
	}

	lifetime := c.config.SessionLifetime
	if resp.Lifespan > 0 {
		lifetime = time.Duration(resp.Lifespan) * time.Second
	}
	c.sessions.set(Session{Token: resp.Session, ExpiresAt: issuedAt.Add(lifetime)})
	c.metrics.RecordSessionRenewal(StatusOK)

	slog.Info("glvrd session created",
		"app", c.config.App,
		"lifetime", lifetime)

	return &resp, nil
}

// CheckSession returns immediately with a cached marker when the session is
// valid, otherwise it renews the session through GetSession.
func (c *Client) CheckSession(ctx context.Context) (*SessionResponse, error) {
	if s, ok := c.sessions.current(); ok {
		return &SessionResponse{Status: StatusOK, Session: s.Token, Cached: true}, nil
	}

	if !c.config.SingleFlightRenewal {
		return c.GetSession(ctx)
	}

	v, err, shared := c.renewals.Do(opSession, func() (interface{}, error) {
		return c.GetSession(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("glvrd session renewal shared with concurrent caller")
	}
	return v.(*SessionResponse), nil
}
