package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
)

// ErrNotLoggedIn is returned by Session when no access token is held.
var ErrNotLoggedIn = errors.New("Not logged in")

// Tokens is a session token pair as returned by the auth endpoints.
type Tokens struct {
	Access  string `json:"token"`
	Refresh string `json:"refresh"`
}

// Session holds the caller's bearer tokens and renews them through
// /api/auth/refresh/. It satisfies Credentials.
type Session struct {
	baseURL string
	client  *http.Client

	mu     sync.RWMutex
	tokens Tokens

	// OnChange, if set, is called with the new pair after every change,
	// e.g. to persist it.
	OnChange func(Tokens)
}

// NewSession creates an empty session for the API at baseURL.
func NewSession(baseURL string, client *http.Client) *Session {
	if client == nil {
		client = http.DefaultClient
	}
	return &Session{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Set replaces the held tokens.
func (s *Session) Set(t Tokens) {
	s.mu.Lock()
	s.tokens = t
	cb := s.OnChange
	s.mu.Unlock()
	if cb != nil {
		cb(t)
	}
}

// Clear forgets the held tokens.
func (s *Session) Clear() { s.Set(Tokens{}) }

// Tokens returns the held pair.
func (s *Session) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// LoggedIn reports whether an access token is held.
func (s *Session) LoggedIn() bool { return s.Tokens().Access != "" }

// Headers returns the "Bearer <access>" Authorization header.
func (s *Session) Headers(_ context.Context) (http.Header, error) {
	t := s.Tokens()
	if t.Access == "" {
		return nil, ErrNotLoggedIn
	}
	hdr := make(http.Header)
	hdr.Set("Authorization", "Bearer "+t.Access)
	return hdr, nil
}

// Refresh exchanges the refresh token for a new pair. A rejected refresh
// token ends the session.
func (s *Session) Refresh(ctx context.Context) error {
	t := s.Tokens()
	if t.Refresh == "" {
		return ErrNotLoggedIn
	}

	gw := NewGateway(s.baseURL, s.client, nil, nil)
	res := gw.Do(ctx, http.MethodPost, "/api/auth/refresh/", WithJSON(map[string]string{"refresh": t.Refresh}))

	var next Tokens
	if err := res.Decode(&next); err != nil {
		if res.AuthError {
			s.Clear()
		}
		return err
	}
	s.Set(next)
	return nil
}
