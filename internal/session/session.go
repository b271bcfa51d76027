// Package session binds a client cookie to server-side session state.
//
// Each request gets its own *Session, loaded from a pluggable
// domain.SessionStore and carried in the request context. Mutations are
// written through to the store immediately.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/teghlab/otp-lab/internal/domain"
)

// Session is the per-request handle on one client's session state.
type Session struct {
	id    string
	store domain.SessionStore
	data  domain.SessionData
}

// Load fetches the state for id. Unknown ids yield an empty session.
func Load(ctx context.Context, store domain.SessionStore, id string) (*Session, error) {
	s := &Session{id: id, store: store}
	data, err := store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.data = *data
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// VerifiedEmail returns the email proven by OTP, or "".
func (s *Session) VerifiedEmail() string { return s.data.VerifiedEmail }

// User returns the authenticated-user marker, or nil.
func (s *Session) User() *domain.SessionUser {
	if s.data.User == nil {
		return nil
	}
	u := *s.data.User
	return &u
}

func (s *Session) SetVerifiedEmail(ctx context.Context, email string) error {
	s.data.VerifiedEmail = email
	return s.save(ctx)
}

func (s *Session) SetUser(ctx context.Context, user domain.SessionUser) error {
	s.data.User = &user
	return s.save(ctx)
}

// Destroy removes the session from the store and clears local state.
func (s *Session) Destroy(ctx context.Context) error {
	s.data = domain.SessionData{}
	if err := s.store.Destroy(ctx, s.id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *Session) save(ctx context.Context) error {
	data := s.data
	if err := s.store.Set(ctx, s.id, &data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by the middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
