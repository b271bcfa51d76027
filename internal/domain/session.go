package domain

import "context"

// SessionUser is the authenticated-user marker held in a session.
type SessionUser struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// SessionData is the state bound to one client session.
type SessionData struct {
	VerifiedEmail string       `json:"verifiedEmail,omitempty"`
	User          *SessionUser `json:"user,omitempty"`
}

// SessionStore persists session state keyed by session id.
// Get returns ErrNotFound for unknown or destroyed sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*SessionData, error)
	Set(ctx context.Context, id string, data *SessionData) error
	Destroy(ctx context.Context, id string) error
}
