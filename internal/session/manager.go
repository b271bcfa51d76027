package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/teghlab/otp-lab/internal/domain"
)

// CookieName is the cookie that carries the signed session id.
const CookieName = "sid"

// Manager issues and validates session cookies. The cookie value is an
// HS256 token whose subject is the session id.
type Manager struct {
	store  domain.SessionStore
	secret []byte
	secure bool
}

// NewManager creates a Manager backed by store and signing with secret.
func NewManager(store domain.SessionStore, secret string, secure bool) *Manager {
	return &Manager{store: store, secret: []byte(secret), secure: secure}
}

// Middleware resolves the request's session, starting a new one when the
// cookie is missing or fails verification, and injects it into the context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.sessionID(r)
		if !ok {
			id = uuid.NewString()
			token, err := m.Sign(id)
			if err != nil {
				slog.Error("sign session cookie", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, m.cookie(token, 0))
		}

		sess, err := Load(r.Context(), m.store, id)
		if err != nil {
			slog.Error("load session", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

// Expire tells the client to drop its session cookie.
func (m *Manager) Expire(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

// Sign returns the cookie value for session id.
func (m *Manager) Sign(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  id,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Verify returns the session id carried by a cookie value.
func (m *Manager) Verify(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty session id", domain.ErrUnauthenticated)
	}
	return claims.Subject, nil
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, err := m.Verify(c.Value)
	if err != nil {
		slog.Debug("rejecting session cookie", "error", err)
		return "", false
	}
	return id, true
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
