package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/cors"
	"github.com/teghlab/otp-lab/internal/session"
)

// sessionFromRequest returns the request's session, answering 500 when the
// session middleware was not installed.
func sessionFromRequest(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := session.FromContext(r.Context())
	if sess == nil {
		slog.Error("session middleware missing", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "session unavailable")
	}
	return sess
}

// SecurityHeaders sets conservative response headers on every request.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// CORS allows browser clients from origins to call the API with cookies.
// A "*" entry accepts any origin; the request's origin is echoed back since
// browsers refuse a wildcard on credentialed responses.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if slices.Contains(origins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	}
	return cors.Handler(opts)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
