package handler

import (
	"net/http"

	"github.com/teghlab/otp-lab/internal/service"
	"github.com/teghlab/otp-lab/internal/session"
)

// RegisterRoutes sets up all HTTP routes on the given mux. API routes run
// behind the session middleware.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, users *service.UserService, sessions *session.Manager) {
	authHandler := NewAuthHandler(auth, sessions)
	userHandler := NewUserHandler(users)
	otpHandler := NewOTPHandler(auth)

	withSession := func(h http.HandlerFunc) http.Handler {
		return sessions.Middleware(h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("POST /api/send-otp", withSession(authHandler.HandleSendOTP))
	mux.Handle("POST /api/verify-otp", withSession(authHandler.HandleVerifyOTP))
	mux.Handle("POST /api/register", withSession(authHandler.HandleRegister))
	mux.Handle("POST /api/login", withSession(authHandler.HandleLogin))
	mux.Handle("GET /api/user", withSession(authHandler.HandleCurrentUser))
	mux.Handle("POST /api/logout", withSession(authHandler.HandleLogout))

	mux.Handle("GET /api/users/all", withSession(userHandler.HandleList))
	mux.Handle("GET /api/users/{id}", withSession(userHandler.HandleGet))

	// Unauthenticated OTP disclosure.
	mux.HandleFunc("GET /api/otps", otpHandler.HandleList)
	mux.HandleFunc("GET /otp/{email}", otpHandler.HandleLookup)
}
