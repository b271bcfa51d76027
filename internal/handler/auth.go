package handler

import (
	"log/slog"
	"net/http"

	"github.com/teghlab/otp-lab/internal/service"
	"github.com/teghlab/otp-lab/internal/session"
)

// AuthHandler handles the OTP, registration and login endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// HandleSendOTP issues a code for an email.
// POST /api/send-otp
// Request:  {"email":"..."}
// Response: {"success":true,"message":"..."}
func (h *AuthHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeServiceError(w, "decode request", err)
		return
	}

	if _, err := h.auth.IssueOTP(r.Context(), req.Email); err != nil {
		writeServiceError(w, "issue otp", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "OTP sent successfully",
	})
}

// HandleVerifyOTP checks a code and marks the session's email as verified.
// POST /api/verify-otp
// Request:  {"email":"...","otp":"123456"}
// Response: {"success":true|false,"message":"..."}
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := readJSON(r, &req); err != nil {
		writeServiceError(w, "decode request", err)
		return
	}

	sess := sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	ok, err := h.auth.VerifyOTP(r.Context(), sess, req.Email, req.OTP)
	if err != nil {
		writeServiceError(w, "verify otp", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Invalid or expired OTP",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "OTP verified successfully",
	})
}

// HandleRegister creates an account for the session's verified email.
// POST /api/register
// Request:  {"email","password","firstName","lastName","phone","address","city","zipCode"}
// Response: {"success":true} or 400 {"error":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		City      string `json:"city"`
		ZipCode   string `json:"zipCode"`
	}
	if err := readJSON(r, &req); err != nil {
		writeServiceError(w, "decode request", err)
		return
	}

	sess := sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	user, err := h.auth.Register(r.Context(), sess, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		ZipCode:   req.ZipCode,
	})
	if err != nil {
		writeServiceError(w, "register user", err)
		return
	}
	slog.Info("user registered", "id", user.ID, "admin", user.IsAdmin)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleLogin processes a JSON login request.
// POST /api/login
// Request:  {"email":"...","password":"..."}
// Response: {"success":true} or {"success":false,"message":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeServiceError(w, "decode request", err)
		return
	}

	sess := sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	ok, err := h.auth.Login(r.Context(), sess, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "login user", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Invalid email or password",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleCurrentUser returns the signed-in user.
// GET /api/user
// Response: {"id":1,"email":"...","isAdmin":false} or 401
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	u, err := h.auth.CurrentUser(sess)
	if err != nil {
		writeServiceError(w, "current user", err)
		return
	}

	writeJSON(w, http.StatusOK, SessionUserDTO{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin})
}

// HandleLogout destroys the session and clears its cookie.
// POST /api/logout
// Response: {"success":true}
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	if err := h.auth.Logout(r.Context(), sess); err != nil {
		writeServiceError(w, "logout", err)
		return
	}
	h.sessions.Expire(w)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
