package handler

import (
	"net/http"
	"strconv"

	"github.com/teghlab/otp-lab/internal/service"
)

// UserHandler serves the admin-only user endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleList returns every user without password hashes.
// GET /api/users/all
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	users, err := h.users.List(r.Context(), sess)
	if err != nil {
		writeServiceError(w, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

// HandleGet returns a single user.
// GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		// Non-admins still see 403 for malformed ids.
		if err := service.RequireAdmin(sess); err != nil {
			writeServiceError(w, "get user", err)
			return
		}
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.users.Get(r.Context(), sess, id)
	if err != nil {
		writeServiceError(w, "get user", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}
