package handler

import (
	"errors"
	"net/http"

	"github.com/teghlab/otp-lab/internal/domain"
	"github.com/teghlab/otp-lab/internal/service"
)

// OTPHandler serves the unauthenticated OTP disclosure endpoints.
type OTPHandler struct {
	auth *service.AuthService
}

// NewOTPHandler creates a new OTPHandler.
func NewOTPHandler(auth *service.AuthService) *OTPHandler {
	return &OTPHandler{auth: auth}
}

// HandleList returns every live OTP.
// GET /api/otps
func (h *OTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	otps, err := h.auth.ListOTPs(r.Context())
	if err != nil {
		writeServiceError(w, "list otps", err)
		return
	}
	writeJSON(w, http.StatusOK, toOTPDTOs(otps))
}

// HandleLookup returns the live OTP for one email.
// GET /otp/{email}
// Response: {"email","otp","expiresIn"} or 404 {"message":"..."}
func (h *OTPHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	otp, remaining, err := h.auth.LookupOTP(r.Context(), r.PathValue("email"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"message": "No OTP found for this email",
			})
			return
		}
		writeServiceError(w, "lookup otp", err)
		return
	}
	writeJSON(w, http.StatusOK, toOTPLookupDTO(otp, remaining))
}
