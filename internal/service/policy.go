package service

import (
	"strings"

	"github.com/teghlab/otp-lab/internal/domain"
)

// AdminEmailSuffix grants admin rights to any account registered under it.
// The claim is not checked beyond the OTP sent to that address.
const AdminEmailSuffix = "@teghindustries.com"

// IsAdminEmail reports whether email ends with AdminEmailSuffix. The match
// is case-sensitive.
func IsAdminEmail(email string) bool {
	return strings.HasSuffix(email, AdminEmailSuffix)
}

// RequireAdmin allows only sessions signed in as an admin.
func RequireAdmin(sess Session) error {
	u := sess.User()
	if u == nil || !u.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
