package sqlite

import "time"

// SetClock replaces the time source used for OTP expiry.
func (r *OTPRepository) SetClock(now func() time.Time) {
	r.now = now
}

// CountRows counts every otps row, expired or not.
func (r *OTPRepository) CountRows(n *int) error {
	return r.db.QueryRow("SELECT COUNT(*) FROM otps").Scan(n)
}

// SetClock replaces the time source used for session idle tracking.
func (r *SessionRepository) SetClock(now func() time.Time) {
	r.now = now
}
