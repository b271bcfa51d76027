package domain

import (
	"context"
	"time"
)

// OTPTTL is how long an issued code stays valid.
const OTPTTL = 30 * time.Second

// OTP is a one-time code issued to an email address.
type OTP struct {
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code is no longer valid at t.
func (o *OTP) Expired(t time.Time) bool {
	return !t.Before(o.ExpiresAt)
}

// OTPRepository stores short-lived codes. Implementations must never return
// a record whose ExpiresAt has passed.
type OTPRepository interface {
	Create(ctx context.Context, otp *OTP) error
	DeleteByEmail(ctx context.Context, email string) error
	FindByEmailAndCode(ctx context.Context, email, code string) (*OTP, error)
	FindLatestByEmail(ctx context.Context, email string) (*OTP, error)
	List(ctx context.Context) ([]OTP, error)
}
