package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/teghlab/otp-lab/internal/domain"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// OTPSender delivers an issued code to its owner.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

// LogSender "delivers" codes by writing them to the log.
type LogSender struct{}

func (LogSender) SendOTP(_ context.Context, email, code string, ttl time.Duration) error {
	slog.Info("otp issued", "email", email, "otp", code, "ttl", ttl)
	return nil
}

// GenerateOTP returns a six digit code drawn uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// IssueOTP replaces any outstanding codes for email with a fresh one.
// The email is not checked against registered users. Delivery failures are
// logged and do not fail the call.
func (s *AuthService) IssueOTP(ctx context.Context, email string) (*domain.OTP, error) {
	code, err := GenerateOTP()
	if err != nil {
		return nil, err
	}

	// Delete before insert so that at most one code is valid afterwards.
	if err := s.otps.DeleteByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("delete previous otps: %w", err)
	}

	otp := &domain.OTP{Email: email, Code: code, CreatedAt: time.Now().UTC()}
	if err := s.otps.Create(ctx, otp); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	if err := s.sender.SendOTP(ctx, email, code, domain.OTPTTL); err != nil {
		slog.Error("send otp", "email", email, "error", err)
	}
	return otp, nil
}

// VerifyOTP marks the session as having proven control of email when code
// matches a live record. The record stays usable until it expires or is
// replaced.
func (s *AuthService) VerifyOTP(ctx context.Context, sess Session, email, code string) (bool, error) {
	if _, err := s.otps.FindByEmailAndCode(ctx, email, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find otp: %w", err)
	}

	if err := sess.SetVerifiedEmail(ctx, email); err != nil {
		return false, err
	}
	return true, nil
}

// ListOTPs returns every live code. It is a diagnostic and is not guarded.
func (s *AuthService) ListOTPs(ctx context.Context) ([]domain.OTP, error) {
	otps, err := s.otps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list otps: %w", err)
	}
	return otps, nil
}

// LookupOTP returns the newest live code for email and how long it has left.
// It is a diagnostic and is not guarded.
func (s *AuthService) LookupOTP(ctx context.Context, email string) (*domain.OTP, time.Duration, error) {
	otp, err := s.otps.FindLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("find otp: %w", err)
	}
	return otp, max(time.Until(otp.ExpiresAt), 0), nil
}
