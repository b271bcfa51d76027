package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/teghlab/otp-lab/internal/domain"
)

// OTPStore implements domain.OTPRepository. Each email maps to a single key
// holding its newest code; the key expires together with the code.
type OTPStore struct {
	rdb goredis.UniversalClient
	ttl time.Duration
}

// NewOTPStore creates an OTPStore using domain.OTPTTL.
func NewOTPStore(rdb goredis.UniversalClient) *OTPStore {
	return &OTPStore{rdb: rdb, ttl: domain.OTPTTL}
}

type otpRecord struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *OTPStore) Create(ctx context.Context, otp *domain.OTP) error {
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}
	otp.ExpiresAt = otp.CreatedAt.Add(s.ttl)

	raw, err := json.Marshal(otpRecord{
		Email:     otp.Email,
		Code:      otp.Code,
		CreatedAt: otp.CreatedAt,
		ExpiresAt: otp.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode otp: %w", err)
	}
	if err := s.rdb.Set(ctx, key(otpNamespace, otp.Email), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	return nil
}

func (s *OTPStore) DeleteByEmail(ctx context.Context, email string) error {
	if err := s.rdb.Del(ctx, key(otpNamespace, email)).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

func (s *OTPStore) FindByEmailAndCode(ctx context.Context, email, code string) (*domain.OTP, error) {
	otp, err := s.FindLatestByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if otp.Code != code {
		return nil, domain.ErrNotFound
	}
	return otp, nil
}

func (s *OTPStore) FindLatestByEmail(ctx context.Context, email string) (*domain.OTP, error) {
	raw, err := s.rdb.Get(ctx, key(otpNamespace, email)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get otp: %w", err)
	}
	otp, err := decodeOTP(raw)
	if err != nil {
		return nil, err
	}
	if otp.Expired(time.Now()) {
		return nil, domain.ErrNotFound
	}
	return otp, nil
}

// List scans every live OTP key. Keys that expire mid-scan are skipped.
func (s *OTPStore) List(ctx context.Context) ([]domain.OTP, error) {
	var otps []domain.OTP
	iter := s.rdb.Scan(ctx, 0, otpNamespace+":*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			return nil, fmt.Errorf("get otp: %w", err)
		}
		otp, err := decodeOTP(raw)
		if err != nil {
			return nil, err
		}
		if otp.Expired(time.Now()) {
			continue
		}
		otps = append(otps, *otp)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan otps: %w", err)
	}
	return otps, nil
}

func decodeOTP(raw []byte) (*domain.OTP, error) {
	var rec otpRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode otp: %w", err)
	}
	return &domain.OTP{
		Email:     rec.Email,
		Code:      rec.Code,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}
