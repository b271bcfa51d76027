package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teghlab/otp-lab/internal/domain"
)

// OTPRepository implements domain.OTPRepository using SQLite.
// Rows carry an expires_at (unix milliseconds) that every read filters on, and
// Sweep removes the rows that have passed it.
type OTPRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewOTPRepository creates a new SQLite-backed OTPRepository using domain.OTPTTL.
func NewOTPRepository(db *DB) *OTPRepository {
	return &OTPRepository{db: db.SqlDB, ttl: domain.OTPTTL, now: time.Now}
}

func (r *OTPRepository) Create(ctx context.Context, otp *domain.OTP) error {
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = r.now().UTC()
	}
	otp.ExpiresAt = otp.CreatedAt.Add(r.ttl)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otps (email, code, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		otp.Email, otp.Code, otp.CreatedAt.UnixMilli(), otp.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}
	return nil
}

func (r *OTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE email = ?`, email); err != nil {
		return fmt.Errorf("delete otps: %w", err)
	}
	return nil
}

func (r *OTPRepository) FindByEmailAndCode(ctx context.Context, email, code string) (*domain.OTP, error) {
	otp, err := scanOTP(r.db.QueryRowContext(ctx,
		`SELECT email, code, created_at, expires_at FROM otps
		 WHERE email = ? AND code = ? AND expires_at > ?
		 ORDER BY id DESC LIMIT 1`,
		email, code, r.now().UnixMilli(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query otp: %w", err)
	}
	return otp, nil
}

func (r *OTPRepository) FindLatestByEmail(ctx context.Context, email string) (*domain.OTP, error) {
	otp, err := scanOTP(r.db.QueryRowContext(ctx,
		`SELECT email, code, created_at, expires_at FROM otps
		 WHERE email = ? AND expires_at > ?
		 ORDER BY id DESC LIMIT 1`,
		email, r.now().UnixMilli(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query latest otp: %w", err)
	}
	return otp, nil
}

func (r *OTPRepository) List(ctx context.Context) ([]domain.OTP, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT email, code, created_at, expires_at FROM otps
		 WHERE expires_at > ? ORDER BY id`, r.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list otps: %w", err)
	}
	defer rows.Close()

	var otps []domain.OTP
	for rows.Next() {
		var (
			o                  domain.OTP
			created, expiresAt int64
		)
		if err := rows.Scan(&o.Email, &o.Code, &created, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan otp: %w", err)
		}
		o.CreatedAt = time.UnixMilli(created).UTC()
		o.ExpiresAt = time.UnixMilli(expiresAt).UTC()
		otps = append(otps, o)
	}
	return otps, rows.Err()
}

// Sweep deletes expired rows and reports how many were removed.
func (r *OTPRepository) Sweep(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE expires_at <= ?`, r.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sweep otps: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep rows affected: %w", err)
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *OTPRepository) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Sweep(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("sweep expired otps", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Debug("expired otps removed", "count", n)
			}
		}
	}
}

func scanOTP(row *sql.Row) (*domain.OTP, error) {
	var (
		o                  domain.OTP
		created, expiresAt int64
	)
	if err := row.Scan(&o.Email, &o.Code, &created, &expiresAt); err != nil {
		return nil, err
	}
	o.CreatedAt = time.UnixMilli(created).UTC()
	o.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return &o, nil
}
