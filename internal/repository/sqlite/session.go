package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teghlab/otp-lab/internal/domain"
)

// SessionRepository implements domain.SessionStore using SQLite.
// updated_at holds unix milliseconds and is bumped on every Get and Set;
// Sweep drops sessions idle for longer than a given window.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new SQLite-backed SessionRepository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.SqlDB, now: time.Now}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.SessionData, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE id = ? RETURNING data`,
		r.now().UnixMilli(), id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	data := &domain.SessionData{}
	if err := json.Unmarshal([]byte(raw), data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return data, nil
}

func (r *SessionRepository) Set(ctx context.Context, id string, data *domain.SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, string(raw), r.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Destroy(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Sweep deletes sessions untouched for idle or longer and reports how many
// were removed.
func (r *SessionRepository) Sweep(ctx context.Context, idle time.Duration) (int64, error) {
	cutoff := r.now().Add(-idle).UnixMilli()
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep rows affected: %w", err)
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *SessionRepository) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Sweep(ctx, idle)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("sweep idle sessions", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Debug("idle sessions removed", "count", n)
			}
		}
	}
}
