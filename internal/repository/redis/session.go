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

// SessionStore implements domain.SessionStore. Each key expires after idle
// without a Get or Set.
type SessionStore struct {
	rdb  goredis.UniversalClient
	idle time.Duration
}

// NewSessionStore creates a Redis-backed SessionStore.
func NewSessionStore(rdb goredis.UniversalClient, idle time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, idle: idle}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.SessionData, error) {
	raw, err := s.rdb.GetEx(ctx, key(sessionNamespace, id), s.idle).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	data := &domain.SessionData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return data, nil
}

func (s *SessionStore) Set(ctx context.Context, id string, data *domain.SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, key(sessionNamespace, id), raw, s.idle).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, key(sessionNamespace, id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
