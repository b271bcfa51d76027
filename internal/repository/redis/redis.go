// Package redis stores OTPs and sessions in Redis, relying on key expiry
// for the OTP lifetime and session idle eviction.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	otpNamespace     = "otp"
	sessionNamespace = "session"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Client wraps a go-redis client and hands out the stores built on it.
type Client struct {
	rdb goredis.UniversalClient
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts Options) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) OTPs() *OTPStore { return NewOTPStore(c.rdb) }

// Sessions returns a SessionStore whose entries expire after idle.
func (c *Client) Sessions(idle time.Duration) *SessionStore {
	return NewSessionStore(c.rdb, idle)
}

func key(namespace, id string) string {
	return namespace + ":" + id
}
