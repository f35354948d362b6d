package rdx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewClient returns a client for addr. It does not dial until first use.
func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

// Locker hands out short-lived named locks.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

// RedisLocker implements Locker with SETNX plus expiry.
type RedisLocker struct {
	Conn   *redis.Client
	Prefix string
}

func NewLocker(conn *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{Conn: conn, Prefix: prefix}
}

// Acquire reports whether the lock was taken. The lock frees itself after ttl.
func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return l.Conn.SetNX(ctx, l.Prefix+name, "1", ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context, name string) error {
	return l.Conn.Del(ctx, l.Prefix+name).Err()
}
