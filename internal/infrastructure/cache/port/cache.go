package port

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports a cache miss.
var ErrMiss = errors.New("cache: miss")

// Cache is the key-value contract used for presence heartbeats and unread
// badge counters. Implementations must be concurrency-safe; all methods are
// context-aware so callers drive timeouts and cancellation.
//
// Values are strings to keep the port free of serialization concerns.
type Cache interface {
	// Get fetches the value for key, returning ErrMiss when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL
	// means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Incr atomically increments the integer at key and returns the new value.
	// A missing key counts from zero.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire resets the TTL of key. Used to refresh presence heartbeats.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	Ping(ctx context.Context) error
	Close() error
}
