// internal/cache/cache.go

// Package cache defines the keyed TTL store capability used by services.
// Implementations must be safe for concurrent use and shared across server
// instances; process-local maps are not acceptable backends in production.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
