// Package cache provides the read-through cache used for catalog reads.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jerseylab/jerseylab-backend/pkg/logger"
)

var ErrCacheMiss = errors.New("cache miss")

// Store holds JSON-encodable values under string keys.
type Store interface {
	// Get decodes the value under key into dest, or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// GetOrLoad returns the cached value for key, or calls load and caches its result.
// Cache faults are logged and fall through to load; only load errors are returned.
func GetOrLoad[T any](ctx context.Context, store Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	err := store.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("Cache read failed, loading from source", logger.Fields{
			"key":   key,
			"error": err.Error(),
		})
	}

	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	if err := store.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("Cache write failed", logger.Fields{
			"key":   key,
			"error": err.Error(),
		})
	}
	return value, nil
}
