// Package cache holds the stats proxy cache. Tracking refreshes never read it.
package cache

import (
	"context"
	"time"

	"rank-tracker/internal/config"

	"github.com/rs/zerolog"
)

type Cache interface {
	// Get returns the stored value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builds the cache key for an upstream path.
func Key(path string) string {
	return "stats:" + path
}

// New returns a Redis-backed cache when REDIS_URL is set, otherwise an
// in-process one.
func New(cfg *config.Config, memory *MemoryCache, logger zerolog.Logger) (Cache, error) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("using in-memory stats cache")
		return memory, nil
	}
	c, err := NewRedisCache(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("using redis stats cache")
	return c, nil
}
