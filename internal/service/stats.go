package service

import (
	"context"
	"fmt"
	"time"

	"rank-tracker/internal/cache"
	"rank-tracker/internal/config"
	"rank-tracker/internal/constants"
	"rank-tracker/internal/metrics"

	"github.com/rs/zerolog"
)

// StatsSource is the raw pass-through surface of the stats client.
type StatsSource interface {
	GetStatsRaw(ctx context.Context, playerID string) ([]byte, error)
	GetRankedRaw(ctx context.Context, playerID string) ([]byte, error)
	GetRankingsRaw(ctx context.Context, bracket, region string, page int) ([]byte, error)
}

// StatsService proxies provider JSON through a TTL cache.
type StatsService struct {
	source  StatsSource
	cache   cache.Cache
	ttl     time.Duration
	timeout time.Duration
	logger  zerolog.Logger
}

func NewStatsService(source StatsSource, c cache.Cache, cfg *config.Config, logger zerolog.Logger) *StatsService {
	ttl := cfg.StatsCacheTTL
	if ttl <= 0 {
		ttl = constants.StatsCacheTTL
	}
	return &StatsService{source: source, cache: c, ttl: ttl, timeout: apiTimeout(cfg), logger: logger}
}

func (s *StatsService) PlayerStats(ctx context.Context, playerID string) ([]byte, error) {
	path := fmt.Sprintf("/player/%s/stats", playerID)
	return s.cached(ctx, path, func(ctx context.Context) ([]byte, error) {
		return s.source.GetStatsRaw(ctx, playerID)
	})
}

func (s *StatsService) PlayerRanked(ctx context.Context, playerID string) ([]byte, error) {
	path := fmt.Sprintf("/player/%s/ranked", playerID)
	return s.cached(ctx, path, func(ctx context.Context) ([]byte, error) {
		return s.source.GetRankedRaw(ctx, playerID)
	})
}

func (s *StatsService) Rankings(ctx context.Context, bracket, region string, page int) ([]byte, error) {
	path := fmt.Sprintf("/rankings/%s/%s/%d", bracket, region, page)
	return s.cached(ctx, path, func(ctx context.Context) ([]byte, error) {
		return s.source.GetRankingsRaw(ctx, bracket, region, page)
	})
}

func (s *StatsService) cached(ctx context.Context, path string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	key := cache.Key(path)

	if body, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("stats cache read failed")
	} else if ok {
		metrics.StatsCacheHits.Inc()
		return body, nil
	}
	metrics.StatsCacheMisses.Inc()

	apiCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := load(apiCtx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("stats cache write failed")
	}
	return body, nil
}
