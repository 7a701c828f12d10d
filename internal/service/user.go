package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/config"
	"rank-tracker/internal/domain"
	"rank-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// StatsValidator confirms a stats account exists before it is linked.
type StatsValidator interface {
	GetStatsRaw(ctx context.Context, playerID string) ([]byte, error)
}

type UserService struct {
	stats   StatsValidator
	repo    *repository.UserRepository
	timeout time.Duration
	logger  zerolog.Logger
}

func NewUserService(stats StatsValidator, repo *repository.UserRepository, cfg *config.Config, logger zerolog.Logger) *UserService {
	return &UserService{stats: stats, repo: repo, timeout: apiTimeout(cfg), logger: logger}
}

// Login records the profile the identity provider returned.
func (s *UserService) Login(ctx context.Context, steamID, displayName, avatar string) (*domain.User, error) {
	if err := s.repo.UpsertProfile(ctx, steamID, displayName, avatar); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, steamID)
}

// Profile returns the user, or a bare identity when no row exists yet.
func (s *UserService) Profile(ctx context.Context, steamID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, steamID)
	if errors.Is(err, apperror.ErrNotFound) {
		return &domain.User{SteamID: steamID}, nil
	}
	return u, err
}

func (s *UserService) Link(ctx context.Context, steamID, brawlhallaID string) (*domain.User, error) {
	apiCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.stats.GetStatsRaw(apiCtx, brawlhallaID); err != nil {
		s.logger.Warn().Err(err).Str("steam_id", steamID).Str("external_id", brawlhallaID).Msg("link validation failed")
		return nil, fmt.Errorf("validate brawlhalla id %s: %w", brawlhallaID, err)
	}

	if err := s.repo.SetBrawlhallaID(ctx, steamID, brawlhallaID); err != nil {
		return nil, err
	}
	s.logger.Info().Str("steam_id", steamID).Str("external_id", brawlhallaID).Msg("brawlhalla account linked")
	return s.Profile(ctx, steamID)
}

func (s *UserService) Unlink(ctx context.Context, steamID string) (*domain.User, error) {
	if err := s.repo.SetBrawlhallaID(ctx, steamID, ""); err != nil {
		return nil, err
	}
	s.logger.Info().Str("steam_id", steamID).Msg("brawlhalla account unlinked")
	return s.Profile(ctx, steamID)
}
