package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rank-tracker/internal/api"
	"rank-tracker/internal/apperror"
	"rank-tracker/internal/config"
	"rank-tracker/internal/constants"
	"rank-tracker/internal/domain"
	"rank-tracker/internal/metrics"
	"rank-tracker/internal/ranking"
	"rank-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RankedFetcher is the slice of the stats client the tracking flow needs.
type RankedFetcher interface {
	GetRanked(ctx context.Context, playerID string) (*api.RankedResponse, error)
}

type TrackingService struct {
	fetcher      RankedFetcher
	repo         *repository.TrackingRepository
	logger       zerolog.Logger
	now          func() time.Time
	refreshLimit int
	apiTimeout   time.Duration
}

func NewTrackingService(fetcher RankedFetcher, repo *repository.TrackingRepository, cfg *config.Config, logger zerolog.Logger) *TrackingService {
	limit := cfg.RefreshAllConcurrency
	if limit <= 0 {
		limit = constants.RefreshAllLimit
	}
	return &TrackingService{
		fetcher:      fetcher,
		repo:         repo,
		logger:       logger,
		now:          time.Now,
		refreshLimit: limit,
		apiTimeout:   apiTimeout(cfg),
	}
}

type TrackResult struct {
	Player      *domain.TrackedPlayer
	HasRankData bool
}

type RefreshResult struct {
	Rank        domain.OptInt
	Rating      domain.OptInt
	Changed     bool
	Recorded    bool
	LastChecked time.Time
}

// RefreshOutcome is one player's result within RefreshAll. Exactly one of
// Result and Err is set.
type RefreshOutcome struct {
	ExternalID  string
	DisplayName string
	Result      *RefreshResult
	Err         error
}

// Track starts watching externalID for owner. An upstream failure does not
// fail the call; the player is stored without rank data.
func (s *TrackingService) Track(ctx context.Context, ownerID, externalID, displayName string) (*TrackResult, error) {
	log := s.logger.With().Str("owner", ownerID).Str("external_id", externalID).Logger()

	exists, err := s.repo.Exists(ctx, ownerID, externalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("player %s already tracked: %w", externalID, apperror.ErrConflict)
	}

	sample := domain.RankSample{}
	raw, err := s.fetch(ctx, externalID)
	if err != nil {
		log.Warn().Err(err).Msg("initial rank fetch failed, tracking without data")
	} else {
		sample = ranking.Extract(raw)
	}

	now := s.now().UTC()
	player := &domain.TrackedPlayer{
		OwnerID:       ownerID,
		ExternalID:    externalID,
		DisplayName:   displayName,
		CurrentRank:   sample.Rank,
		CurrentRating: sample.Rating,
		LastChecked:   now,
		CreatedAt:     now,
		History:       []domain.RankHistoryEntry{},
	}

	writeCtx, cancel := detachedWriteContext(ctx)
	defer cancel()

	var entry *domain.RankHistoryEntry
	err = s.repo.WithinTx(writeCtx, func(tx *repository.TrackingRepository) error {
		if err := tx.Create(writeCtx, player); err != nil {
			return err
		}
		if !sample.HasRankedData() {
			return nil
		}
		var err error
		entry, err = tx.AppendHistory(writeCtx, player.ID, sample.Rank, sample.Rating.Value, now)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			log.Error().Err(err).Msg("failed to create tracked player")
		}
		return nil, err
	}

	if entry != nil {
		metrics.HistoryAppends.Inc()
		player.History = append(player.History, *entry)
	}

	log.Info().
		Str("rank", sample.Rank.String()).
		Str("rating", sample.Rating.String()).
		Bool("recorded", entry != nil).
		Msg("player tracked")

	return &TrackResult{Player: player, HasRankData: sample.HasRankedData()}, nil
}

// Refresh fetches the latest sample and applies it: rank state and
// lastChecked always, a history entry only when the change detector says so.
// Both writes commit together or not at all.
func (s *TrackingService) Refresh(ctx context.Context, ownerID, externalID string) (*RefreshResult, error) {
	log := s.logger.With().Str("owner", ownerID).Str("external_id", externalID).Logger()

	player, err := s.repo.Get(ctx, ownerID, externalID)
	if err != nil {
		return nil, err
	}

	raw, err := s.fetch(ctx, externalID)
	if err != nil {
		metrics.RankRefreshes.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("rank refresh fetch failed")
		return nil, fmt.Errorf("failed to fetch ranked stats for %s: %w", externalID, err)
	}

	decision := ranking.Decide(player.RankState(), raw)
	checkedAt := s.now().UTC()

	writeCtx, cancel := detachedWriteContext(ctx)
	defer cancel()

	err = s.repo.WithinTx(writeCtx, func(tx *repository.TrackingRepository) error {
		if err := tx.UpdateRankState(writeCtx, player.ID, decision.Sample.Rank, decision.Sample.Rating, checkedAt); err != nil {
			return err
		}
		if !decision.Record {
			return nil
		}
		_, err := tx.AppendHistory(writeCtx, player.ID, decision.Sample.Rank, decision.Sample.Rating.Value, checkedAt)
		return err
	})
	if err != nil {
		metrics.RankRefreshes.WithLabelValues("failed").Inc()
		if errors.Is(err, apperror.ErrNotFound) {
			log.Info().Msg("player untracked during refresh")
		} else {
			log.Error().Err(err).Msg("failed to apply rank refresh")
		}
		return nil, err
	}

	if decision.Record {
		metrics.HistoryAppends.Inc()
	}
	metrics.RankRefreshes.WithLabelValues(refreshLabel(decision)).Inc()

	log.Info().
		Str("rank", decision.Sample.Rank.String()).
		Str("rating", decision.Sample.Rating.String()).
		Bool("changed", decision.Changed).
		Bool("recorded", decision.Record).
		Msg("rank refreshed")

	return &RefreshResult{
		Rank:        decision.Sample.Rank,
		Rating:      decision.Sample.Rating,
		Changed:     decision.Changed,
		Recorded:    decision.Record,
		LastChecked: checkedAt,
	}, nil
}

// RefreshAll refreshes every player of owner with bounded concurrency.
// One player's failure does not stop the others.
func (s *TrackingService) RefreshAll(ctx context.Context, ownerID string) ([]RefreshOutcome, error) {
	players, err := s.repo.ListForOwner(ctx, ownerID, 0)
	if err != nil {
		return nil, err
	}

	outcomes := make([]RefreshOutcome, len(players))
	g := new(errgroup.Group)
	g.SetLimit(s.refreshLimit)

	for i, p := range players {
		g.Go(func() error {
			res, err := s.Refresh(ctx, ownerID, p.ExternalID)
			outcomes[i] = RefreshOutcome{
				ExternalID:  p.ExternalID,
				DisplayName: p.DisplayName,
				Result:      res,
				Err:         err,
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info().Str("owner", ownerID).Int("players", len(players)).Msg("refreshed all tracked players")
	return outcomes, nil
}

func (s *TrackingService) Untrack(ctx context.Context, ownerID, externalID string) error {
	if err := s.repo.Delete(ctx, ownerID, externalID); err != nil {
		return err
	}
	s.logger.Info().Str("owner", ownerID).Str("external_id", externalID).Msg("player untracked")
	return nil
}

func (s *TrackingService) List(ctx context.Context, ownerID string) ([]domain.TrackedPlayer, error) {
	return s.repo.ListForOwner(ctx, ownerID, constants.RecentHistoryLimit)
}

func (s *TrackingService) IsTracked(ctx context.Context, ownerID, externalID string) (bool, error) {
	return s.repo.Exists(ctx, ownerID, externalID)
}

func (s *TrackingService) fetch(ctx context.Context, externalID string) (*api.RankedResponse, error) {
	apiCtx, cancel := context.WithTimeout(ctx, s.apiTimeout)
	defer cancel()
	return s.fetcher.GetRanked(apiCtx, externalID)
}

func apiTimeout(cfg *config.Config) time.Duration {
	if cfg.ExternalAPITimeout > 0 {
		return cfg.ExternalAPITimeout
	}
	return constants.ExternalAPITimeout
}

// detachedWriteContext lets a commit finish after the caller goes away so
// the update and history append land as a pair.
func detachedWriteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), constants.DatabaseTimeout)
}

func refreshLabel(d ranking.Decision) string {
	switch {
	case !d.Sample.HasRankedData():
		return "no_data"
	case d.Changed:
		return "changed"
	default:
		return "unchanged"
	}
}
