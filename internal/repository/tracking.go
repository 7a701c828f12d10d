package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/db"
	"rank-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// TrackingRepository owns tracked players and their append-only rank history.
type TrackingRepository struct {
	queries *db.Queries
	db      *sql.DB
	tx      *sql.Tx
	logger  zerolog.Logger
}

func NewTrackingRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *TrackingRepository {
	return &TrackingRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// WithinTx runs fn against a repository bound to a single transaction.
// Either every write fn makes commits or none does.
func (r *TrackingRepository) WithinTx(ctx context.Context, fn func(txRepo *TrackingRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer tx.Rollback()

	txRepo := &TrackingRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		tx:      tx,
		logger:  r.logger,
	}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError("commit", err)
	}
	return nil
}

// Create inserts a tracked player, creating the owning user row on first use.
// A second create for the same (owner, external id) fails with ErrConflict.
func (r *TrackingRepository) Create(ctx context.Context, player *domain.TrackedPlayer) error {
	if player.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		player.ID = id
	}
	now := time.Now().UTC()
	if player.CreatedAt.IsZero() {
		player.CreatedAt = now
	}
	if player.LastChecked.IsZero() {
		player.LastChecked = player.CreatedAt
	}

	return r.WithinTx(ctx, func(txRepo *TrackingRepository) error {
		if err := txRepo.queries.EnsureUser(ctx, db.EnsureUserParams{
			SteamID:   player.OwnerID,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return mapError("ensure user", err)
		}

		err := txRepo.queries.CreateTrackedPlayer(ctx, db.CreateTrackedPlayerParams{
			ID:            player.ID,
			OwnerID:       player.OwnerID,
			BrawlhallaID:  player.ExternalID,
			PlayerName:    player.DisplayName,
			CurrentRank:   nullInt(player.CurrentRank),
			CurrentRating: nullInt(player.CurrentRating),
			LastChecked:   player.LastChecked.UTC(),
			CreatedAt:     player.CreatedAt.UTC(),
		})
		if err != nil {
			return mapError(fmt.Sprintf("create tracked player %s/%s", player.OwnerID, player.ExternalID), err)
		}
		return nil
	})
}

func (r *TrackingRepository) Get(ctx context.Context, ownerID, externalID string) (*domain.TrackedPlayer, error) {
	row, err := r.queries.GetTrackedPlayer(ctx, db.GetTrackedPlayerParams{
		OwnerID:      ownerID,
		BrawlhallaID: externalID,
	})
	if err != nil {
		return nil, mapError(fmt.Sprintf("get tracked player %s/%s", ownerID, externalID), err)
	}
	return toTrackedPlayer(row), nil
}

func (r *TrackingRepository) Exists(ctx context.Context, ownerID, externalID string) (bool, error) {
	n, err := r.queries.TrackedPlayerExists(ctx, db.TrackedPlayerExistsParams{
		OwnerID:      ownerID,
		BrawlhallaID: externalID,
	})
	if err != nil {
		return false, mapError("tracked player exists", err)
	}
	return n > 0, nil
}

// Delete removes the player and, with it, its whole history.
func (r *TrackingRepository) Delete(ctx context.Context, ownerID, externalID string) error {
	return r.WithinTx(ctx, func(txRepo *TrackingRepository) error {
		player, err := txRepo.Get(ctx, ownerID, externalID)
		if err != nil {
			return err
		}
		if err := txRepo.queries.DeleteRankHistoryByTrackedPlayer(ctx, player.ID); err != nil {
			return mapError("delete rank history", err)
		}
		n, err := txRepo.queries.DeleteTrackedPlayer(ctx, player.ID)
		if err != nil {
			return mapError("delete tracked player", err)
		}
		if n == 0 {
			return fmt.Errorf("delete tracked player %s/%s: %w", ownerID, externalID, apperror.ErrNotFound)
		}
		return nil
	})
}

// ListForOwner returns the owner's players newest first, each carrying its
// latest historyLimit entries newest first.
func (r *TrackingRepository) ListForOwner(ctx context.Context, ownerID string, historyLimit int) ([]domain.TrackedPlayer, error) {
	rows, err := r.queries.ListTrackedPlayersByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapError("list tracked players", err)
	}

	history, err := r.queries.ListRecentRankHistoryByOwner(ctx, db.ListRecentRankHistoryByOwnerParams{
		OwnerID: ownerID,
		Limit:   int64(historyLimit),
	})
	if err != nil {
		return nil, mapError("list rank history", err)
	}

	byPlayer := make(map[string][]domain.RankHistoryEntry, len(rows))
	for _, h := range history {
		byPlayer[h.TrackedPlayerID] = append(byPlayer[h.TrackedPlayerID], toHistoryEntry(h))
	}

	result := make([]domain.TrackedPlayer, len(rows))
	for i, row := range rows {
		result[i] = *toTrackedPlayer(row)
		result[i].History = byPlayer[row.ID]
		if result[i].History == nil {
			result[i].History = []domain.RankHistoryEntry{}
		}
	}
	return result, nil
}

// UpdateRankState overwrites the mutable rank fields. A player deleted
// concurrently yields ErrNotFound.
func (r *TrackingRepository) UpdateRankState(ctx context.Context, id string, rank, rating domain.OptInt, checkedAt time.Time) error {
	n, err := r.queries.UpdateTrackedPlayerRank(ctx, db.UpdateTrackedPlayerRankParams{
		CurrentRank:   nullInt(rank),
		CurrentRating: nullInt(rating),
		LastChecked:   checkedAt.UTC(),
		ID:            id,
	})
	if err != nil {
		return mapError("update rank state", err)
	}
	if n == 0 {
		r.logger.Debug().Str("tracked_player_id", id).Msg("rank update matched no player")
		return fmt.Errorf("update rank state %s: %w", id, apperror.ErrNotFound)
	}
	return nil
}

// AppendHistory inserts one observation. Entries are never updated.
func (r *TrackingRepository) AppendHistory(ctx context.Context, trackedPlayerID string, rank domain.OptInt, rating int, recordedAt time.Time) (*domain.RankHistoryEntry, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	entry := &domain.RankHistoryEntry{
		ID:              id,
		TrackedPlayerID: trackedPlayerID,
		Rank:            rank,
		Rating:          rating,
		RecordedAt:      recordedAt.UTC(),
	}

	err = r.queries.InsertRankHistory(ctx, db.InsertRankHistoryParams{
		ID:              entry.ID,
		TrackedPlayerID: entry.TrackedPlayerID,
		PlayerRank:      nullInt(entry.Rank),
		Rating:          int64(entry.Rating),
		RecordedAt:      entry.RecordedAt,
	})
	if err != nil {
		return nil, mapError(fmt.Sprintf("append rank history %s", trackedPlayerID), err)
	}
	return entry, nil
}

func (r *TrackingRepository) History(ctx context.Context, trackedPlayerID string, limit int) ([]domain.RankHistoryEntry, error) {
	rows, err := r.queries.ListRankHistoryByTrackedPlayer(ctx, db.ListRankHistoryByTrackedPlayerParams{
		TrackedPlayerID: trackedPlayerID,
		Limit:           int64(limit),
	})
	if err != nil {
		return nil, mapError("list rank history", err)
	}

	result := make([]domain.RankHistoryEntry, len(rows))
	for i, h := range rows {
		result[i] = toHistoryEntry(h)
	}
	return result, nil
}

func toTrackedPlayer(row db.TrackedPlayer) *domain.TrackedPlayer {
	return &domain.TrackedPlayer{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		ExternalID:    row.BrawlhallaID,
		DisplayName:   row.PlayerName,
		CurrentRank:   optInt(row.CurrentRank),
		CurrentRating: optInt(row.CurrentRating),
		LastChecked:   row.LastChecked,
		CreatedAt:     row.CreatedAt,
	}
}

func toHistoryEntry(h db.RankHistory) domain.RankHistoryEntry {
	return domain.RankHistoryEntry{
		ID:              h.ID,
		TrackedPlayerID: h.TrackedPlayerID,
		Rank:            optInt(h.PlayerRank),
		Rating:          int(h.Rating),
		RecordedAt:      h.RecordedAt,
	}
}
