package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/db"
	"rank-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewUserRepository(queries *db.Queries, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		queries: queries,
		logger:  logger,
	}
}

// UpsertProfile records the identity provider's view of the user, keeping any
// linked stats account.
func (r *UserRepository) UpsertProfile(ctx context.Context, steamID, displayName, avatar string) error {
	now := time.Now().UTC()
	err := r.queries.UpsertUserProfile(ctx, db.UpsertUserProfileParams{
		SteamID:     steamID,
		DisplayName: displayName,
		Avatar:      avatar,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return mapError(fmt.Sprintf("upsert user %s", steamID), err)
	}
	r.logger.Debug().Str("steam_id", steamID).Msg("user profile upserted")
	return nil
}

func (r *UserRepository) Get(ctx context.Context, steamID string) (*domain.User, error) {
	row, err := r.queries.GetUser(ctx, steamID)
	if err != nil {
		return nil, mapError(fmt.Sprintf("get user %s", steamID), err)
	}
	return &domain.User{
		SteamID:      row.SteamID,
		DisplayName:  row.DisplayName,
		Avatar:       row.Avatar,
		BrawlhallaID: row.BrawlhallaID.String,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// SetBrawlhallaID links the stats account; an empty id unlinks it.
func (r *UserRepository) SetBrawlhallaID(ctx context.Context, steamID, brawlhallaID string) error {
	now := time.Now().UTC()
	if err := r.queries.EnsureUser(ctx, db.EnsureUserParams{
		SteamID:   steamID,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return mapError("ensure user", err)
	}

	n, err := r.queries.SetUserBrawlhallaID(ctx, db.SetUserBrawlhallaIDParams{
		BrawlhallaID: sql.NullString{String: brawlhallaID, Valid: brawlhallaID != ""},
		UpdatedAt:    now,
		SteamID:      steamID,
	})
	if err != nil {
		return mapError(fmt.Sprintf("set brawlhalla id for %s", steamID), err)
	}
	if n == 0 {
		return fmt.Errorf("set brawlhalla id for %s: %w", steamID, apperror.ErrNotFound)
	}
	return nil
}
