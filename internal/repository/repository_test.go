package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/config"
	"rank-tracker/internal/database"
	"rank-tracker/internal/db"
	"rank-tracker/internal/domain"

	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "tracker.db")}
	sqlDB, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func newTrackingRepo(t *testing.T) *TrackingRepository {
	t.Helper()
	sqlDB := openTestDB(t)
	return NewTrackingRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTrackingRepo(t)

	player := &domain.TrackedPlayer{
		OwnerID:       "steam-1",
		ExternalID:    "42",
		DisplayName:   "Bodvar",
		CurrentRank:   domain.Some(12),
		CurrentRating: domain.Some(1300),
	}
	if err := repo.Create(ctx, player); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if player.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := repo.Get(ctx, "steam-1", "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != player.ID || got.DisplayName != "Bodvar" {
		t.Errorf("got %+v", got)
	}
	if !got.CurrentRank.Equal(domain.Some(12)) || !got.CurrentRating.Equal(domain.Some(1300)) {
		t.Errorf("rank state = %v/%v", got.CurrentRank, got.CurrentRating)
	}
}

func TestCreateKeepsAbsentRankAsNull(t *testing.T) {
	ctx := context.Background()
	repo := newTrackingRepo(t)

	if err := repo.Create(ctx, &domain.TrackedPlayer{OwnerID: "o", ExternalID: "1", DisplayName: "x"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.Get(ctx, "o", "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CurrentRank.Valid || got.CurrentRating.Valid {
		t.Errorf("expected absent rank state, got %v/%v", got.CurrentRank, got.CurrentRating)
	}
}

func TestCreateDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	repo := newTrackingRepo(t)

	first := &domain.TrackedPlayer{OwnerID: "o", ExternalID: "1", DisplayName: "a"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, &domain.TrackedPlayer{OwnerID: "o", ExternalID: "1", DisplayName: "b"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Create err = %v, want ErrConflict", err)
	}

	// Another owner may track the same external player.
	if err := repo.Create(ctx, &domain.TrackedPlayer{OwnerID: "o2", ExternalID: "1", DisplayName: "a"}); err != nil {
		t.Fatalf("Create for other owner: %v", err)
	}

	players, err := repo.ListForOwner(ctx, "o", 10)
	if err != nil {
		t.Fatalf("ListForOwner: %v", err)
	}
	if len(players) != 1 || players[0].DisplayName != "a" {
		t.Errorf("players = %+v", players)
	}
}

func TestConcurrentCreateYieldsOneConflict(t *testing.T) {
	ctx := context.Background()
	repo := newTrackingRepo(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &domain.TrackedPlayer{OwnerID: "o", ExternalID: "7", DisplayName: "p"})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperror.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Errorf("ok=%d conflicts=%d", ok, conflicts)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTrackingRepo(t)

	player := &domain.TrackedPlayer{OwnerID: "o", ExternalID: "1", DisplayName: "a"}
	if err := repo.Create(ctx, player); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.AppendHistory(ctx, player.ID, domain.Some(5), 1200, time.Now()); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	if err := repo.Delete(ctx, "o", "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if exists, _ := repo.Exists(ctx, "o", "1"); exists {
		t.Error("player still exists")
	}
	history, err := repo.History(ctx, player.ID, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history survived delete: %d entries", len(history))
	}

	if err := repo.Delete(ctx, "o", "1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRankStateOnDeletedPlayer(t *testing.T) {
	ctx := context.Background()
	repo := newTrackingRepo(t)

	err := repo.UpdateRankState(ctx, "missing", domain.Some(1), domain.Some(1000), time.Now())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateRankState err = %v, want ErrNotFound", err)
	}

	_, err = repo.AppendHistory(ctx, "missing", domain.Some(1), 1000, time.Now())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AppendHistory err = %v, want ErrNotFound", err)
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTrackingRepo(t)

	player := &domain.TrackedPlayer{OwnerID: "o", ExternalID: "1", DisplayName: "a"}
	if err := repo.Create(ctx, player); err != nil {
		t.Fatalf("Create: %v", err)
	}

	boom := errors.New("boom")
	err := repo.WithinTx(ctx, func(tx *TrackingRepository) error {
		if err := tx.UpdateRankState(ctx, player.ID, domain.Some(3), domain.Some(1500), time.Now()); err != nil {
			return err
		}
		if _, err := tx.AppendHistory(ctx, player.ID, domain.Some(3), 1500, time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err = %v", err)
	}

	got, err := repo.Get(ctx, "o", "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CurrentRating.Valid {
		t.Errorf("rating = %v, want rolled back", got.CurrentRating)
	}
	history, _ := repo.History(ctx, player.ID, 10)
	if len(history) != 0 {
		t.Errorf("history = %d entries, want 0", len(history))
	}
}

func TestListForOwnerOrderingAndHistoryWindow(t *testing.T) {
	ctx := context.Background()
	repo := newTrackingRepo(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := &domain.TrackedPlayer{OwnerID: "o", ExternalID: "1", DisplayName: "older", CreatedAt: base}
	newer := &domain.TrackedPlayer{OwnerID: "o", ExternalID: "2", DisplayName: "newer", CreatedAt: base.Add(time.Hour)}
	for _, p := range []*domain.TrackedPlayer{older, newer} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	for i := 0; i < 15; i++ {
		if _, err := repo.AppendHistory(ctx, older.ID, domain.None(), 1000+i, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	players, err := repo.ListForOwner(ctx, "o", 10)
	if err != nil {
		t.Fatalf("ListForOwner: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("len = %d", len(players))
	}
	if players[0].DisplayName != "newer" || players[1].DisplayName != "older" {
		t.Errorf("order = %s, %s", players[0].DisplayName, players[1].DisplayName)
	}
	if len(players[0].History) != 0 {
		t.Errorf("newer history = %d", len(players[0].History))
	}

	h := players[1].History
	if len(h) != 10 {
		t.Fatalf("older history = %d, want 10", len(h))
	}
	if h[0].Rating != 1014 || h[9].Rating != 1005 {
		t.Errorf("window = %d..%d, want 1014..1005", h[0].Rating, h[9].Rating)
	}
	if h[0].Rank.Valid {
		t.Errorf("rank = %v, want absent", h[0].Rank)
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	sqlDB := openTestDB(t)
	repo := NewUserRepository(db.New(sqlDB), zerolog.Nop())

	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Get unknown err = %v", err)
	}

	if err := repo.UpsertProfile(ctx, "s1", "Hattori", "https://avatars/h.jpg"); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if err := repo.SetBrawlhallaID(ctx, "s1", "4242"); err != nil {
		t.Fatalf("SetBrawlhallaID: %v", err)
	}
	// A later login refreshes the profile without dropping the link.
	if err := repo.UpsertProfile(ctx, "s1", "Hattori2", "https://avatars/h2.jpg"); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	u, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.DisplayName != "Hattori2" || u.BrawlhallaID != "4242" {
		t.Errorf("user = %+v", u)
	}

	if err := repo.SetBrawlhallaID(ctx, "s1", ""); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	u, _ = repo.Get(ctx, "s1")
	if u.BrawlhallaID != "" {
		t.Errorf("BrawlhallaID = %q after unlink", u.BrawlhallaID)
	}
}
