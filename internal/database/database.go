package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"rank-tracker/internal/config"
	"rank-tracker/internal/constants"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// driverName is go-sqlite3 with connPragmas applied on every new connection.
const driverName = "sqlite3_tracker"

// Connection-scoped settings go in the DSN so every pooled connection gets
// them. _txlock=immediate makes writers queue on busy_timeout instead of
// failing on lock upgrade.
const dsnParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"

// connPragmas are the settings the DSN cannot carry.
var connPragmas = []struct {
	name  string
	value string
}{
	{"synchronous", "NORMAL"},
	{"cache_size", "-64000"},
	{"temp_store", "MEMORY"},
	{"mmap_size", "268435456"}, // https://sqlite.org/mmap.html
}

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{ConnectHook: applyPragmas})
}

func applyPragmas(conn *sqlite3.SQLiteConn) error {
	for _, p := range connPragmas {
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value), nil); err != nil {
			return fmt.Errorf("set PRAGMA %s: %w", p.name, err)
		}
	}
	return nil
}

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	log := logger.With().Str("component", "database").Str("path", cfg.DBPath).Logger()

	db, err := sql.Open(driverName, fmt.Sprintf("file:%s?%s", cfg.DBPath, dsnParams))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	// first connection runs the hook, so a bad pragma fails here
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate(ctx, db, log); err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to run migrations")
		return nil, err
	}

	log.Info().Msg("database ready")
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info().
			Int64("version", r.Source.Version).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
	return nil
}
