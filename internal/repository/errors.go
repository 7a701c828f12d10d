package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/domain"

	"github.com/mattn/go-sqlite3"
)

// mapError folds driver errors into the apperror taxonomy.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperror.ErrNotFound)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w", op, apperror.ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w", op, apperror.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %v: %w", op, err, apperror.ErrInternal)
}

func nullInt(o domain.OptInt) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(o.Value), Valid: o.Valid}
}

func optInt(n sql.NullInt64) domain.OptInt {
	if !n.Valid {
		return domain.None()
	}
	return domain.Some(int(n.Int64))
}
