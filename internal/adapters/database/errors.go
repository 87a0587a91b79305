package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/cityguide/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

// Postgres SQLSTATE codes the adapters translate into application errors
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
	pqNumericOutOfRange   = "22003"
)

// mapPQError turns constraint violations into typed application errors so callers never re-check
// schema constraints themselves.
func mapPQError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return apperrors.NewNotFoundError(message + ": referenced record does not exist")
		case pqUniqueViolation:
			return apperrors.NewConflictError(message + ": " + pqErr.Message)
		case pqCheckViolation, pqNumericOutOfRange:
			return apperrors.NewValidationError(message + ": " + pqErr.Message)
		}
	}
	return apperrors.NewInternalError(message, err)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, rolling back on any error returned by fn.
func withTx(ctx context.Context, client *postgres.Client, fn func(tx *sql.Tx) error) error {
	tx, err := client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}
	return nil
}
