package repository

import (
	"errors"
	"fmt"

	"littlelemon/pkg/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the taxonomy distinguishes.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgNumericOutOfRange    = "22003"
)

// translate maps driver and gorm errors onto the apperr taxonomy. Errors that
// are already classified, and unknown errors, pass through unchanged.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", apperr.ErrConstraintViolation, what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s: %v", apperr.ErrConstraintViolation, what, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", apperr.ErrConflictRetry, pgErr.Message)
		case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation, pgNumericOutOfRange:
			return fmt.Errorf("%w: %s: %s", apperr.ErrConstraintViolation, what, pgErr.Message)
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%w: %s", apperr.ErrConflictRetry, liteErr.Error())
		case sqlite3.ErrConstraint:
			return fmt.Errorf("%w: %s: %s", apperr.ErrConstraintViolation, what, liteErr.Error())
		}
	}

	return err
}

// TranslateTx classifies an error returned by a whole transaction, such as a
// serialization failure reported at commit.
func TranslateTx(err error) error {
	return translate(err, "transaction")
}
