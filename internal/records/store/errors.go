package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"kgv/pkg/platform/sentinel"
)

// PostgreSQL error codes this layer translates. Everything else is passed
// through wrapped; driver errors never reach callers untranslated for the
// conditions the error taxonomy names.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
)

// translate maps driver-specific failures onto the sentinel taxonomy. Both
// drivers are handled: the target database runs on the pgx stdlib driver, the
// legacy staging source on lib/pq.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translateCode(err, pgErr.Code, pgErr.ConstraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return translateCode(err, string(pqErr.Code), pqErr.Constraint)
	}
	return err
}

func translateCode(err error, code, constraint string) error {
	switch code {
	case codeUniqueViolation:
		return fmt.Errorf("constraint %s: %w", constraint, sentinel.ErrDuplicateKey)
	case codeForeignKeyViolation:
		return fmt.Errorf("constraint %s: %w", constraint, sentinel.ErrForeignKey)
	case codeSerializationFailure:
		return fmt.Errorf("serialization failure: %w", sentinel.ErrConcurrencyConflict)
	default:
		return err
	}
}
