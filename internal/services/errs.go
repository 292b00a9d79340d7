// Package services implements the business logic layer for ProgramHub.
// Services own every guard and state transition; repositories only move
// rows, handlers only translate HTTP.
package services

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maeulsoft/programhub/internal/apperr"
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   int
	Role string
}

// mapNoRows converts a pgx no-rows result into a not-found business
// error; other errors pass through untouched.
func mapNoRows(err error, what string, id int) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return err
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. Unique constraints back the duplicate-application and
// duplicate-selection invariants, so a violation is a conflict, not an
// infrastructure failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
