package postgres

import (
	"errors"

	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

// mapConstraint translates unique violations into store.ErrAlreadyExists
// and leaves everything else untouched.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}
