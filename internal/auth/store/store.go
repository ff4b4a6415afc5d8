package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so a Tx can hand out the same
// repositories bound to the transaction.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used by login and the signup duplicate check.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record for a token fingerprint.
	// Records expired at now are reported as ErrNotFound.
	GetRefreshTokenByHash(ctx context.Context, hash string, now time.Time) (domain.RefreshToken, error)

	// DeleteRefreshTokenByHash deletes the record and returns what was deleted.
	DeleteRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteExpiredRefreshTokens purges records expired at now.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)

	// CountUserRefreshTokens counts the live records a user holds.
	CountUserRefreshTokens(ctx context.Context, userID string, now time.Time) (int64, error)
}
