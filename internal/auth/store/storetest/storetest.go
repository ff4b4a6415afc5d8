// Package storetest holds the behaviour every store driver must share. Driver
// packages call Run from their own tests with a constructor for a fresh,
// migrated store.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store with migrations applied. It should register
// its own cleanup.
type Factory func(t *testing.T) store.Store

// Run executes the shared driver suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("duplicate email", func(t *testing.T) { testDuplicateEmail(t, newStore(t)) })
	t.Run("concurrent duplicate email", func(t *testing.T) { testConcurrentDuplicateEmail(t, newStore(t)) })
	t.Run("refresh tokens", func(t *testing.T) { testRefreshTokens(t, newStore(t)) })
	t.Run("refresh token expiry", func(t *testing.T) { testRefreshTokenExpiry(t, newStore(t)) })
	t.Run("refresh token needs user", func(t *testing.T) { testRefreshTokenForeignKey(t, newStore(t)) })
	t.Run("tx rollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("tx commit", func(t *testing.T) { testTxCommit(t, newStore(t)) })
	t.Run("migrations idempotent", func(t *testing.T) { require.NoError(t, newStore(t).ApplyMigrations()) })
}

// NewUser returns a user with a fresh id. Timestamps are truncated to the
// millisecond so they survive every driver's round trip.
func NewUser(email string) domain.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return domain.User{
		ID:           idx.New().String(),
		FirstName:    "Ada",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewRefreshToken returns a record for userID expiring ttl after now.
func NewRefreshToken(userID string, now time.Time, ttl time.Duration) domain.RefreshToken {
	token, _ := cryptox.GenerateToken(cryptox.TokenSize256)
	now = now.UTC().Truncate(time.Millisecond)
	return domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()

	u := NewUser("ada@x.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	byEmail, err := st.Users().GetUserByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, u.FirstName, byEmail.FirstName)
	require.Equal(t, u.PasswordHash, byEmail.PasswordHash)
	require.True(t, u.CreatedAt.Equal(byEmail.CreatedAt))

	byID, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@x.com", byID.Email)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testDuplicateEmail(t *testing.T, st store.Store) {
	ctx := context.Background()

	require.NoError(t, st.Users().CreateUser(ctx, NewUser("dup@x.com")))
	err := st.Users().CreateUser(ctx, NewUser("dup@x.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

var errEmailSeen = errors.New("email seen")

// testConcurrentDuplicateEmail races check-then-insert transactions for one
// address. Whether a loser sees the winner's row or hits the constraint
// depends on the driver's isolation; exactly one user must come out of it.
func testConcurrentDuplicateEmail(t *testing.T, st store.Store) {
	ctx := context.Background()

	const n = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = st.WithTx(ctx, func(tx store.Tx) error {
				_, err := tx.Users().GetUserByEmail(ctx, "race@x.com")
				switch {
				case err == nil:
					return errEmailSeen
				case !errors.Is(err, store.ErrNotFound):
					return err
				}

				u := NewUser("race@x.com")
				if err := tx.Users().CreateUser(ctx, u); err != nil {
					return err
				}
				return tx.RefreshTokens().CreateRefreshToken(ctx, NewRefreshToken(u.ID, time.Now(), time.Hour))
			})
		}()
	}
	close(start)
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if !errors.Is(err, errEmailSeen) {
			require.ErrorIs(t, err, store.ErrAlreadyExists)
		}
	}
	require.Equal(t, 1, ok)

	winner, err := st.Users().GetUserByEmail(ctx, "race@x.com")
	require.NoError(t, err)
	live, err := st.RefreshTokens().CountUserRefreshTokens(ctx, winner.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, live)
}

func testRefreshTokens(t *testing.T, st store.Store) {
	ctx := context.Background()
	now := time.Now()

	u := NewUser("tokens@x.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	rt := NewRefreshToken(u.ID, now, domain.RefreshTokenLifetime)
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, rt))

	got, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, rt.TokenHash, now)
	require.NoError(t, err)
	require.Equal(t, rt.ID, got.ID)
	require.Equal(t, u.ID, got.UserID)
	require.True(t, rt.ExpiresAt.Equal(got.ExpiresAt))

	dup := rt
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.RefreshTokens().CreateRefreshToken(ctx, dup), store.ErrAlreadyExists)

	second := NewRefreshToken(u.ID, now, domain.RefreshTokenLifetime)
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, second))

	n, err := st.RefreshTokens().CountUserRefreshTokens(ctx, u.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	deleted, err := st.RefreshTokens().DeleteRefreshTokenByHash(ctx, rt.TokenHash)
	require.NoError(t, err)
	require.Equal(t, rt.ID, deleted.ID)
	require.Equal(t, u.ID, deleted.UserID)

	_, err = st.RefreshTokens().DeleteRefreshTokenByHash(ctx, rt.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, rt.TokenHash, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The other record is untouched.
	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, second.TokenHash, now)
	require.NoError(t, err)
}

func testRefreshTokenExpiry(t *testing.T, st store.Store) {
	ctx := context.Background()
	now := time.Now()

	u := NewUser("expiry@x.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	live := NewRefreshToken(u.ID, now, time.Hour)
	stale := NewRefreshToken(u.ID, now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, live))
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, stale))

	// Lazy: an expired record reads as absent before any sweep.
	_, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, stale.TokenHash, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Exactly at expiry the record is gone.
	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, live.TokenHash, live.ExpiresAt)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := st.RefreshTokens().CountUserRefreshTokens(ctx, u.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Eager: the sweep removes it for good.
	purged, err := st.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, err = st.RefreshTokens().DeleteRefreshTokenByHash(ctx, stale.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, live.TokenHash, now)
	require.NoError(t, err)
}

func testRefreshTokenForeignKey(t *testing.T, st store.Store) {
	ctx := context.Background()

	orphan := NewRefreshToken(idx.New().String(), time.Now(), time.Hour)
	err := st.RefreshTokens().CreateRefreshToken(ctx, orphan)
	require.Error(t, err)
	require.False(t, errors.Is(err, store.ErrAlreadyExists))
}

var errAbort = errors.New("abort")

func testTxRollback(t *testing.T, st store.Store) {
	ctx := context.Background()

	u := NewUser("rollback@x.com")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, u))
		require.NoError(t, tx.RefreshTokens().CreateRefreshToken(ctx, NewRefreshToken(u.ID, time.Now(), time.Hour)))

		_, err := tx.Users().GetUserByEmail(ctx, u.Email)
		require.NoError(t, err, "writes are visible inside the tx")
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, err = st.Users().GetUserByEmail(ctx, u.Email)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := st.RefreshTokens().CountUserRefreshTokens(ctx, u.ID, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func testTxCommit(t *testing.T, st store.Store) {
	ctx := context.Background()

	u := NewUser("commit@x.com")
	rt := NewRefreshToken(u.ID, time.Now(), time.Hour)
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, rt)
	}))

	_, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, rt.TokenHash, time.Now())
	require.NoError(t, err)

	// Manual Tx API.
	tx, err := st.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Users().CreateUser(ctx, NewUser("manual@x.com")))
	require.NoError(t, tx.Rollback())

	_, err = st.Users().GetUserByEmail(ctx, "manual@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
