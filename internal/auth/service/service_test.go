package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store  store.Store
	clock  *fakeClock
	codec  *jwtx.Codec
	ledger *Ledger
	auth   *AuthService
}

func newFixture(t *testing.T, refreshTTL time.Duration) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := newClock()
	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		AccessSecret:  []byte("access-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshSecret: []byte("refresh-secret"),
		RefreshTTL:    refreshTTL,
		Issuer:        "jwtauth-test",
		Now:           clock.Now,
	})
	require.NoError(t, err)

	ledger := &Ledger{Now: clock.Now}
	return &fixture{
		store:  st,
		clock:  clock,
		codec:  codec,
		ledger: ledger,
		auth: &AuthService{
			Store:  st,
			Hasher: &cryptox.Argon2Hasher{Pepper: "test-pepper"},
			Codec:  codec,
			Ledger: ledger,
			Now:    clock.Now,
		},
	}
}

func (f *fixture) signup(t *testing.T, email string) SignupInput {
	t.Helper()
	in := SignupInput{FirstName: "Ada", Email: email, Password: "correct horse"}
	_, err := f.auth.Signup(context.Background(), in)
	require.NoError(t, err)
	return in
}

func (f *fixture) liveTokens(t *testing.T, userID string) int64 {
	t.Helper()
	n, err := f.store.RefreshTokens().CountUserRefreshTokens(context.Background(), userID, f.clock.Now())
	require.NoError(t, err)
	return n
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7*24*time.Hour)

	session, err := f.auth.Signup(ctx, SignupInput{
		FirstName: "  Ada ",
		Email:     "  Ada@Example.COM ",
		Password:  "correct horse",
	})
	require.NoError(t, err)

	require.Equal(t, "Ada", session.User.FirstName)
	require.Equal(t, "ada@example.com", session.User.Email)
	require.NotEqual(t, "correct horse", session.User.PasswordHash)
	require.NotEqual(t, session.AccessToken, session.RefreshToken)
	require.Equal(t, f.clock.Now().Add(7*24*time.Hour), session.RefreshExpiresAt)

	claims, err := f.codec.Verify(session.AccessToken, jwtx.AccessToken)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, claims.UserID)

	stored, err := f.store.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, session.User.ID, stored.ID)
	require.True(t, f.auth.Hasher.Verify("correct horse", stored.PasswordHash))

	require.EqualValues(t, 1, f.liveTokens(t, session.User.ID))
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7*24*time.Hour)
	f.signup(t, "dup@example.com")

	_, err := f.auth.Signup(ctx, SignupInput{FirstName: "Bob", Email: "DUP@example.com", Password: "pw"})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 7*24*time.Hour)

	tests := []struct {
		name string
		in   SignupInput
	}{
		{"missing first name", SignupInput{FirstName: " ", Email: "a@b.co", Password: "pw"}},
		{"missing email", SignupInput{FirstName: "A", Email: "", Password: "pw"}},
		{"malformed email", SignupInput{FirstName: "A", Email: "not-an-email", Password: "pw"}},
		{"display name form", SignupInput{FirstName: "A", Email: "Ada <a@b.co>", Password: "pw"}},
		{"missing password", SignupInput{FirstName: "A", Email: "a@b.co", Password: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Signup(context.Background(), tt.in)
			require.Error(t, err)
			require.Equal(t, KindValidation, KindOf(err))
		})
	}
}

var errLedgerDown = errors.New("ledger down")

// failingLedgerStore hands out transactions whose refresh token writes fail.
type failingLedgerStore struct{ store.Store }

func (s failingLedgerStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error { return fn(failingLedgerTx{tx}) })
}

// baseTx names the embedded field so it does not shadow the Tx method.
type baseTx = store.Tx

type failingLedgerTx struct{ baseTx }

func (t failingLedgerTx) RefreshTokens() store.RefreshTokens {
	return failingRefreshTokens{t.baseTx.RefreshTokens()}
}

type failingRefreshTokens struct{ store.RefreshTokens }

func (failingRefreshTokens) CreateRefreshToken(context.Context, domain.RefreshToken) error {
	return errLedgerDown
}

func TestSignupRollsBackWhenLedgerWriteFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7*24*time.Hour)
	f.auth.Store = failingLedgerStore{f.store}

	_, err := f.auth.Signup(ctx, SignupInput{FirstName: "Ada", Email: "ada@example.com", Password: "pw"})
	require.ErrorIs(t, err, errLedgerDown)
	require.Equal(t, KindInternal, KindOf(err))

	_, err = f.store.Users().GetUserByEmail(ctx, "ada@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The address is still free once the ledger recovers.
	f.auth.Store = f.store
	_, err = f.auth.Signup(ctx, SignupInput{FirstName: "Ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
}

// racingSignupStore hands out transactions that cannot see existing users, so
// a duplicate signup only fails on the email uniqueness constraint.
type racingSignupStore struct{ store.Store }

func (s racingSignupStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error { return fn(racingSignupTx{tx}) })
}

type racingSignupTx struct{ baseTx }

func (t racingSignupTx) Users() store.Users {
	return blindUsers{t.baseTx.Users()}
}

type blindUsers struct{ store.Users }

func (blindUsers) GetUserByEmail(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}

func TestSignupDuplicateCaughtByConstraint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7*24*time.Hour)
	in := f.signup(t, "ada@example.com")

	existing, err := f.store.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)

	f.auth.Store = racingSignupStore{f.store}
	session, err := f.auth.Signup(ctx, in)
	require.Nil(t, session)
	require.ErrorIs(t, err, ErrEmailTaken)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	require.Equal(t, KindValidation, KindOf(err))

	// The first account and its single session are untouched.
	got, err := f.store.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, existing.ID, got.ID)
	require.EqualValues(t, 1, f.liveTokens(t, existing.ID))
}

func TestConcurrentSignupSameEmail(t *testing.T) {
	f := newFixture(t, 7*24*time.Hour)

	const n = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.auth.Signup(context.Background(), SignupInput{
				FirstName: "Racer",
				Email:     "race@example.com",
				Password:  "pw",
			})
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrEmailTaken)
	}
	require.Equal(t, 1, ok)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7*24*time.Hour)
	in := f.signup(t, "ada@example.com")

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "nobody@example.com", "pw")
		require.ErrorIs(t, err, ErrUserNotFound)
		require.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, in.Email, "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Equal(t, KindAuthentication, KindOf(err))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "", "")
		require.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("each login adds a session", func(t *testing.T) {
		first, err := f.auth.Login(ctx, " ADA@example.com", in.Password)
		require.NoError(t, err)
		second, err := f.auth.Login(ctx, in.Email, in.Password)
		require.NoError(t, err)

		require.Equal(t, first.User.ID, second.User.ID)
		require.NotEqual(t, first.RefreshToken, second.RefreshToken)
		require.EqualValues(t, 3, f.liveTokens(t, first.User.ID))
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t, 7*24*time.Hour)
		_, err := f.auth.Refresh(ctx, "")
		require.ErrorIs(t, err, ErrMissingRefreshToken)
		require.Equal(t, KindAuthentication, KindOf(err))
	})

	t.Run("reusable until logout", func(t *testing.T) {
		f := newFixture(t, 7*24*time.Hour)
		in := f.signup(t, "ada@example.com")
		session, err := f.auth.Login(ctx, in.Email, in.Password)
		require.NoError(t, err)

		for range 2 {
			f.clock.Advance(time.Minute)
			access, err := f.auth.Refresh(ctx, session.RefreshToken)
			require.NoError(t, err)

			claims, err := f.codec.Verify(access, jwtx.AccessToken)
			require.NoError(t, err)
			require.Equal(t, session.User.ID, claims.UserID)
		}

		removed, err := f.auth.Logout(ctx, session.RefreshToken)
		require.NoError(t, err)
		require.True(t, removed)

		_, err = f.auth.Refresh(ctx, session.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("unrecorded token", func(t *testing.T) {
		f := newFixture(t, 7*24*time.Hour)
		token, err := f.codec.IssueRefreshToken("01JNDPPZ7XGE6S2GZK8FZ4A6TQ")
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, token)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
		require.Equal(t, KindAuthorization, KindOf(err))
	})

	t.Run("ledger record expired", func(t *testing.T) {
		// Token outlives its record so only the ledger can reject it.
		f := newFixture(t, 30*24*time.Hour)
		in := f.signup(t, "ada@example.com")
		session, err := f.auth.Login(ctx, in.Email, in.Password)
		require.NoError(t, err)

		f.clock.Advance(7*24*time.Hour + time.Second)
		_, err = f.auth.Refresh(ctx, session.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("token expired before its record", func(t *testing.T) {
		f := newFixture(t, time.Hour)
		in := f.signup(t, "ada@example.com")
		session, err := f.auth.Login(ctx, in.Email, in.Password)
		require.NoError(t, err)

		f.clock.Advance(2 * time.Hour)
		_, err = f.auth.Refresh(ctx, session.RefreshToken)
		require.ErrorIs(t, err, jwtx.ErrExpired)
		require.Equal(t, KindAuthorization, KindOf(err))
	})

	t.Run("recorded token signed with the wrong secret", func(t *testing.T) {
		f := newFixture(t, 7*24*time.Hour)
		in := f.signup(t, "ada@example.com")
		session, err := f.auth.Login(ctx, in.Email, in.Password)
		require.NoError(t, err)

		_, err = f.ledger.Record(ctx, f.store.RefreshTokens(), session.User.ID, session.AccessToken)
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, session.AccessToken)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
		require.Equal(t, KindAuthorization, KindOf(err))
	})

	t.Run("claim does not match record owner", func(t *testing.T) {
		f := newFixture(t, 7*24*time.Hour)
		ada, err := f.auth.Signup(ctx, SignupInput{FirstName: "Ada", Email: "ada@example.com", Password: "pw"})
		require.NoError(t, err)
		bob, err := f.auth.Signup(ctx, SignupInput{FirstName: "Bob", Email: "bob@example.com", Password: "pw"})
		require.NoError(t, err)

		forged, err := f.codec.IssueRefreshToken(bob.User.ID)
		require.NoError(t, err)
		_, err = f.ledger.Record(ctx, f.store.RefreshTokens(), ada.User.ID, forged)
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, forged)
		require.ErrorIs(t, err, ErrTokenUserMismatch)
		require.Equal(t, KindAuthorization, KindOf(err))
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7*24*time.Hour)
	in := f.signup(t, "ada@example.com")
	session, err := f.auth.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)

	removed, err := f.auth.Logout(ctx, "")
	require.NoError(t, err)
	require.False(t, removed)

	removed, err = f.auth.Logout(ctx, "not-a-token")
	require.NoError(t, err)
	require.False(t, removed)

	removed, err = f.auth.Logout(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = f.auth.Logout(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.False(t, removed)

	// The signup session is untouched.
	require.EqualValues(t, 1, f.liveTokens(t, session.User.ID))
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7*24*time.Hour)
	users := &UserService{Store: f.store}

	session, err := f.auth.Signup(ctx, SignupInput{FirstName: "Ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	u, err := users.GetProfile(ctx, session.User.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)

	_, err = users.GetProfile(ctx, "01JNDPPZ7XGE6S2GZK8FZ4A6TQ")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, KindNotFound, KindOf(err))
}
