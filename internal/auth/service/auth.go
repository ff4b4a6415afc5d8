package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/idx"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
	"golang.org/x/crypto/bcrypt"
)

// MaxFirstNameLength bounds the stored display name.
const MaxFirstNameLength = 100

// AuthService drives one client session through signup or login, refresh and
// logout.
type AuthService struct {
	Store  store.Store
	Hasher cryptox.Hasher
	Codec  *jwtx.Codec
	Ledger *Ledger
	Now    func() time.Time
}

type SignupInput struct {
	FirstName string
	Email     string
	Password  string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in SignupInput) validate() (SignupInput, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Email = NormalizeEmail(in.Email)

	switch {
	case in.FirstName == "":
		return in, Invalid("First name is required!")
	case len(in.FirstName) > MaxFirstNameLength:
		return in, Invalid("First name is too long!")
	case in.Email == "":
		return in, Invalid("Email is required!")
	case !validEmail(in.Email):
		return in, Invalid("Email is not valid!")
	case in.Password == "":
		return in, Invalid("Password is required!")
	}
	return in, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Signup creates the account and its first session. The duplicate check, the
// user insert and the ledger record commit together or not at all.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.Session, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	// Hash outside the transaction so no connection is held while it runs.
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, Invalid("Password is too long!")
		}
		return nil, fmt.Errorf("service: hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		FirstName:    in.FirstName,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var session *domain.Session
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByEmail(ctx, user.Email)
		switch {
		case err == nil:
			return ErrEmailTaken
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken.wrap(err)
			}
			return err
		}

		session, err = s.startSession(ctx, tx.RefreshTokens(), user)
		return err
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("user signed up", slog.String("user_id", user.ID))
	return session, nil
}

// Login checks the password and starts a new session. Earlier sessions for
// the same user stay valid.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, Invalid("Email and password are required!")
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		slogx.FromContext(ctx).Info("login rejected", slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	session, err := s.startSession(ctx, s.Store.RefreshTokens(), user)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("user logged in", slog.String("user_id", user.ID))
	return session, nil
}

// startSession issues both tokens and records the refresh token on repo.
func (s *AuthService) startSession(
	ctx context.Context,
	repo store.RefreshTokens,
	user domain.User,
) (*domain.Session, error) {
	access, err := s.Codec.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Codec.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	rec, err := s.Ledger.Record(ctx, repo, user.ID, refresh)
	if err != nil {
		return nil, fmt.Errorf("service: record refresh token: %w", err)
	}

	return &domain.Session{
		User:             user,
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: rec.ExpiresAt,
	}, nil
}

// Refresh swaps a recorded refresh token for a new access token. The refresh
// token itself is returned to the caller unchanged and stays valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrMissingRefreshToken
	}

	rec, err := s.Ledger.Lookup(ctx, s.Store.RefreshTokens(), refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}

	claims, err := s.Codec.Verify(refreshToken, jwtx.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("service: verify refresh token: %w", err)
	}

	if claims.UserID != rec.UserID {
		slogx.FromContext(ctx).Warn("refresh token user mismatch",
			slog.String("record_user_id", rec.UserID),
			slog.String("claim_user_id", claims.UserID),
		)
		return "", ErrTokenUserMismatch
	}

	return s.Codec.IssueAccessToken(rec.UserID)
}

// Logout forgets refreshToken and reports whether a record was removed. An
// empty or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	if refreshToken == "" {
		return false, nil
	}

	rec, err := s.Ledger.Revoke(ctx, s.Store.RefreshTokens(), refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	slogx.FromContext(ctx).Info("user logged out", slog.String("user_id", rec.UserID))
	return true, nil
}
