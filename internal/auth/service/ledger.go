package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/idx"
)

// Ledger records which refresh tokens are still honoured. Only the SHA-256
// fingerprint of a token is stored. Every method takes the repository to use
// so callers can run it on the root store or inside a transaction.
type Ledger struct {
	Now func() time.Time
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

// Record stores token for userID. The record lives for
// domain.RefreshTokenLifetime from now, whatever the token's own expiry.
func (l *Ledger) Record(
	ctx context.Context,
	repo store.RefreshTokens,
	userID, token string,
) (domain.RefreshToken, error) {
	now := l.now()
	rec := domain.RefreshToken{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(domain.RefreshTokenLifetime),
		CreatedAt: now,
	}
	if err := repo.CreateRefreshToken(ctx, rec); err != nil {
		return domain.RefreshToken{}, err
	}
	return rec, nil
}

// Lookup returns the live record for token. Unknown and expired tokens are
// both store.ErrNotFound.
func (l *Ledger) Lookup(ctx context.Context, repo store.RefreshTokens, token string) (domain.RefreshToken, error) {
	now := l.now()
	rec, err := repo.GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(token), now)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	if rec.Expired(now) {
		return domain.RefreshToken{}, store.ErrNotFound
	}
	return rec, nil
}

// Revoke deletes the record for token and returns it.
func (l *Ledger) Revoke(ctx context.Context, repo store.RefreshTokens, token string) (domain.RefreshToken, error) {
	return repo.DeleteRefreshTokenByHash(ctx, cryptox.FingerprintToken(token))
}

// Sweep purges expired records and reports how many were removed.
func (l *Ledger) Sweep(ctx context.Context, repo store.RefreshTokens) (int64, error) {
	return repo.DeleteExpiredRefreshTokens(ctx, l.now())
}
