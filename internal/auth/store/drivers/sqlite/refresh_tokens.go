package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
)

type refreshTokensRepo struct {
	q *queries
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	return mapConstraint(r.q.CreateRefreshToken(ctx, refreshTokenRow{
		ID:        t.ID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: toMillis(t.ExpiresAt),
		CreatedAt: toMillis(t.CreatedAt),
	}))
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.RefreshToken, error) {
	row, err := r.q.GetLiveRefreshTokenByHash(ctx, hash, toMillis(now))
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) DeleteRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row, err := r.q.DeleteRefreshTokenByHash(ctx, hash)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredRefreshTokens(ctx, toMillis(now))
}

func (r *refreshTokensRepo) CountUserRefreshTokens(ctx context.Context, userID string, now time.Time) (int64, error) {
	return r.q.CountLiveUserRefreshTokens(ctx, userID, toMillis(now))
}
