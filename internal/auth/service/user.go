package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
)

type UserService struct {
	Store store.Store
}

// GetProfile fetches the user behind an access token.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound.wrap(err)
		}
		return domain.User{}, err
	}
	return u, nil
}
