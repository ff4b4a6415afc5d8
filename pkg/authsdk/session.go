package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryBuffer refreshes a little before the access token actually expires.
const expiryBuffer = 30 * time.Second

// Session represents an authenticated session with automatic token refresh.
// The refresh token stays in the client's cookie jar; the Session only
// tracks the current access token.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	user        UserResponse
	accessToken string
	expiresAt   time.Time
}

// newSession creates a new authenticated session from an auth response.
func newSession(client *SDKClient, resp *AuthResponse) *Session {
	return &Session{
		client:      client,
		user:        resp.User,
		accessToken: resp.AccessToken,
		expiresAt:   accessExpiry(resp.AccessToken),
	}
}

// accessExpiry reads "exp" from the token without verifying it. The client
// has no secret; it only needs to know when to refresh.
func accessExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Add(-expiryBuffer)
}

// User returns the user the session belongs to.
func (s *Session) User() UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// AccessToken returns the current access token without checking expiration.
// For most use cases, prefer using the Session methods which handle refresh automatically.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	return s.refresh(ctx, false)
}

// refresh swaps the access token using the refresh cookie. Unless force is
// set, a token another goroutine already refreshed is reused.
func (s *Session) refresh(ctx context.Context, force bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if !force && time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	resp, err := s.client.Refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = resp.AccessToken
	s.expiresAt = accessExpiry(resp.AccessToken)
	return s.accessToken, nil
}

// Refresh forces a new access token.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	return s.refresh(ctx, true)
}

// GetProfile returns the session owner's profile. A 403 from an access token
// that was revoked or expired early triggers one refresh and a retry.
func (s *Session) GetProfile(ctx context.Context) (*ProfileResponse, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.client.GetProfile(ctx, token)
	if StatusCode(err) != http.StatusForbidden {
		return profile, err
	}

	token, err = s.refresh(ctx, true)
	if err != nil {
		return nil, err
	}
	return s.client.GetProfile(ctx, token)
}

// Logout ends the session server-side and forgets the access token.
func (s *Session) Logout(ctx context.Context) error {
	if _, err := s.client.Logout(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return nil
}
