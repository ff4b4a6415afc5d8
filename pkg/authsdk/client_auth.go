package authsdk

import (
	"context"
	"io"
	"net/http"
)

// Signup creates an account. On success the jar holds the refresh cookie.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/signup", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for an access token and a refresh cookie.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh mints a new access token from the refresh cookie in the jar.
func (c *SDKClient) Refresh(ctx context.Context) (*RefreshResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/refresh", nil, nil)
	if err != nil {
		return nil, err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the refresh cookie in the jar. It reports whether the
// server actually deleted a ledger record (200) or had nothing to do (204).
func (c *SDKClient) Logout(ctx context.Context) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	if err != nil {
		return false, err
	}

	if resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return false, nil
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return false, err
	}
	return true, nil
}

// GetProfile fetches the owner's profile with an explicit access token.
func (c *SDKClient) GetProfile(ctx context.Context, accessToken string) (*ProfileResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/user/me", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
