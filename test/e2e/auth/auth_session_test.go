package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestSessionFlow walks one account through signup, profile, refresh, logout
// and login again.
func TestSessionFlow(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t, nil)
	defer cleanup()

	ctx := t.Context()
	client := authsdk.NewSDKClient(baseURL)
	session := signup(t, client, "flow@example.com")

	profile, err := session.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "flow@example.com", profile.User.Email)
	require.Equal(t, session.User().ID, profile.User.ID)

	before := session.AccessToken()
	after, err := session.Refresh(ctx)
	require.NoError(t, err)
	require.NotEqual(t, before, after)

	require.NoError(t, session.Logout(ctx))
	require.Empty(t, client.RefreshCookie())

	_, err = client.Refresh(ctx)
	assertStatus(t, err, http.StatusUnauthorized, "refresh without cookie")

	session, err = client.AuthenticateWithPassword(ctx, "flow@example.com", testPassword)
	require.NoError(t, err)
	_, err = session.GetProfile(ctx)
	require.NoError(t, err)
}

// TestLoginErrors checks the status codes for bad credentials.
func TestLoginErrors(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t, nil)
	defer cleanup()

	ctx := t.Context()
	client := authsdk.NewSDKClient(baseURL)
	signup(t, client, "errors@example.com")

	_, err := client.Signup(ctx, authsdk.SignupRequest{FirstName: "Dup", Email: "errors@example.com", Password: "x"})
	assertStatus(t, err, http.StatusBadRequest, "duplicate signup")

	_, err = client.Login(ctx, authsdk.LoginRequest{Email: "missing@example.com", Password: testPassword})
	assertStatus(t, err, http.StatusNotFound, "unknown email")

	_, err = client.Login(ctx, authsdk.LoginRequest{Email: "errors@example.com", Password: "wrong"})
	assertStatus(t, err, http.StatusUnauthorized, "wrong password")
}

// TestRevokedRefreshToken checks that a copied refresh token stops working
// once its owner logs out.
func TestRevokedRefreshToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t, nil)
	defer cleanup()

	ctx := t.Context()
	victim := authsdk.NewSDKClient(baseURL)
	signup(t, victim, "victim@example.com")

	attacker := authsdk.NewSDKClient(baseURL)
	require.NoError(t, attacker.SetRefreshCookie(victim.RefreshCookie()))

	_, err := attacker.Refresh(ctx)
	require.NoError(t, err, "the copied token works while the session is live")

	removed, err := victim.Logout(ctx)
	require.NoError(t, err)
	require.True(t, removed)

	_, err = attacker.Refresh(ctx)
	assertStatus(t, err, http.StatusForbidden, "refresh with revoked token")
}

// TestProfileRequiresAccessToken checks the bearer gate.
func TestProfileRequiresAccessToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t, nil)
	defer cleanup()

	ctx := t.Context()
	client := authsdk.NewSDKClient(baseURL)
	signup(t, client, "gate@example.com")

	_, err := client.GetProfile(ctx, "")
	assertStatus(t, err, http.StatusUnauthorized, "no token")

	_, err = client.GetProfile(ctx, client.RefreshCookie())
	assertStatus(t, err, http.StatusForbidden, "refresh token used as access token")
}
