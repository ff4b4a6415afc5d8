/*
Package authsdk provides a client SDK for the JWT session auth service.

# Overview

The service hands out two credentials: a short-lived access token in the
response body, and a long-lived refresh token in an HTTP-only "jwt" cookie.
SDKClient keeps that cookie in a cookie jar, so refresh and logout behave the
way they would in a browser.

	client := authsdk.NewSDKClient("http://localhost:8080")

	// Create an account (the jar now holds the refresh cookie)
	signup, err := client.Signup(ctx, authsdk.SignupRequest{
		FirstName: "Ada",
		Email:     "ada@x.com",
		Password:  "pw123",
	})

	// Mint a new access token from the cookie
	refreshed, err := client.Refresh(ctx)

	// Revoke the cookie server-side
	deleted, err := client.Logout(ctx)

# Sessions

Session wraps an access token and refreshes it before it expires, reading
the "exp" claim without verifying the signature:

	session, err := client.AuthenticateWithPassword(ctx, "ada@x.com", "pw123")
	profile, err := session.GetProfile(ctx)
	err = session.Logout(ctx)

Sessions are safe for concurrent use.

# Error Handling

Every non-2xx response is returned as *APIError carrying the status code and
the server's message:

	_, err := client.Login(ctx, authsdk.LoginRequest{Email: "ada@x.com", Password: "nope"})
	if authsdk.StatusCode(err) == http.StatusUnauthorized {
		// wrong password
	}
*/
package authsdk
