package domain

import "time"

// RefreshTokenLifetime is the server-side lifetime of a ledger record. It is
// fixed and independent of the refresh token's own "exp" claim; a refresh
// needs both to hold.
const RefreshTokenLifetime = 7 * 24 * time.Hour

// RefreshToken models the stored refresh token record in the DB. Only the
// fingerprint of the token is kept.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Session is what signup and login hand back: the user, a short-lived access
// token for the response body and a refresh token for the cookie.
type Session struct {
	User             User
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}
