package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Both can be overridden through CodecConfig.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims carried by both access and refresh tokens. The two kinds share a
// shape and differ only in the secret and TTL they are minted with.
type Claims struct {
	jwt.RegisteredClaims

	// UserID of the token owner. Mirrors "sub" and is the claim clients of
	// the original API read.
	UserID string `json:"userId"`
}

// NewClaims builds minimally-correct claims for userID.
func NewClaims(userID, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		UserID: userID,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two tokens
// minted for the same user within the same second still differ because of it.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateSubject requires a user id and that "sub" agrees with it.
func (c *Claims) ValidateSubject() error {
	if c.UserID == "" {
		return ErrInvalidClaim
	}
	if c.Subject != "" && c.Subject != c.UserID {
		return ErrInvalidClaim
	}
	return nil
}
