package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer turns claims into a signed compact JWT.
type Signer interface {
	Alg() string
	Sign(claims Claims) (string, error)
}

// HS256Signer implements Signer with HMAC SHA-256.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 returns a signer for secret.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty HMAC secret")
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}
