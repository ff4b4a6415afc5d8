package cryptox

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns plaintext passwords into one-way digests and checks them.
// Verify never errors: a mismatch or an unreadable digest is just false.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// NewHasher returns the hasher for the named algorithm. The pepper only
// applies to argon2id digests.
func NewHasher(algorithm, pepper string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmArgon2id:
		return &Argon2Hasher{Pepper: pepper}, nil
	case AlgorithmBcrypt:
		return &BcryptHasher{Cost: DefaultBcryptCost}, nil
	default:
		return nil, fmt.Errorf("cryptox: unsupported password hasher %q", algorithm)
	}
}

// Argon2Hasher hashes with peppered Argon2id. It still accepts bcrypt digests
// so accounts carried over from a bcrypt user table keep working.
type Argon2Hasher struct {
	Pepper string
}

func (h *Argon2Hasher) Hash(plain string) (string, error) {
	return HashPassword(plain, h.Pepper)
}

func (h *Argon2Hasher) Verify(plain, digest string) bool {
	if isBcrypt(digest) {
		return verifyBcrypt(plain, digest) == nil
	}
	return VerifyPassword(plain, h.Pepper, digest) == nil
}

// BcryptHasher produces $2a$ digests at the configured cost.
type BcryptHasher struct {
	Cost int
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	// Passwords over 72 bytes come back as bcrypt.ErrPasswordTooLong.
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(plain, digest string) bool {
	return verifyBcrypt(plain, digest) == nil
}
