package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// TokenKind selects which secret and TTL the Codec uses.
type TokenKind int

const (
	AccessToken TokenKind = iota + 1
	RefreshToken
)

func (k TokenKind) String() string {
	switch k {
	case AccessToken:
		return "access"
	case RefreshToken:
		return "refresh"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// CodecConfig is the immutable configuration a Codec is built from.
type CodecConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration

	// Issuer is written into and required on every token. Empty disables it.
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Codec issues and verifies the two token kinds. Each kind has its own
// secret, so a token of one kind never verifies as the other.
type Codec struct {
	issuer string
	now    func() time.Time

	accessTTL  time.Duration
	refreshTTL time.Duration

	accessSigner  Signer
	refreshSigner Signer

	accessVerifier  *HS256Verifier
	refreshVerifier *HS256Verifier
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwtx: access and refresh secrets are required")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("jwtx: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwtx: token TTLs must be positive")
	}
	if cfg.Leeway < 0 {
		return nil, errors.New("jwtx: leeway must not be negative")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// Copy the secrets so later changes to the caller's slices can't leak in.
	access := bytes.Clone(cfg.AccessSecret)
	refresh := bytes.Clone(cfg.RefreshSecret)

	accessSigner, err := NewSignerHS256(access)
	if err != nil {
		return nil, err
	}
	refreshSigner, err := NewSignerHS256(refresh)
	if err != nil {
		return nil, err
	}

	return &Codec{
		issuer:          cfg.Issuer,
		now:             now,
		accessTTL:       cfg.AccessTTL,
		refreshTTL:      cfg.RefreshTTL,
		accessSigner:    accessSigner,
		refreshSigner:   refreshSigner,
		accessVerifier:  NewVerifierHS256(access, cfg.Issuer, cfg.Leeway, now),
		refreshVerifier: NewVerifierHS256(refresh, cfg.Issuer, cfg.Leeway, now),
	}, nil
}

// IssueAccessToken mints a short-lived token for userID.
func (c *Codec) IssueAccessToken(userID string) (string, error) {
	token, _, err := c.Issue(AccessToken, userID)
	return token, err
}

// IssueRefreshToken mints a long-lived token for userID.
func (c *Codec) IssueRefreshToken(userID string) (string, error) {
	token, _, err := c.Issue(RefreshToken, userID)
	return token, err
}

// Issue mints a token of the given kind and returns it with its claims.
func (c *Codec) Issue(kind TokenKind, userID string) (string, Claims, error) {
	if userID == "" {
		return "", Claims{}, errors.New("jwtx: user id is required")
	}

	var (
		signer Signer
		ttl    time.Duration
	)
	switch kind {
	case AccessToken:
		signer, ttl = c.accessSigner, c.accessTTL
	case RefreshToken:
		signer, ttl = c.refreshSigner, c.refreshTTL
	default:
		return "", Claims{}, fmt.Errorf("jwtx: unknown token kind %s", kind)
	}

	claims := NewClaims(userID, c.issuer, ttl, c.now().UTC())
	token, err := signer.Sign(claims)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign %s token: %w", kind, err)
	}
	return token, claims, nil
}

// Verify checks token against the secret for kind.
func (c *Codec) Verify(token string, kind TokenKind) (Claims, error) {
	switch kind {
	case AccessToken:
		return c.accessVerifier.Verify(token)
	case RefreshToken:
		return c.refreshVerifier.Verify(token)
	default:
		return Claims{}, fmt.Errorf("jwtx: unknown token kind %s", kind)
	}
}

// Access returns a Verifier bound to the access secret.
func (c *Codec) Access() Verifier { return c.accessVerifier }

// Refresh returns a Verifier bound to the refresh secret.
func (c *Codec) Refresh() Verifier { return c.refreshVerifier }

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }
