package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes short-lived access tokens from long-lived
// refresh tokens.  Only access tokens authenticate API calls; refresh
// tokens are only exchanged for a new pair.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Default lifetimes.
const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// CodecConfig is the immutable signing configuration.  Changing Secret
// invalidates every token issued under the previous one.
type CodecConfig struct {
	Secret     []byte
	Algorithm  string // HS256, HS384 or HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims is the JWT body.  Subject holds the decimal user id.
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Token is an issued, signed token.
type Token struct {
	Value     string
	Kind      TokenKind
	ExpiresAt time.Time
}

// Payload is what a verified token asserts.
type Payload struct {
	Subject   string
	Kind      TokenKind
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies HMAC-signed JWTs.  It is safe for concurrent
// use; nothing in it changes after construction.
type Codec struct {
	cfg    CodecConfig
	method jwt.SigningMethod
	now    func() time.Time
}

type CodecOption func(*Codec)

// WithClock replaces time.Now.  Tests use it to pin issue and verify times.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec validates cfg and returns a Codec.  Zero TTLs fall back to the
// defaults; an empty algorithm means HS256.
func NewCodec(cfg CodecConfig, opts ...CodecOption) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	// Keep our own copy of the secret so the caller cannot mutate it.
	cfg.Secret = append([]byte(nil), cfg.Secret...)

	c := &Codec{cfg: cfg, method: method, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.cfg.AccessTTL }

// IssueAccess signs a short-lived access token for subject.
func (c *Codec) IssueAccess(subject string) (Token, error) {
	return c.issue(subject, KindAccess, c.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token for subject.
func (c *Codec) IssueRefresh(subject string) (Token, error) {
	return c.issue(subject, KindRefresh, c.cfg.RefreshTTL)
}

func (c *Codec) issue(subject string, kind TokenKind, ttl time.Duration) (Token, error) {
	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.cfg.Secret)
	if err != nil {
		return Token{}, fmt.Errorf("auth: sign %s token: %w", kind, err)
	}
	return Token{Value: signed, Kind: kind, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks the signature, algorithm, structure and expiry of raw.
// A token is valid while now < exp.  Every failure matches ErrInvalidToken
// and additionally one of ErrTokenExpired, ErrTokenSignature or
// ErrTokenMalformed.
func (c *Codec) Verify(raw string) (Payload, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return c.cfg.Secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Payload{}, classify(err)
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenMalformed)
	}

	p := Payload{
		Subject:   claims.Subject,
		Kind:      claims.Kind,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return p, nil
}

// VerifyKind is Verify plus a check that the token is of the wanted kind.
func (c *Codec) VerifyKind(raw string, want TokenKind) (Payload, error) {
	p, err := c.Verify(raw)
	if err != nil {
		return Payload{}, err
	}
	if p.Kind != want {
		return Payload{}, fmt.Errorf("%w: %w: got %s, want %s", ErrInvalidToken, ErrTokenKind, p.Kind, want)
	}
	return p, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenSignature)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenMalformed)
	}
}
