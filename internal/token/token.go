// Package token mints and verifies signed session tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/healthsync/backend/internal/clock"
	"github.com/healthsync/backend/internal/config"
)

var (
	// ErrNotConfigured means the signing secret is absent from the
	// environment. Routes depending on session tokens must fail closed.
	ErrNotConfigured = errors.New("session token secret not configured")

	// ErrInvalidToken covers malformed, forged and expired tokens alike.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrEmptySubject means the subject carries no stable identifier.
	ErrEmptySubject = errors.New("subject requires a user id or email")
)

// Subject is the identity a session token attests to.
type Subject struct {
	UserID string
	Email  string
	Role   string
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 session tokens. Both operations are pure
// computation; the secret is read once at construction.
type Codec struct {
	secret []byte
	ttl    time.Duration
	clk    clock.Clock
}

// NewCodec builds a Codec from configuration. A missing secret is not an
// error here: it surfaces as ErrNotConfigured per operation so the process
// can still serve routes that do not need session tokens.
func NewCodec(cfg config.Config, clk clock.Clock) *Codec {
	var secret []byte
	if cfg.AuthJWTSecret != "" {
		secret = []byte(cfg.AuthJWTSecret)
	}
	ttl := cfg.AuthTokenTTL
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &Codec{secret: secret, ttl: ttl, clk: clk}
}

// Issue mints a signed token for the subject and returns it with its expiry.
func (c *Codec) Issue(sub Subject) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, ErrNotConfigured
	}
	if sub.UserID == "" && sub.Email == "" {
		return "", time.Time{}, ErrEmptySubject
	}

	now := c.clk.Now()
	expiresAt := now.Add(c.ttl)
	claims := sessionClaims{
		Email: sub.Email,
		Role:  sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the embedded subject.
// It never consults storage; a valid token proves identity on its own.
func (c *Codec) Verify(raw string) (*Subject, error) {
	if len(c.secret) == 0 {
		return nil, ErrNotConfigured
	}

	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clk.Now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &Subject{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// TTL reports the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
