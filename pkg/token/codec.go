// Package token issues and verifies the signed session tokens the server
// hands out at login. A token is the sole source of truth for the subject it
// asserts; verification never consults a store.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jobboard/internal/domain"
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// Claims are the statements embedded in a session token.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Use     string `json:"use"`
	jwt.RegisteredClaims
}

// Subject rebuilds the request identity from the claims.
func (c *Claims) Subject() (domain.Subject, error) {
	id, err := uuid.Parse(c.RegisteredClaims.Subject)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("token subject: %w", err)
	}
	return domain.Subject{ID: id, Email: c.Email, IsAdmin: c.IsAdmin}, nil
}

// Codec signs and verifies tokens with a server-held HS256 secret.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewCodec validates the configuration and returns a codec.
func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(secret) < 16 {
		return nil, errors.New("token secret must be at least 16 bytes")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &Codec{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}, nil
}

// WithClock overrides the time source. Test hook.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Issue signs a short-lived access token for s.
func (c *Codec) Issue(s domain.Subject) (string, error) {
	return c.sign(s, useAccess, c.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for s. Refresh tokens carry
// a distinct use claim so an access token cannot be replayed against the
// refresh endpoint.
func (c *Codec) IssueRefresh(s domain.Subject) (string, error) {
	return c.sign(s, useRefresh, c.refreshTTL)
}

func (c *Codec) sign(s domain.Subject, use string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		Email:   s.Email,
		IsAdmin: s.IsAdmin,
		Use:     use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks an access token and returns its claims exactly as issued.
func (c *Codec) Verify(raw string) (*Claims, error) {
	return c.verify(raw, useAccess)
}

// VerifyRefresh checks a refresh token.
func (c *Codec) VerifyRefresh(raw string) (*Claims, error) {
	return c.verify(raw, useRefresh)
}

func (c *Codec) verify(raw, use string) (*Claims, error) {
	if strings.Count(raw, ".") != 2 {
		return nil, domain.ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	parsed, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenSignature
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrTokenSignature, err)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenSignature
	}
	if claims.Use != use {
		return nil, domain.ErrTokenSignature
	}
	return claims, nil
}
