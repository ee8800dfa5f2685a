// Package auth provides JWT issuance/verification and password hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// ErrNoSecret is returned when token operations run without a configured
// signing secret.
var ErrNoSecret = errors.New("JWT secret is not configured")

// Claims is the identity carried by a verified token.
type Claims struct {
	UserID string
	Email  string
	Name   string
}

// TokenIssuer mints and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer creates a token issuer. An empty secret is allowed at
// construction; Sign and Verify then fail with ErrNoSecret.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

// Sign mints a token for the given identity.
func (t *TokenIssuer) Sign(claims Claims) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrNoSecret
	}

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(claims.UserID).
		IssuedAt(now).
		Expiration(now.Add(t.expiry)).
		Claim("email", claims.Email).
		Claim("name", claims.Name).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), t.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify parses and validates a token, returning the identity it carries.
func (t *TokenIssuer) Verify(token string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, ErrNoSecret
	}

	tok, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.HS256(), t.secret), jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token: %w", err)
	}

	claims := &Claims{}
	if sub, ok := tok.Subject(); ok {
		claims.UserID = sub
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}
	_ = tok.Get("email", &claims.Email)
	_ = tok.Get("name", &claims.Name)
	return claims, nil
}
