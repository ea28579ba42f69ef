// Package auth implements the Token Authenticator: a static
// API key catalog gates token issuance, and short-lived HS256 bearer tokens
// carry the authenticated subject for every tool-facing operation.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is always "access".
const TokenType = "access"

// DefaultLifetime and MobileLifetime set the issue() lifetime policy:
// 1 hour by default, 24 hours for a mobile client hint.
const (
	DefaultLifetime = 1 * time.Hour
	MobileLifetime  = 24 * time.Hour
)

// Claims is the signed payload: {sub, iat, exp, type=access}.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// jwtCodec signs and parses Claims with a single shared HS256 secret.
type jwtCodec struct {
	secret []byte
}

func newJWTCodec(secret string) *jwtCodec {
	return &jwtCodec{secret: []byte(secret)}
}

func (c *jwtCodec) sign(subject string, issuedAt time.Time, lifetime time.Duration) (string, error) {
	claims := Claims{
		Type: TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// parse validates signature and structure only; expiry is checked
// separately by the caller so expired vs malformed can be distinguished
// fails `expired` or `invalid` with distinct kinds).
func (c *jwtCodec) parse(raw string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || strings.TrimSpace(claims.Subject) == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
