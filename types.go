package jwtauth

import (
	"maps"

	"github.com/cybergodev/jwtauth/internal/core"
)

// Registered claim names (RFC 7519 section 4.1 and RFC 7515 section 4.1).
const (
	ClaimIssuer      = "iss"
	ClaimSubject     = "sub"
	ClaimAudience    = "aud"
	ClaimExpiration  = "exp"
	ClaimNotBefore   = "nbf"
	ClaimIssuedAt    = "iat"
	ClaimJwtID       = "jti"
	ClaimAlgorithm   = "alg"
	ClaimType        = "typ"
	ClaimContentType = "cty"
)

// DefaultType is the typ header value written by builders.
const DefaultType = "JWT"

// Token is a compact JWT string paired with the secret that signed it or
// that should verify it. It performs no validation of its own.
type Token struct {
	raw    string
	secret string
}

// NewToken wraps a raw token string and its secret.
func NewToken(raw, secret string) Token {
	return Token{raw: raw, secret: secret}
}

// Raw returns the compact serialization.
func (t Token) Raw() string {
	return t.raw
}

// Secret returns the secret carried with the token.
func (t Token) Secret() string {
	return t.secret
}

// String returns the compact serialization. The secret is never included.
func (t Token) String() string {
	return t.raw
}

// Claims is a decoded header or payload. Values hold whatever JSON carried:
// string, int64, float64, bool, nil, []any or map[string]any. Numbers that
// are integral decode as int64.
type Claims map[string]any

// String returns the claim as a string, or "" if absent or not a string.
func (c Claims) String(key string) string {
	s, _ := core.String(c, key)
	return s
}

// Int64 returns the claim as an integer, or 0 if absent or not integral.
func (c Claims) Int64(key string) int64 {
	i, _ := core.Int64(c, key)
	return i
}

// StringSlice returns a string or list-of-strings claim as a slice, or nil.
func (c Claims) StringSlice(key string) []string {
	s, _ := core.StringSlice(c, key)
	return s
}

// Has reports whether key is present.
func (c Claims) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Clone returns a shallow copy.
func (c Claims) Clone() Claims {
	if c == nil {
		return Claims{}
	}
	return maps.Clone(c)
}
