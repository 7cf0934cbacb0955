package jwtauth

import (
	"slices"

	"github.com/cybergodev/jwtauth/internal/core"
	"github.com/cybergodev/jwtauth/internal/security"
)

// ClaimRules are the primitive checks the Builder and Validator are built
// from. Replace them to change what counts as well-formed, expired, matching
// or allowed.
type ClaimRules interface {
	// Structure reports whether raw is three base64url groups joined by dots.
	Structure(raw string) bool
	// Expiration reports whether exp is still in the future.
	Expiration(exp int64) bool
	// Signature reports whether a freshly generated signature matches the
	// one embedded in the token.
	Signature(generated, embedded string) bool
	// Algorithm reports whether alg is one of allowed.
	Algorithm(alg string, allowed []string) bool
}

// DefaultClaimRules evaluates ClaimRules against Clock (system time when nil).
type DefaultClaimRules struct {
	Clock Clock
}

func (r DefaultClaimRules) Structure(raw string) bool {
	return core.MatchesStructure(raw)
}

// Expiration is false when exp equals the current second.
func (r DefaultClaimRules) Expiration(exp int64) bool {
	return exp > r.Clock.unix()
}

func (r DefaultClaimRules) Signature(generated, embedded string) bool {
	return security.SecureCompareString(generated, embedded)
}

func (r DefaultClaimRules) Algorithm(alg string, allowed []string) bool {
	return slices.Contains(allowed, alg)
}
