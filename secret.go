package jwtauth

import (
	"github.com/cybergodev/jwtauth/internal/security"
)

// SecretValidator decides whether a secret is strong enough to sign with.
type SecretValidator interface {
	Validate(secret string) bool
}

// SecretValidatorFunc adapts a function to SecretValidator.
type SecretValidatorFunc func(secret string) bool

func (f SecretValidatorFunc) Validate(secret string) bool {
	return f(secret)
}

// DefaultSecretMinLength is the minimum secret length, in bytes, of
// DefaultSecretPolicy.
const DefaultSecretMinLength = 12

// SecretPolicy requires a minimum length and at least one ASCII digit, one
// uppercase and one lowercase letter.
type SecretPolicy struct {
	MinLength int
}

// DefaultSecretPolicy is the policy used when none is configured.
var DefaultSecretPolicy SecretValidator = SecretPolicy{MinLength: DefaultSecretMinLength}

func (p SecretPolicy) Validate(secret string) bool {
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = DefaultSecretMinLength
	}
	if len(secret) < minLength {
		return false
	}

	const required = security.ClassLower | security.ClassUpper | security.ClassDigit
	return security.CharClasses(secret)&required == required
}

// EntropySecretPolicy applies SecretPolicy and additionally rejects secrets
// with obviously low entropy (repeated units, sequential runs, common words).
type EntropySecretPolicy struct {
	SecretPolicy
}

func (p EntropySecretPolicy) Validate(secret string) bool {
	if !p.SecretPolicy.Validate(secret) {
		return false
	}
	return !security.IsWeakKey([]byte(secret))
}
