package jwtauth

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

// DefaultAllowedAlgorithms is the alg allow-list used when none is given.
var DefaultAllowedAlgorithms = []string{"HS256"}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithAllowedAlgorithms replaces the alg allow-list checked by
// AlgorithmNotNone.
func WithAllowedAlgorithms(algs ...string) ValidatorOption {
	return func(v *Validator) {
		if len(algs) > 0 {
			v.allowed = slices.Clone(algs)
		}
	}
}

// WithValidatorLogger logs each failed check at debug level.
func WithValidatorLogger(logger *zap.Logger) ValidatorOption {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithValidatorClock sets the clock used by the NotBefore check.
func WithValidatorClock(clock Clock) ValidatorOption {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// Validator runs checks against a parsed token. Every check returns the
// Validator so checks chain left to right; the first failure is kept and
// every later check is skipped. Inspect the outcome with Err or Valid.
type Validator struct {
	parser  *Parser
	signer  Signer
	rules   ClaimRules
	allowed []string
	logger  *zap.Logger
	clock   Clock
	err     error
}

// NewValidator returns a Validator for the token held by parser. Nil signer
// or rules fall back to HS256 and DefaultClaimRules.
func NewValidator(parser *Parser, signer Signer, rules ClaimRules, opts ...ValidatorOption) *Validator {
	v := &Validator{
		parser:  parser,
		signer:  signer,
		rules:   rules,
		allowed: DefaultAllowedAlgorithms,
		logger:  zap.NewNop(),
		clock:   systemClock,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.signer == nil {
		v.signer = HS256
	}
	if v.rules == nil {
		v.rules = DefaultClaimRules{Clock: v.clock}
	}
	return v
}

// Err returns the first failed check, or nil.
func (v *Validator) Err() error {
	return v.err
}

// Valid reports whether every check run so far passed.
func (v *Validator) Valid() bool {
	return v.err == nil
}

// Validate runs Structure, AlgorithmNotNone and Signature and reports
// whether all of them passed. Use Err for the reason.
func (v *Validator) Validate() bool {
	return v.Structure().AlgorithmNotNone().Signature().Valid()
}

func (v *Validator) fail(check string, err error) *Validator {
	v.err = err
	v.logger.Debug("token check failed",
		zap.String("check", check),
		zap.Int("code", ErrorCode(err)),
		zap.Error(err),
	)
	return v
}

// Structure checks that the token is three base64url groups joined by
// dots. Fails with ErrStructure.
func (v *Validator) Structure() *Validator {
	if v.err != nil {
		return v
	}
	if !v.rules.Structure(v.parser.Token().Raw()) {
		return v.fail("structure", newError(CodeStructure, ErrStructure, ""))
	}
	return v
}

// AlgorithmNotNone rejects an alg header of "none" (code 14) and any alg
// outside the allow-list (code 12), both with ErrAlgorithm.
func (v *Validator) AlgorithmNotNone() *Validator {
	if v.err != nil {
		return v
	}
	alg, err := v.parser.Algorithm()
	if err != nil {
		return v.fail("algorithm", err)
	}
	if strings.EqualFold(alg, "none") {
		return v.fail("algorithm", newError(CodeAlgorithmNone, ErrAlgorithm,
			"algorithm claim should not be none"))
	}
	if !v.rules.Algorithm(alg, v.allowed) {
		return v.fail("algorithm", newError(CodeAlgorithmNotAllowed, ErrAlgorithm,
			"algorithm %q is not allowed", alg))
	}
	return v
}

// Algorithm checks the alg header against allowed. Fails with ErrAlgorithm.
func (v *Validator) Algorithm(allowed []string) *Validator {
	if v.err != nil {
		return v
	}
	alg, err := v.parser.Algorithm()
	if err != nil {
		return v.fail("algorithm", err)
	}
	if !v.rules.Algorithm(alg, allowed) {
		return v.fail("algorithm", newError(CodeAlgorithmNotAllowed, ErrAlgorithm,
			"algorithm %q is not allowed", alg))
	}
	return v
}

// Signature recomputes the signature over the token's own header and
// payload segments with the token's secret and compares it, in constant
// time, with the embedded one. Fails with ErrSignature.
func (v *Validator) Signature() *Validator {
	if v.err != nil {
		return v
	}
	generated, err := v.signer.Sign(v.parser.HeaderSegment(), v.parser.PayloadSegment(), v.parser.Token().Secret())
	if err != nil {
		return v.fail("signature", newError(CodeSignature, ErrSignature, "failed to sign: %v", err))
	}
	if !v.rules.Signature(generated, v.parser.Signature()) {
		return v.fail("signature", newError(CodeSignature, ErrSignature, ""))
	}
	return v
}

// Expiration checks that exp is present and in the future. Fails with
// ErrMissingClaim or ErrExpiredClaim.
func (v *Validator) Expiration() *Validator {
	if v.err != nil {
		return v
	}
	exp, err := v.parser.Expiration()
	if err != nil {
		return v.fail("expiration", err)
	}
	if !v.rules.Expiration(exp) {
		return v.fail("expiration", newError(CodeExpiredClaim, ErrExpiredClaim, ""))
	}
	return v
}

// NotBefore checks that nbf is present and not in the future. Fails with
// ErrMissingClaim or ErrNotBefore.
func (v *Validator) NotBefore() *Validator {
	if v.err != nil {
		return v
	}
	nbf, err := v.parser.NotBefore()
	if err != nil {
		return v.fail("not_before", err)
	}
	if nbf > v.clock.unix() {
		return v.fail("not_before", newError(CodeNotBefore, ErrNotBefore, ""))
	}
	return v
}

// Audience checks that aud is present and contains check. Fails with
// ErrMissingClaim, ErrInvalidAudience or ErrAudience.
func (v *Validator) Audience(check string) *Validator {
	if v.err != nil {
		return v
	}
	audience, err := v.parser.Audience()
	if err != nil {
		return v.fail("audience", err)
	}
	if !slices.Contains(audience, check) {
		return v.fail("audience", newError(CodeAudience, ErrAudience,
			"audience claim does not contain %q", check))
	}
	return v
}
