package jwtauth

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cybergodev/jwtauth/internal/core"
	"github.com/cybergodev/jwtauth/internal/signing"
)

// Signer is the signing capability used by Builder and Validator.
// Implementations must be safe for concurrent use.
type Signer interface {
	// Alg is written to the alg header claim.
	Alg() string
	// Encode turns a claim map into a token segment.
	Encode(claims map[string]any) (string, error)
	// Sign returns the encoded signature over header "." payload.
	Sign(headerSegment, payloadSegment, secret string) (string, error)
}

// HS256 is the HMAC-SHA256 signer.
var HS256 Signer = signing.HS256

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithType sets the typ header value.
func WithType(typ string) BuilderOption {
	return func(b *Builder) { b.typ = typ }
}

// WithClaimRules replaces the rules used to check the expiration claim.
func WithClaimRules(rules ClaimRules) BuilderOption {
	return func(b *Builder) {
		if rules != nil {
			b.rules = rules
		}
	}
}

// WithSecretValidator replaces the secret policy.
func WithSecretValidator(v SecretValidator) BuilderOption {
	return func(b *Builder) {
		if v != nil {
			b.secretValidator = v
		}
	}
}

// WithSigner replaces the signing capability.
func WithSigner(s Signer) BuilderOption {
	return func(b *Builder) {
		if s != nil {
			b.signer = s
		}
	}
}

// WithBuilderClock sets the clock used for SetIssuedAtNow and, when the
// default claim rules are in use, for the expiration check.
func WithBuilderClock(clock Clock) BuilderOption {
	return func(b *Builder) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// Builder accumulates header and payload claims and produces a signed Token.
//
// Setters return the Builder so calls chain. A setter that rejects its input
// leaves the claim untouched and records the error; Err reports the first
// such error and Build returns it. A Builder is not safe for concurrent use.
type Builder struct {
	typ             string
	rules           ClaimRules
	secretValidator SecretValidator
	signer          Signer
	clock           Clock

	header  Claims
	payload Claims
	secret  string
	err     error
}

// NewBuilder returns an empty Builder signing with HS256 under
// DefaultSecretPolicy.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		typ:             DefaultType,
		secretValidator: DefaultSecretPolicy,
		signer:          HS256,
		clock:           systemClock,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rules == nil {
		b.rules = DefaultClaimRules{Clock: b.clock}
	}
	b.header = Claims{}
	b.payload = Claims{}
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) setHeader(key string, value any) *Builder {
	if b.err == nil {
		b.header[key] = value
	}
	return b
}

func (b *Builder) setPayload(key string, value any) *Builder {
	if b.err == nil {
		b.payload[key] = value
	}
	return b
}

// Err returns the first error recorded by a setter. Once it is set, every
// later setter is a no-op.
func (b *Builder) Err() error {
	return b.err
}

// SetContentType sets the cty header claim.
func (b *Builder) SetContentType(contentType string) *Builder {
	return b.setHeader(ClaimContentType, contentType)
}

// SetHeaderClaim sets a custom header claim. alg and typ are always
// overwritten by the builder's own values.
func (b *Builder) SetHeaderClaim(key string, value any) *Builder {
	return b.setHeader(key, value)
}

// Header returns a copy of the header that Build will encode.
func (b *Builder) Header() Claims {
	header := b.header.Clone()
	header[ClaimAlgorithm] = b.signer.Alg()
	header[ClaimType] = b.typ
	return header
}

// SetSecret sets the signing secret. A secret rejected by the secret policy
// records ErrWeakSecret.
func (b *Builder) SetSecret(secret string) *Builder {
	if b.err != nil {
		return b
	}
	if !b.secretValidator.Validate(secret) {
		return b.fail(newError(CodeWeakSecret, ErrWeakSecret, ""))
	}
	b.secret = secret
	return b
}

// SetIssuer sets the iss claim.
func (b *Builder) SetIssuer(issuer string) *Builder {
	return b.setPayload(ClaimIssuer, issuer)
}

// SetSubject sets the sub claim.
func (b *Builder) SetSubject(subject string) *Builder {
	return b.setPayload(ClaimSubject, subject)
}

// SetAudience sets the aud claim. audience must be a string, a []string or
// a []any holding only strings; anything else records ErrInvalidAudience.
func (b *Builder) SetAudience(audience any) *Builder {
	if b.err != nil {
		return b
	}
	switch v := audience.(type) {
	case string:
		return b.setPayload(ClaimAudience, v)
	case []string, []any:
		list, ok := core.AsStringSlice(v)
		if !ok {
			return b.fail(newError(CodeInvalidAudience, ErrInvalidAudience, ""))
		}
		return b.setPayload(ClaimAudience, list)
	default:
		return b.fail(newError(CodeInvalidAudience, ErrInvalidAudience,
			"invalid audience claim: unsupported type %T", audience))
	}
}

// SetExpiration sets the exp claim. A timestamp that is not in the future
// records ErrExpiredClaim.
func (b *Builder) SetExpiration(timestamp int64) *Builder {
	if b.err != nil {
		return b
	}
	if !b.rules.Expiration(timestamp) {
		return b.fail(newError(CodeExpiredClaim, ErrExpiredClaim,
			"expiration claim has expired: %d", timestamp))
	}
	return b.setPayload(ClaimExpiration, timestamp)
}

// SetNotBefore sets the nbf claim.
func (b *Builder) SetNotBefore(notBefore int64) *Builder {
	return b.setPayload(ClaimNotBefore, notBefore)
}

// SetIssuedAt sets the iat claim.
func (b *Builder) SetIssuedAt(issuedAt int64) *Builder {
	return b.setPayload(ClaimIssuedAt, issuedAt)
}

// SetIssuedAtNow sets the iat claim from the builder clock.
func (b *Builder) SetIssuedAtNow() *Builder {
	return b.SetIssuedAt(b.clock.unix())
}

// SetJwtID sets the jti claim.
func (b *Builder) SetJwtID(jwtID string) *Builder {
	return b.setPayload(ClaimJwtID, jwtID)
}

// GenerateJwtID sets the jti claim to a random UUID.
func (b *Builder) GenerateJwtID() *Builder {
	return b.SetJwtID(uuid.NewString())
}

// SetPayloadClaim sets a private (or registered) payload claim without any
// checks.
func (b *Builder) SetPayloadClaim(key string, value any) *Builder {
	return b.setPayload(key, value)
}

// Payload returns a copy of the payload claims set so far.
func (b *Builder) Payload() Claims {
	return b.payload.Clone()
}

// Build signs the current header and payload. It fails with the first
// recorded setter error, or with ErrWeakSecret when no valid secret is set.
func (b *Builder) Build() (Token, error) {
	if b.err != nil {
		return Token{}, b.err
	}
	if !b.secretValidator.Validate(b.secret) {
		return Token{}, newError(CodeWeakSecret, ErrWeakSecret, "")
	}

	raw, err := signing.SignedString(b.signer, b.Header(), b.payload, b.secret)
	if err != nil {
		return Token{}, &Error{
			Code:    CodeInvalidPayloadClaim,
			Message: fmt.Sprintf("failed to build token: %v", err),
			Err:     fmt.Errorf("%w: %w", ErrInvalidPayloadClaim, err),
		}
	}

	return NewToken(raw, b.secret), nil
}

// Reset returns a new, empty Builder with the same type, rules, secret
// policy, signer and clock. The receiver is left as it is.
func (b *Builder) Reset() *Builder {
	return &Builder{
		typ:             b.typ,
		rules:           b.rules,
		secretValidator: b.secretValidator,
		signer:          b.signer,
		clock:           b.clock,
		header:          Claims{},
		payload:         Claims{},
	}
}
