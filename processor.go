package jwtauth

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/cybergodev/jwtauth/internal/core"
)

// Option configures a Processor.
type Option func(*Processor)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(p *Processor) { p.config = cfg }
}

// WithLogger sets the logger for rejected tokens. The default discards.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the clock shared by builders, validators and parsed views.
func WithClock(clock Clock) Option {
	return func(p *Processor) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithSecretPolicy overrides the secret policy derived from the config.
func WithSecretPolicy(v SecretValidator) Option {
	return func(p *Processor) { p.secretValidator = v }
}

// Processor issues and checks HS256 tokens with one configuration. It holds
// no per-token state and is safe for concurrent use; the Builders, Parsers
// and Validators it hands out are not.
type Processor struct {
	config          Config
	secretValidator SecretValidator
	signer          Signer
	logger          *zap.Logger
	clock           Clock
}

// New creates a Processor. Without options it uses DefaultConfig.
func New(opts ...Option) (*Processor, error) {
	p := newProcessor(opts...)
	if err := p.config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return p, nil
}

func newProcessor(opts ...Option) *Processor {
	p := &Processor{
		config: DefaultConfig(),
		signer: HS256,
		logger: zap.NewNop(),
		clock:  systemClock,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.secretValidator == nil {
		p.secretValidator = p.config.SecretValidator()
	}
	return p
}

// Config returns a copy of the processor configuration.
func (p *Processor) Config() Config {
	cfg := p.config
	cfg.AllowedAlgorithms = slices.Clone(cfg.AllowedAlgorithms)
	return cfg
}

func (p *Processor) rules() ClaimRules {
	return DefaultClaimRules{Clock: p.clock}
}

// Builder returns a new, empty Builder configured like the processor.
func (p *Processor) Builder() *Builder {
	return NewBuilder(
		WithType(p.config.Type),
		WithClaimRules(p.rules()),
		WithSecretValidator(p.secretValidator),
		WithSigner(p.signer),
		WithBuilderClock(p.clock),
	)
}

// Generate builds a token from a flat claim map. exp must be an integer and
// in the future, aud must be a string or list of strings; every other claim
// is copied as is. A key that is the decimal form of an integer fails with
// ErrInvalidPayloadClaim.
func (p *Processor) Generate(payload map[string]any, secret string) (Token, error) {
	b := p.Builder()

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if isIntegerKey(key) {
			return Token{}, newError(CodeInvalidPayloadClaim, ErrInvalidPayloadClaim,
				"invalid payload claim: integer key %q", key)
		}

		value := payload[key]
		switch key {
		case ClaimExpiration:
			exp, ok := core.Int64(payload, key)
			if !ok {
				return Token{}, newError(CodeInvalidPayloadClaim, ErrInvalidPayloadClaim,
					"invalid payload claim: exp must be an integer, got %T", value)
			}
			b.SetExpiration(exp)
		case ClaimAudience:
			b.SetAudience(value)
		default:
			b.SetPayloadClaim(key, value)
		}

		if err := b.Err(); err != nil {
			return Token{}, err
		}
	}

	return b.SetSecret(secret).Build()
}

// Parser returns a Parser for a raw token and secret.
func (p *Processor) Parser(token, secret string) *Parser {
	return NewParser(NewToken(token, secret)).withClock(p.clock)
}

// Validator returns a Validator for a raw token and secret.
func (p *Processor) Validator(token, secret string) *Validator {
	return NewValidator(p.Parser(token, secret), p.signer, p.rules(),
		WithAllowedAlgorithms(p.config.AllowedAlgorithms...),
		WithValidatorLogger(p.logger),
		WithValidatorClock(p.clock),
	)
}

// Validate checks structure, algorithm and signature. Every failure,
// including undecodable segments, yields false.
func (p *Processor) Validate(token, secret string) bool {
	return p.Validator(token, secret).Validate()
}

// GetPayload decodes the payload without validating the token. Decoding
// errors are returned.
func (p *Processor) GetPayload(token, secret string) (Claims, error) {
	parsed, err := p.Parser(token, secret).Parse()
	if err != nil {
		return nil, err
	}
	return parsed.Payload(), nil
}

// Parse validates the token like Validate and returns its parsed view, or
// the first failed check.
func (p *Processor) Parse(token, secret string) (*JWT, error) {
	v := p.Validator(token, secret)
	if !v.Validate() {
		return nil, v.Err()
	}
	return v.parser.Parse()
}

var integerKeyPattern = regexp.MustCompile(`^(0|-?[1-9][0-9]*)$`)

// isIntegerKey reports whether key is the canonical decimal form of an
// int64, the keys that an integer-indexed map would produce.
func isIntegerKey(key string) bool {
	if !integerKeyPattern.MatchString(key) {
		return false
	}
	_, err := strconv.ParseInt(key, 10, 64)
	return err == nil
}
