package jwtauth

import (
	"github.com/cybergodev/jwtauth/internal/core"
)

// Parser splits a Token into its segments and decodes header and payload.
//
// Parser performs no structural validation: a token with fewer than three
// segments is read as if the missing ones were empty, so claim accessors
// report ErrMissingClaim rather than a structure error. Use a Validator to
// reject malformed tokens.
type Parser struct {
	token    Token
	segments [core.SegmentCount]string
	clock    Clock
}

// NewParser returns a Parser over token.
func NewParser(token Token) *Parser {
	return &Parser{
		token:    token,
		segments: core.SplitSegments(token.Raw()),
		clock:    systemClock,
	}
}

// withClock sets the clock handed to parsed views.
func (p *Parser) withClock(clock Clock) *Parser {
	if clock != nil {
		p.clock = clock
	}
	return p
}

// Token returns the token being parsed.
func (p *Parser) Token() Token {
	return p.token
}

// Segments returns header, payload and signature segments.
func (p *Parser) Segments() [core.SegmentCount]string {
	return p.segments
}

// HeaderSegment returns the encoded header.
func (p *Parser) HeaderSegment() string {
	return p.segments[0]
}

// PayloadSegment returns the encoded payload.
func (p *Parser) PayloadSegment() string {
	return p.segments[1]
}

// Signature returns the encoded, unverified signature.
func (p *Parser) Signature() string {
	return p.segments[2]
}

// DecodedHeader decodes the header segment.
func (p *Parser) DecodedHeader() (Claims, error) {
	header, err := core.DecodeSegment(p.HeaderSegment())
	if err != nil {
		return nil, decodingError("header", err)
	}
	return header, nil
}

// DecodedPayload decodes the payload segment.
func (p *Parser) DecodedPayload() (Claims, error) {
	payload, err := core.DecodeSegment(p.PayloadSegment())
	if err != nil {
		return nil, decodingError("payload", err)
	}
	return payload, nil
}

// Expiration returns the exp claim. It fails with ErrMissingClaim (code 6)
// when the claim is absent or not an integer.
func (p *Parser) Expiration() (int64, error) {
	return p.int64Claim(ClaimExpiration, CodeMissingExpiration, "expiration")
}

// NotBefore returns the nbf claim. It fails with ErrMissingClaim (code 7)
// when the claim is absent or not an integer.
func (p *Parser) NotBefore() (int64, error) {
	return p.int64Claim(ClaimNotBefore, CodeMissingNotBefore, "not before")
}

// Audience returns the aud claim as a list; a single string audience is a
// one-element list. It fails with ErrMissingClaim (code 11) when absent and
// ErrInvalidAudience when it is neither a string nor a list of strings.
func (p *Parser) Audience() ([]string, error) {
	payload, err := p.DecodedPayload()
	if err != nil {
		return nil, err
	}
	value, ok := payload[ClaimAudience]
	if !ok {
		return nil, missingClaim(CodeMissingAudience, "audience")
	}
	audience, ok := core.AsStringSlice(value)
	if !ok {
		return nil, newError(CodeInvalidAudience, ErrInvalidAudience,
			"invalid audience claim: unsupported type %T", value)
	}
	return audience, nil
}

// Algorithm returns the alg header claim. It fails with ErrMissingClaim
// (code 13) when the claim is absent or not a string.
func (p *Parser) Algorithm() (string, error) {
	header, err := p.DecodedHeader()
	if err != nil {
		return "", err
	}
	alg, ok := core.String(header, ClaimAlgorithm)
	if !ok {
		return "", missingClaim(CodeMissingAlgorithm, "algorithm")
	}
	return alg, nil
}

// Parse decodes header and payload into a read-only JWT view. The
// signature is not verified.
func (p *Parser) Parse() (*JWT, error) {
	header, err := p.DecodedHeader()
	if err != nil {
		return nil, err
	}
	payload, err := p.DecodedPayload()
	if err != nil {
		return nil, err
	}
	return &JWT{
		token:     p.token,
		header:    header,
		payload:   payload,
		signature: p.Signature(),
		clock:     p.clock,
	}, nil
}

func (p *Parser) int64Claim(key string, code int, name string) (int64, error) {
	payload, err := p.DecodedPayload()
	if err != nil {
		return 0, err
	}
	value, ok := core.Int64(payload, key)
	if !ok {
		return 0, missingClaim(code, name)
	}
	return value, nil
}
