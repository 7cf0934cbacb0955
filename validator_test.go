package jwtauth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cybergodev/jwtauth/internal/signing"
)

func buildTestToken(t *testing.T, configure func(*Builder) *Builder) Token {
	t.Helper()
	b := newTestBuilder().SetSecret(testSecret)
	if configure != nil {
		b = configure(b)
	}
	token, err := b.Build()
	require.NoError(t, err)
	return token
}

func newTestValidator(token Token, opts ...ValidatorOption) *Validator {
	clock := FixedClock(testNow)
	opts = append([]ValidatorOption{WithValidatorClock(clock)}, opts...)
	return NewValidator(NewParser(token), HS256, DefaultClaimRules{Clock: clock}, opts...)
}

// signedRaw signs arbitrary header and payload claims with secret.
func signedRaw(t *testing.T, header, payload map[string]any, secret string) string {
	t.Helper()
	raw, err := signing.SignedString(signing.HS256, header, payload, secret)
	require.NoError(t, err)
	return raw
}

func TestValidatorValidate(t *testing.T) {
	token := buildTestToken(t, func(b *Builder) *Builder { return b.SetSubject("user-42") })

	v := newTestValidator(token)
	assert.True(t, v.Validate())
	assert.True(t, v.Valid())
	assert.NoError(t, v.Err())
}

func TestValidatorFailures(t *testing.T) {
	token := buildTestToken(t, func(b *Builder) *Builder { return b.SetSubject("user-42") })
	parts := strings.Split(token.Raw(), ".")
	otherPayload := buildTestToken(t, func(b *Builder) *Builder { return b.SetSubject("admin") })

	tests := []struct {
		name  string
		token Token
		kind  error
		code  int
	}{
		{
			name:  "wrong secret",
			token: NewToken(token.Raw(), "WrongSecret123"),
			kind:  ErrSignature,
			code:  CodeSignature,
		},
		{
			name:  "swapped payload",
			token: NewToken(parts[0]+"."+strings.Split(otherPayload.Raw(), ".")[1]+"."+parts[2], testSecret),
			kind:  ErrSignature,
			code:  CodeSignature,
		},
		{
			name:  "truncated signature",
			token: NewToken(token.Raw()[:len(token.Raw())-1], testSecret),
			kind:  ErrSignature,
			code:  CodeSignature,
		},
		{
			name:  "two segments",
			token: NewToken(parts[0]+"."+parts[1], testSecret),
			kind:  ErrStructure,
			code:  CodeStructure,
		},
		{
			name:  "empty signature",
			token: NewToken(parts[0]+"."+parts[1]+".", testSecret),
			kind:  ErrStructure,
			code:  CodeStructure,
		},
		{
			name:  "four segments",
			token: NewToken(token.Raw()+".extra", testSecret),
			kind:  ErrStructure,
			code:  CodeStructure,
		},
		{
			name:  "illegal character",
			token: NewToken(parts[0]+"."+parts[1]+"+."+parts[2], testSecret),
			kind:  ErrStructure,
			code:  CodeStructure,
		},
		{
			name:  "empty",
			token: NewToken("", testSecret),
			kind:  ErrStructure,
			code:  CodeStructure,
		},
		{
			name:  "undecodable header",
			token: NewToken("bm90IGpzb24."+parts[1]+"."+parts[2], testSecret),
			kind:  ErrDecoding,
			code:  CodeDecoding,
		},
		{
			name:  "missing alg",
			token: NewToken(signedRaw(t, map[string]any{"typ": "JWT"}, map[string]any{}, testSecret), testSecret),
			kind:  ErrMissingClaim,
			code:  CodeMissingAlgorithm,
		},
		{
			name:  "alg none",
			token: NewToken(signedRaw(t, map[string]any{"alg": "none"}, map[string]any{}, testSecret), testSecret),
			kind:  ErrAlgorithm,
			code:  CodeAlgorithmNone,
		},
		{
			name:  "alg None",
			token: NewToken(signedRaw(t, map[string]any{"alg": "None"}, map[string]any{}, testSecret), testSecret),
			kind:  ErrAlgorithm,
			code:  CodeAlgorithmNone,
		},
		{
			name:  "alg HS512",
			token: NewToken(signedRaw(t, map[string]any{"alg": "HS512"}, map[string]any{}, testSecret), testSecret),
			kind:  ErrAlgorithm,
			code:  CodeAlgorithmNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(tt.token)
			assert.False(t, v.Validate())
			assert.False(t, v.Valid())
			assert.ErrorIs(t, v.Err(), tt.kind)
			assert.Equal(t, tt.code, ErrorCode(v.Err()))
		})
	}
}

func TestValidatorAlgNoneWithoutSignature(t *testing.T) {
	header := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0"
	payload := "eyJzdWIiOiJhZG1pbiJ9"

	v := newTestValidator(NewToken(header+"."+payload+".", testSecret))
	assert.False(t, v.Validate())
	assert.ErrorIs(t, v.Err(), ErrStructure)

	v = newTestValidator(NewToken(header+"."+payload+".x", testSecret))
	assert.False(t, v.Validate())
	assert.Equal(t, CodeAlgorithmNone, ErrorCode(v.Err()))
}

func TestValidatorFailFast(t *testing.T) {
	token := NewToken("not-a-token", testSecret)
	v := newTestValidator(token).Structure().Signature().Expiration()

	assert.Equal(t, CodeStructure, ErrorCode(v.Err()), "first failure is kept")
}

func TestValidatorWithAllowedAlgorithms(t *testing.T) {
	raw := signedRaw(t, map[string]any{"alg": "HS384"}, map[string]any{}, testSecret)

	v := newTestValidator(NewToken(raw, testSecret), WithAllowedAlgorithms("HS256", "HS384"))
	v.AlgorithmNotNone()
	assert.NoError(t, v.Err())

	v = newTestValidator(NewToken(raw, testSecret)).Algorithm([]string{"HS256"})
	assert.Equal(t, CodeAlgorithmNotAllowed, ErrorCode(v.Err()))
}

func TestValidatorExpiration(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		code    int
	}{
		{"future", map[string]any{"exp": testNow.Unix() + 1}, 0},
		{"now", map[string]any{"exp": testNow.Unix()}, CodeExpiredClaim},
		{"past", map[string]any{"exp": testNow.Unix() - 3600}, CodeExpiredClaim},
		{"missing", map[string]any{}, CodeMissingExpiration},
		{"string", map[string]any{"exp": "later"}, CodeMissingExpiration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := signedRaw(t, map[string]any{"alg": "HS256"}, tt.payload, testSecret)
			v := newTestValidator(NewToken(raw, testSecret))
			require.True(t, v.Validate())

			v.Expiration()
			assert.Equal(t, tt.code, ErrorCode(v.Err()))
		})
	}
}

func TestValidatorNotBefore(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		code    int
	}{
		{"past", map[string]any{"nbf": testNow.Unix() - 1}, 0},
		{"now", map[string]any{"nbf": testNow.Unix()}, 0},
		{"future", map[string]any{"nbf": testNow.Unix() + 1}, CodeNotBefore},
		{"missing", map[string]any{}, CodeMissingNotBefore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := signedRaw(t, map[string]any{"alg": "HS256"}, tt.payload, testSecret)
			v := newTestValidator(NewToken(raw, testSecret)).NotBefore()
			assert.Equal(t, tt.code, ErrorCode(v.Err()))
		})
	}
}

func TestValidatorAudience(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		check   string
		code    int
	}{
		{"string match", map[string]any{"aud": "api"}, "api", 0},
		{"list match", map[string]any{"aud": []string{"web", "api"}}, "api", 0},
		{"no match", map[string]any{"aud": []string{"web"}}, "api", CodeAudience},
		{"missing", map[string]any{}, "api", CodeMissingAudience},
		{"wrong type", map[string]any{"aud": 7}, "api", CodeInvalidAudience},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := signedRaw(t, map[string]any{"alg": "HS256"}, tt.payload, testSecret)
			v := newTestValidator(NewToken(raw, testSecret)).Audience(tt.check)
			assert.Equal(t, tt.code, ErrorCode(v.Err()))
		})
	}
}

func TestValidatorDefaults(t *testing.T) {
	token := buildTestToken(t, nil)

	v := NewValidator(NewParser(token), nil, nil)
	assert.True(t, v.Validate())
}

func TestValidatorSystemClock(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	raw := signedRaw(t, map[string]any{"alg": "HS256"}, map[string]any{"exp": exp}, testSecret)

	v := NewValidator(NewParser(NewToken(raw, testSecret)), nil, nil)
	assert.True(t, v.Structure().AlgorithmNotNone().Signature().Expiration().Valid())
}

func TestValidatorLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	token := buildTestToken(t, nil)

	v := newTestValidator(NewToken(token.Raw(), "WrongSecret123"), WithValidatorLogger(zap.New(core)))
	require.False(t, v.Validate())

	entries := logs.FilterMessage("token check failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "signature", fields["check"])
	assert.Equal(t, int64(CodeSignature), fields["code"])
}
