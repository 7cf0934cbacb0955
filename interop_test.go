package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hmacKeyFunc(secret string) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) { return []byte(secret), nil }
}

func TestInteropParsedByGolangJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token, err := Generate(map[string]any{"sub": "user-42", "role": "admin", "exp": exp}, testSecret)
	require.NoError(t, err)

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	parsed, err := parser.Parse(token, hmacKeyFunc(testSecret))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-42", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "JWT", parsed.Header["typ"])

	_, err = parser.Parse(token, hmacKeyFunc("WrongSecret123"))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestInteropGolangJWTTokenValidates(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-42",
		"n":   1,
		"aud": []string{"api"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.True(t, Validate(token, testSecret))
	assert.False(t, Validate(token, "WrongSecret123"))

	payload, err := GetPayload(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, Claims{"sub": "user-42", "n": int64(1), "aud": []any{"api"}}, payload)
}

func TestInteropIdenticalSerialization(t *testing.T) {
	claims := map[string]any{"sub": "user-42", "iat": testNow.Unix(), "scope": "read write"}

	want, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte(testSecret))
	require.NoError(t, err)

	got, err := newTestProcessor(t).Generate(claims, testSecret)
	require.NoError(t, err)
	assert.Equal(t, want, got.Raw())
}

func TestInteropOtherAlgorithmRejected(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "user-42"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	v := newTestProcessor(t).Validator(token, testSecret)
	assert.False(t, v.Validate())
	assert.Equal(t, CodeAlgorithmNotAllowed, ErrorCode(v.Err()))
}
