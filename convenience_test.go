package jwtauth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValidateGetPayload(t *testing.T) {
	token, err := Generate(map[string]any{"sub": "user-42", "role": "admin"}, testSecret)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	assert.True(t, Validate(token, testSecret))
	assert.False(t, Validate(token, "WrongSecret123"))

	payload, err := GetPayload(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, Claims{"sub": "user-42", "role": "admin"}, payload)
}

func TestGenerateWithExpiration(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	token, err := Generate(map[string]any{"sub": "user-42", "exp": exp}, testSecret)
	require.NoError(t, err)

	payload, err := GetPayload(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, exp, payload.Int64(ClaimExpiration))

	_, err = Generate(map[string]any{"exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	assert.ErrorIs(t, err, ErrExpiredClaim)
}

func TestGenerateErrors(t *testing.T) {
	_, err := Generate(map[string]any{"sub": "x"}, "short")
	assert.ErrorIs(t, err, ErrWeakSecret)

	_, err = Generate(map[string]any{"42": "x"}, testSecret)
	assert.ErrorIs(t, err, ErrInvalidPayloadClaim)
}

func TestGenerateEmptyPayload(t *testing.T) {
	for _, payload := range []map[string]any{nil, {}} {
		token, err := Generate(payload, testSecret)
		require.NoError(t, err)
		assert.True(t, Validate(token, testSecret))

		got, err := GetPayload(token, testSecret)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestValidateTampered(t *testing.T) {
	token, err := Generate(map[string]any{"role": "user"}, testSecret)
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	forged, err := Generate(map[string]any{"role": "admin"}, "OtherSecret123")
	require.NoError(t, err)
	forgedPayload := strings.Split(forged, ".")[1]

	assert.False(t, Validate(parts[0]+"."+forgedPayload+"."+parts[2], testSecret))
	assert.False(t, Validate(forged, testSecret))
}

func TestGetPayloadUnicode(t *testing.T) {
	payload := map[string]any{"name": "Zoë 世界", "html": "<a&b>"}

	token, err := Generate(payload, testSecret)
	require.NoError(t, err)

	got, err := GetPayload(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, Claims(payload), got)
}
