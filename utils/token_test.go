package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacite/datafiles-service/config"
)

func testCodec() *TokenCodec {
	return NewTokenCodec(config.AppConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 24,
	})
}

func TestTokenRoundtrip(t *testing.T) {
	codec := testCodec()

	token, err := codec.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), identity.RequesterID)
	assert.NotEmpty(t, identity.JTI)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), identity.ExpiresAt, time.Minute)
}

func TestTokenDistinctJTIs(t *testing.T) {
	codec := testCodec()

	first, err := codec.Issue(1)
	require.NoError(t, err)
	second, err := codec.Issue(1)
	require.NoError(t, err)

	a, err := codec.Verify(first)
	require.NoError(t, err)
	b, err := codec.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.JTI, b.JTI)
}

func TestTokenExpired(t *testing.T) {
	codec := &TokenCodec{secret: []byte("test-secret"), ttl: -time.Minute}

	token, err := codec.Issue(42)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTampered(t *testing.T) {
	codec := testCodec()

	token, err := codec.Issue(42)
	require.NoError(t, err)

	// Flip one character in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongKey(t *testing.T) {
	token, err := testCodec().Issue(42)
	require.NoError(t, err)

	other := NewTokenCodec(config.AppConfig{JWTSecret: "other-secret", TokenTTLHours: 24})
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	codec := testCodec()
	for _, input := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.Verify(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}
