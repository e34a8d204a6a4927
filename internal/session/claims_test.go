package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestParseToken(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	token := signToken(t, jwt.RegisteredClaims{
		Subject:   "u1",
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
	})

	info, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", info.Subject)
	require.NotNil(t, info.IssuedAt)
	assert.True(t, info.IssuedAt.Equal(issued))
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, info.ExpiresAt.Equal(issued.Add(time.Hour)))

	assert.False(t, info.Expired(issued.Add(59*time.Minute)))
	assert.True(t, info.Expired(issued.Add(time.Hour)))
}

func TestParseTokenWithoutExpiry(t *testing.T) {
	info, err := ParseToken(signToken(t, jwt.RegisteredClaims{Subject: "u2"}))
	require.NoError(t, err)
	assert.Nil(t, info.ExpiresAt)
	assert.Nil(t, info.IssuedAt)
	assert.False(t, info.Expired(time.Now()))
}

func TestParseOpaqueToken(t *testing.T) {
	for _, token := range []string{"t1", "", "a.b.c"} {
		_, err := ParseToken(token)
		assert.ErrorIs(t, err, ErrOpaqueToken, "token %q", token)
	}
}
