package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)

	tok, exp, err := m.GenerateAccessToken("u1", "admin", "sid-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestJWTManager_RejectsForeignSecretAndExpired(t *testing.T) {
	tok, _, err := NewJWTManager("other", time.Minute).GenerateAccessToken("u1", "user", "")
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Minute).ParseAccessToken(tok)
	assert.Error(t, err)

	expired, _, err := NewJWTManager("secret", -time.Minute).GenerateAccessToken("u1", "user", "")
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Minute).ParseAccessToken(expired)
	assert.Error(t, err)
}

func TestParseTimeAny(t *testing.T) {
	got, ok := ParseTimeAny("1990-05-17")
	require.True(t, ok)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), got)

	got, ok = ParseTimeAny(" 2024-01-02T03:04:05Z ")
	require.True(t, ok)
	assert.Equal(t, 3, got.Hour())

	_, ok = ParseTimeAny("yesterday")
	assert.False(t, ok)
	_, ok = ParseTimeAny("")
	assert.False(t, ok)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CompareHashAndPassword(hash, "password123"))
	assert.False(t, CompareHashAndPassword(hash, "password124"))
}
