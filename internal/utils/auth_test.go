package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword("s3cret-password", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}

func TestAdminTokenRoundtrip(t *testing.T) {
	token, err := CreateAdminToken("admin@example.com", "test-secret", time.Hour)
	require.NoError(t, err)

	email, err := ParseAdminToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", email)
}

func TestAdminTokenWrongSecret(t *testing.T) {
	token, err := CreateAdminToken("admin@example.com", "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseAdminToken(token, "other-secret")
	assert.Error(t, err)
}

func TestAdminTokenExpired(t *testing.T) {
	token, err := CreateAdminToken("admin@example.com", "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAdminToken(token, "test-secret")
	assert.Error(t, err)
}

func TestGenerateAPIKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := GenerateAPIKey()
		assert.True(t, strings.HasPrefix(key, "sk_"))
		assert.Len(t, key, 35) // "sk_" + 32 hex chars
		assert.False(t, seen[key], "duplicate API key %s", key)
		seen[key] = true
	}
}
