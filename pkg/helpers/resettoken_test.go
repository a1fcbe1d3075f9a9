package helpers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrail/bootcamp-api/pkg/helpers"
)

func TestNewResetToken(t *testing.T) {
	token, hash, err := helpers.NewResetToken()
	require.NoError(t, err)

	assert.Len(t, token, 40, "20 random bytes hex encoded")
	assert.Len(t, hash, 64, "sha256 hex digest")
	assert.NotEqual(t, token, hash)

	// incoming plain tokens must hash to the stored value
	assert.Equal(t, hash, helpers.HashResetToken(token))
}

func TestNewResetToken_Unique(t *testing.T) {
	a, _, err := helpers.NewResetToken()
	require.NoError(t, err)
	b, _, err := helpers.NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashResetToken_Deterministic(t *testing.T) {
	assert.Equal(t, helpers.HashResetToken("abc"), helpers.HashResetToken("abc"))
	assert.NotEqual(t, helpers.HashResetToken("abc"), helpers.HashResetToken("abd"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := helpers.HashPassword("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	assert.True(t, helpers.CompareHashAndPassword(hash, "123456"))
	assert.False(t, helpers.CompareHashAndPassword(hash, "654321"))
	assert.False(t, helpers.CompareHashAndPassword("not-a-hash", "123456"))
}
