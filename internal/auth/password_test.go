package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := hashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, verifyPassword(hash, "correct-horse"))
	assert.False(t, verifyPassword(hash, "wrong-horse"))
}

func TestPasswordHashesAreSalted(t *testing.T) {
	t.Parallel()

	first, err := hashPassword("correct-horse")
	require.NoError(t, err)
	second, err := hashPassword("correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, verifyPassword("not-an-encoded-hash", "correct-horse"))
}

func TestGenerateRandomTokenUniqueness(t *testing.T) {
	t.Parallel()

	first, err := generateRandomToken()
	require.NoError(t, err)
	second, err := generateRandomToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
