package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	encoded, err := hashPassword("secret123")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")

	ok, err := verifyPassword("secret123", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("secret124", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashesAreSalted(t *testing.T) {
	a, err := hashPassword("secret123")
	require.NoError(t, err)
	b, err := hashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	_, err := verifyPassword("secret123", "plain-text")
	assert.ErrorIs(t, err, errInvalidHash)

	_, err = verifyPassword("secret123", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, errInvalidHash)
}

func TestEmptyPasswordNotHashed(t *testing.T) {
	_, err := hashPassword("")
	assert.Error(t, err)
}
