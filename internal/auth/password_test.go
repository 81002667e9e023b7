package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123!", digest)

	assert.True(t, h.Verify("Password123!", digest))
	assert.False(t, h.Verify("Password123", digest))
	assert.False(t, h.Verify("", digest))
}

func TestBcryptHasherSaltsEachDigest(t *testing.T) {
	h := NewBcryptHasher()

	first, err := h.Hash("Password123!")
	require.NoError(t, err)
	second, err := h.Hash("Password123!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("Password123!", first))
	assert.True(t, h.Verify("Password123!", second))
}

func TestBcryptHasherUsesCompiledCost(t *testing.T) {
	h := NewBcryptHasher()
	digest, err := h.Hash("Password123!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, h.Cost(), cost)
	assert.Equal(t, passwordHashCost(), cost)
}

func TestBcryptHasherRejectsEmpty(t *testing.T) {
	_, err := NewBcryptHasher().Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestBcryptHasherMalformedDigestIsMismatch(t *testing.T) {
	h := NewBcryptHasher()
	assert.False(t, h.Verify("Password123!", ""))
	assert.False(t, h.Verify("Password123!", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("Password123!", "$2a$12$short"))
}
