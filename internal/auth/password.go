package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when hashing an empty string.
var ErrEmptyPassword = errors.New("password must not be empty")

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// BcryptHasher hashes with bcrypt. The salt is embedded in the digest.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using the cost compiled into this build.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: passwordHashCost()}
}

// Hash hashes a plaintext password.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches digest. A malformed digest is a mismatch.
func (h *BcryptHasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// Cost returns the bcrypt cost factor in use.
func (h *BcryptHasher) Cost() int {
	return h.cost
}
