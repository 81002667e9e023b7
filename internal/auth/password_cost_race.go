//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// race-enabled test runs are slow enough already
	return bcrypt.MinCost
}
