package auth

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the shortest accepted password, counted in characters.
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit, counted in bytes.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 bytes long")
	ErrPasswordNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoDigit     = errors.New("password must contain at least one digit")
)

// CheckPasswordStrength applies the password policy and returns the first
// violated rule, or nil. Uppercase means ASCII A-Z; any Unicode decimal digit
// counts as a digit.
func CheckPasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return ErrPasswordNoUppercase
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	return nil
}
