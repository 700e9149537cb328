package identity

import (
	"unicode"
	"unicode/utf8"
)

const minPasswordLength = 6

// ValidatePassword enforces the registration policy: at least six characters,
// one uppercase and one lowercase letter.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}

	var upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	if !upper || !lower {
		return ErrWeakPassword
	}
	return nil
}
