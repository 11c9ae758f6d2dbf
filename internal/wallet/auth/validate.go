package auth

import (
	"errors"
	"fmt"
	"regexp"
)

// Local pre-validation errors. These never reach the network and are not
// substitutes for the server's own checks.
var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyField       = errors.New("required field is empty")
)

// emailRe accepts the conventional local@domain.tld shape and nothing fancier.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the conventional shape of an email address.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the configured minimum length and, when confirm
// is non-empty, that the confirmation matches.
func ValidatePassword(password, confirm string, minLen int) error {
	if len(password) < minLen {
		return fmt.Errorf("password must be at least %d characters long", minLen)
	}
	if confirm != "" && password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
