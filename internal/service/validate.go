package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxNameLength     = 100
	maxEmailLength    = 254
)

var (
	validate        = validator.New()
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > maxEmailLength {
		return "", validationError("a valid email address is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", validationError("a valid email address is required")
	}
	return email, nil
}

// validatePassword requires upper, lower and digit characters within the length bounds.
func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return validationError("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return validationError("password must contain an uppercase letter, a lowercase letter and a digit")
	}
	return nil
}

func normalizeUsername(username *string) (*string, error) {
	if username == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*username)
	if !usernamePattern.MatchString(trimmed) {
		return nil, validationError("username must be 3-30 letters, digits or underscores")
	}
	return &trimmed, nil
}

func normalizeName(field string, name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if len(trimmed) > maxNameLength {
		return nil, validationError("%s must be at most %d characters", field, maxNameLength)
	}
	return &trimmed, nil
}
