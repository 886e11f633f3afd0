package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password against a bcrypt hash
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return entity.ErrUnauthenticated
	}
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrUnauthenticated, err)
	}
	return nil
}

// ValidatePassword enforces length and character class rules
func ValidatePassword(password string) error {
	var hasDigit, hasLower, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}

	if len([]rune(password)) < MinPasswordLength || !hasDigit || !hasLower || !hasUpper {
		return entity.NewValidationError("password",
			"password must be at least 6 characters and contain a digit, a lowercase and an uppercase letter")
	}
	return nil
}
