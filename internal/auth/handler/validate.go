package handler

import (
	"regexp"

	"github.com/gx-tools/task-tracker/internal/apperr"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateCredentials checks request shape before any provider call is made.
func validateCredentials(email, password string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return apperr.E(apperr.ErrBadRequest, "A valid email is required")
	}
	if len(password) < minPasswordLength {
		return apperr.E(apperr.ErrBadRequest, "Password must be at least 6 characters")
	}
	return nil
}
