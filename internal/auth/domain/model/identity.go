package model

import (
	"strings"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/utils"
)

// Identity is the caller a session token is issued for.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Normalize trims the identity fields in place.
func (i *Identity) Normalize() {
	i.Email = strings.TrimSpace(i.Email)
	i.Name = strings.TrimSpace(i.Name)
}

// Validate reports whether the identity can be put into a token.
func (i Identity) Validate() error {
	if i.Email == "" {
		return apperrors.NewValidationError("email is required").WithCode("EMAIL_REQUIRED")
	}
	if !utils.IsValidEmail(i.Email) {
		return apperrors.NewValidationError("email is not valid").
			WithCode("INVALID_EMAIL").
			WithDetail("email", i.Email)
	}
	return nil
}
