package repository

import (
	"context"
	"time"

	"volunteer-hub/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService defines the interface for token operations
type TokenService interface {
	GenerateToken(ctx context.Context, identity model.Identity) (string, time.Time, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents JWT claims
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the caller the claims were issued for.
func (c *Claims) Identity() model.Identity {
	return model.Identity{Email: c.Email, Name: c.Name}
}
