package security

import (
	"context"
	"errors"
	"time"

	"volunteer-hub/internal/auth/config"
	"volunteer-hub/internal/auth/domain/model"
	"volunteer-hub/internal/auth/domain/repository"
	apperrors "volunteer-hub/internal/shared/errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid          = apperrors.ErrInvalidToken
	ErrTokenExpired          = apperrors.ErrTokenExpired
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// JWTokenService implements JWT token generation and validation
type JWTokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

// NewJWTokenService creates a new JWT token service
func NewJWTokenService(cfg *config.Config) (*JWTokenService, error) {
	if cfg.JWTSecretKey == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	if cfg.JWTIssuer == "" {
		return nil, errors.New("jwt issuer cannot be empty")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("jwt session TTL must be positive")
	}

	s := &JWTokenService{
		secretKey: []byte(cfg.JWTSecretKey),
		issuer:    cfg.JWTIssuer,
		ttl:       cfg.SessionTTL,
		now:       time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s, nil
}

// WithClock replaces the time source, used by tests to mint past tokens.
func (s *JWTokenService) WithClock(now func() time.Time) *JWTokenService {
	s.now = now
	return s
}

// GenerateToken signs a session token for the identity and returns its expiry.
func (s *JWTokenService) GenerateToken(ctx context.Context, identity model.Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &repository.Claims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTokenService) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	token, err := s.parser.ParseWithClaims(tokenString, &repository.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return s.secretKey, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*repository.Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Email == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
