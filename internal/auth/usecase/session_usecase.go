package usecase

import (
	"context"
	"time"

	"volunteer-hub/internal/auth/domain/model"
	"volunteer-hub/internal/auth/domain/repository"
	"volunteer-hub/internal/shared/eventbus"
	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/logger"
)

// SessionUsecaseInterface defines the contract for session use cases.
type SessionUsecaseInterface interface {
	IssueSession(ctx context.Context, identity model.Identity) (*Session, error)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
}

// Session is a freshly signed token together with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  model.Identity
}

// SessionUsecase issues and verifies stateless session tokens.
type SessionUsecase struct {
	tokenSvc  repository.TokenService
	publisher eventbus.Publisher
	log       logger.Logger
}

// NewSessionUsecase creates the session use case. publisher may be nil.
func NewSessionUsecase(tokenSvc repository.TokenService, publisher eventbus.Publisher, log logger.Logger) *SessionUsecase {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &SessionUsecase{
		tokenSvc:  tokenSvc,
		publisher: publisher,
		log:       log.WithComponent("session"),
	}
}

// IssueSession validates the identity and signs a token for it.
func (uc *SessionUsecase) IssueSession(ctx context.Context, identity model.Identity) (*Session, error) {
	identity.Normalize()
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	token, expiresAt, err := uc.tokenSvc.GenerateToken(ctx, identity)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to sign session token").WithCause(err)
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"email":      identity.Email,
		"expires_at": expiresAt,
	}).Debug("session issued")

	if uc.publisher != nil {
		uc.publisher.PublishAndForget(ctx, eventbus.NewEvent(eventbus.EventTypeSessionIssued, "auth", map[string]interface{}{
			eventbus.PayloadEmail: identity.Email,
		}))
	}

	return &Session{Token: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

// ValidateToken verifies a token and returns its claims.
func (uc *SessionUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, apperrors.NewAuthenticationError("Unauthorized").WithCause(err)
	}
	return claims, nil
}
