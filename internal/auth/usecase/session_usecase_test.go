package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"volunteer-hub/internal/auth/domain/model"
	"volunteer-hub/internal/auth/domain/repository"
	"volunteer-hub/internal/shared/eventbus"
	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(ctx context.Context, identity model.Identity) (string, time.Time, error) {
	args := m.Called(ctx, identity)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Claims), args.Error(1)
}

func TestIssueSession_Success(t *testing.T) {
	tokens := &mockTokenService{}
	bus := eventbus.NewEventBus(logger.NoopLogger{})
	var issued []eventbus.Event
	bus.Subscribe(eventbus.EventTypeSessionIssued, func(ctx context.Context, e eventbus.Event) error {
		issued = append(issued, e)
		return nil
	})
	uc := NewSessionUsecase(tokens, bus, nil)

	expires := time.Now().Add(time.Hour)
	tokens.On("GenerateToken", mock.Anything, model.Identity{Email: "org@example.com", Name: "Org"}).
		Return("signed", expires, nil)

	session, err := uc.IssueSession(context.Background(), model.Identity{Email: " org@example.com ", Name: "Org"})
	require.NoError(t, err)
	bus.Wait()

	assert.Equal(t, "signed", session.Token)
	assert.Equal(t, expires, session.ExpiresAt)
	assert.Equal(t, "org@example.com", session.Identity.Email)
	require.Len(t, issued, 1)
	assert.Equal(t, "org@example.com", issued[0].StringField("email"))
	tokens.AssertExpectations(t)
}

func TestIssueSession_InvalidEmail(t *testing.T) {
	tokens := &mockTokenService{}
	uc := NewSessionUsecase(tokens, nil, nil)

	for _, email := range []string{"", "nope", "a@b"} {
		_, err := uc.IssueSession(context.Background(), model.Identity{Email: email})
		assert.True(t, apperrors.IsValidation(err), email)
	}
	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestIssueSession_SigningFailure(t *testing.T) {
	tokens := &mockTokenService{}
	uc := NewSessionUsecase(tokens, nil, nil)
	tokens.On("GenerateToken", mock.Anything, mock.Anything).Return("", time.Time{}, errors.New("boom"))

	_, err := uc.IssueSession(context.Background(), model.Identity{Email: "org@example.com"})
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

func TestValidateToken(t *testing.T) {
	tokens := &mockTokenService{}
	uc := NewSessionUsecase(tokens, nil, nil)

	tokens.On("ValidateToken", mock.Anything, "good").Return(&repository.Claims{Email: "org@example.com"}, nil)
	tokens.On("ValidateToken", mock.Anything, "bad").Return(nil, apperrors.ErrTokenExpired)

	claims, err := uc.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "org@example.com", claims.Email)

	_, err = uc.ValidateToken(context.Background(), "bad")
	assert.True(t, apperrors.IsAuthentication(err))
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
