package http_test

import (
	"context"

	"volunteer-hub/internal/auth/domain/model"
	"volunteer-hub/internal/auth/domain/repository"
	"volunteer-hub/internal/auth/usecase"

	"github.com/stretchr/testify/mock"
)

// mockSessionUsecase is a shared mock type for the SessionUsecaseInterface
type mockSessionUsecase struct {
	mock.Mock
}

func (m *mockSessionUsecase) IssueSession(ctx context.Context, identity model.Identity) (*usecase.Session, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Session), args.Error(1)
}

func (m *mockSessionUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Claims), args.Error(1)
}
