package http_test

import (
	"context"

	"volunteer-hub/internal/shared/httputil"
	"volunteer-hub/internal/shared/utils"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

type mockOpportunityUsecase struct {
	mock.Mock
	requiresSession bool
}

func (m *mockOpportunityUsecase) Create(ctx context.Context, o *model.Opportunity) (*repository.InsertResult, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.InsertResult), args.Error(1)
}

func (m *mockOpportunityUsecase) List(ctx context.Context, q repository.ListQuery) ([]*model.Opportunity, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Opportunity), args.Error(1)
}

func (m *mockOpportunityUsecase) ListAllSorted(ctx context.Context) ([]*model.Opportunity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Opportunity), args.Error(1)
}

func (m *mockOpportunityUsecase) ListByOwner(ctx context.Context, organizationEmail string) ([]*model.Opportunity, error) {
	args := m.Called(ctx, organizationEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Opportunity), args.Error(1)
}

func (m *mockOpportunityUsecase) Count(ctx context.Context, search string) (int64, error) {
	args := m.Called(ctx, search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOpportunityUsecase) Get(ctx context.Context, id string) (*model.Opportunity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opportunity), args.Error(1)
}

func (m *mockOpportunityUsecase) Update(ctx context.Context, subject *repository.Subject, id string, patch *model.OpportunityPatch) (*repository.UpdateResult, error) {
	args := m.Called(ctx, subject, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UpdateResult), args.Error(1)
}

func (m *mockOpportunityUsecase) Delete(ctx context.Context, subject *repository.Subject, id string) (*repository.DeleteResult, error) {
	args := m.Called(ctx, subject, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DeleteResult), args.Error(1)
}

func (m *mockOpportunityUsecase) RequiresSession() bool { return m.requiresSession }

type mockApplicationUsecase struct {
	mock.Mock
}

func (m *mockApplicationUsecase) Apply(ctx context.Context, opportunityID string, a *model.Application) (*repository.InsertResult, error) {
	args := m.Called(ctx, opportunityID, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.InsertResult), args.Error(1)
}

func (m *mockApplicationUsecase) ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*model.Application, error) {
	args := m.Called(ctx, volunteerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Application), args.Error(1)
}

func (m *mockApplicationUsecase) Delete(ctx context.Context, id string, organizationEmail string) (*repository.DeleteResult, error) {
	args := m.Called(ctx, id, organizationEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DeleteResult), args.Error(1)
}

// headerGuard trusts an X-Test-Email header instead of a signed cookie.
type headerGuard struct{}

func (headerGuard) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Get("X-Test-Email")
		if email == "" {
			return httputil.Message(c, fiber.StatusUnauthorized, "Unauthorized access")
		}
		c.SetUserContext(utils.WithUserEmail(c.UserContext(), email))
		return c.Next()
	}
}

func (headerGuard) RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query(param) != c.Get("X-Test-Email") {
			return httputil.Message(c, fiber.StatusForbidden, "Forbidden")
		}
		return c.Next()
	}
}
