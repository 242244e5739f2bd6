package usecase

import (
	"context"
	"sync"

	"volunteer-hub/internal/shared/eventbus"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"

	"github.com/stretchr/testify/mock"
)

type mockOpportunityRepo struct {
	mock.Mock
}

func (m *mockOpportunityRepo) Create(ctx context.Context, o *model.Opportunity) (*repository.InsertResult, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.InsertResult), args.Error(1)
}

func (m *mockOpportunityRepo) List(ctx context.Context, q repository.ListQuery) ([]*model.Opportunity, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Opportunity), args.Error(1)
}

func (m *mockOpportunityRepo) ListByOwner(ctx context.Context, organizationEmail string) ([]*model.Opportunity, error) {
	args := m.Called(ctx, organizationEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Opportunity), args.Error(1)
}

func (m *mockOpportunityRepo) Count(ctx context.Context, search string) (int64, error) {
	args := m.Called(ctx, search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOpportunityRepo) GetByID(ctx context.Context, id string) (*model.Opportunity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opportunity), args.Error(1)
}

func (m *mockOpportunityRepo) Update(ctx context.Context, id string, patch *model.OpportunityPatch) (*repository.UpdateResult, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UpdateResult), args.Error(1)
}

func (m *mockOpportunityRepo) Delete(ctx context.Context, id string) (*repository.DeleteResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DeleteResult), args.Error(1)
}

type mockApplicationRepo struct {
	mock.Mock
}

func (m *mockApplicationRepo) Apply(ctx context.Context, opportunityID string, a *model.Application) (*repository.InsertResult, error) {
	args := m.Called(ctx, opportunityID, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.InsertResult), args.Error(1)
}

func (m *mockApplicationRepo) ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*model.Application, error) {
	args := m.Called(ctx, volunteerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Application), args.Error(1)
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Application), args.Error(1)
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id string, organizationEmail string) (*repository.DeleteResult, error) {
	args := m.Called(ctx, id, organizationEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DeleteResult), args.Error(1)
}

type mockPolicy struct {
	mock.Mock
	enforced bool
}

func (m *mockPolicy) Enforced() bool { return m.enforced }

func (m *mockPolicy) Allow(ctx context.Context, subject repository.Subject, method string, o *model.Opportunity) (bool, error) {
	args := m.Called(ctx, subject, method, o)
	return args.Bool(0), args.Error(1)
}

// recordingPublisher delivers synchronously and keeps every event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) PublishAndForget(ctx context.Context, event eventbus.Event) {
	_ = p.Publish(ctx, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) last() eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}
