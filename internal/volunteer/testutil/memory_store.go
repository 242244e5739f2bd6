// Package testutil provides an in-memory implementation of the volunteer
// repositories for route level tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps opportunities and applications in insertion order and
// applies the same search, sort and paging rules as the MongoDB store.
type MemoryStore struct {
	mu            sync.Mutex
	searchFields  []string
	opportunities []*model.Opportunity
	applications  []*model.Application
}

// NewMemoryStore creates an empty store searching searchFields.
func NewMemoryStore(searchFields ...string) *MemoryStore {
	if len(searchFields) == 0 {
		searchFields = []string{model.FieldTitle}
	}
	return &MemoryStore{searchFields: searchFields}
}

// Opportunities returns the store as an OpportunityRepository.
func (s *MemoryStore) Opportunities() repository.OpportunityRepository {
	return opportunityStore{s}
}

// Applications returns the store as an ApplicationRepository.
func (s *MemoryStore) Applications() repository.ApplicationRepository {
	return applicationStore{s}
}

// Seed inserts opportunities as they are, keeping any preset id.
func (s *MemoryStore) Seed(opps ...*model.Opportunity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range opps {
		if o.ID.IsZero() {
			o.ID = primitive.NewObjectID()
		}
		c := *o
		s.opportunities = append(s.opportunities, &c)
	}
}

// ApplicationCount returns the number of stored applications.
func (s *MemoryStore) ApplicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applications)
}

func (s *MemoryStore) findOpportunity(id string) (int, error) {
	oid, err := parseID(id)
	if err != nil {
		return -1, err
	}
	for i, o := range s.opportunities {
		if o.ID == oid {
			return i, nil
		}
	}
	return -1, apperrors.NewNotFoundError("opportunity")
}

func (s *MemoryStore) matches(o *model.Opportunity, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	fields := o.ToMap()
	for _, f := range s.searchFields {
		if v, ok := fields[f].(string); ok && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

type opportunityStore struct{ s *MemoryStore }

func (r opportunityStore) Create(ctx context.Context, o *model.Opportunity) (*repository.InsertResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.VolunteerInfo = nil
	o.CreatedAt = now
	o.UpdatedAt = now
	c := *o
	r.s.opportunities = append(r.s.opportunities, &c)
	return &repository.InsertResult{Acknowledged: true, InsertedID: o.ID.Hex()}, nil
}

func (r opportunityStore) List(ctx context.Context, q repository.ListQuery) ([]*model.Opportunity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*model.Opportunity{}
	for _, o := range r.s.opportunities {
		if r.s.matches(o, q.Search) {
			c := *o
			out = append(out, &c)
		}
	}

	switch q.Sort {
	case repository.SortAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DeadLine.Before(out[j].DeadLine.Time) })
	case repository.SortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DeadLine.After(out[j].DeadLine.Time) })
	}

	if q.Size > 0 {
		start := q.Skip()
		if start >= len(out) {
			return []*model.Opportunity{}, nil
		}
		end := start + q.Size
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (r opportunityStore) ListByOwner(ctx context.Context, organizationEmail string) ([]*model.Opportunity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*model.Opportunity{}
	for _, o := range r.s.opportunities {
		if o.OrganizationEmail == organizationEmail {
			c := *o
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r opportunityStore) Count(ctx context.Context, search string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, o := range r.s.opportunities {
		if r.s.matches(o, search) {
			n++
		}
	}
	return n, nil
}

func (r opportunityStore) GetByID(ctx context.Context, id string) (*model.Opportunity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, err := r.s.findOpportunity(id)
	if err != nil {
		return nil, err
	}
	c := *r.s.opportunities[i]
	return &c, nil
}

func (r opportunityStore) Update(ctx context.Context, id string, patch *model.OpportunityPatch) (*repository.UpdateResult, error) {
	if len(patch.Fields()) == 0 {
		return nil, apperrors.NewValidationError("update must contain at least one field").WithCode("EMPTY_PATCH")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, err := r.s.findOpportunity(id)
	if err != nil {
		return nil, err
	}
	patch.Apply(r.s.opportunities[i])
	r.s.opportunities[i].UpdatedAt = time.Now().UTC()
	return &repository.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r opportunityStore) Delete(ctx context.Context, id string) (*repository.DeleteResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, err := r.s.findOpportunity(id)
	if err != nil {
		return nil, err
	}
	r.s.opportunities = append(r.s.opportunities[:i], r.s.opportunities[i+1:]...)
	return &repository.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

type applicationStore struct{ s *MemoryStore }

func (r applicationStore) Apply(ctx context.Context, opportunityID string, a *model.Application) (*repository.InsertResult, error) {
	if opportunityID == "" {
		return nil, apperrors.NewValidationError("opportunity id is required").WithCode("MISSING_ID")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, err := r.s.findOpportunity(opportunityID)
	if err != nil {
		return nil, err
	}
	o := r.s.opportunities[i]
	if o.NumberOfVolunteer <= 0 {
		return nil, apperrors.NewConflictError("no volunteer slots left").
			WithCode("NO_SLOTS").
			WithDetail("opportunityId", o.ID.Hex())
	}

	o.NumberOfVolunteer--
	info := a.VolunteerInfo()
	o.VolunteerInfo = &info

	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	a.Snapshot(o)
	c := *a
	r.s.applications = append(r.s.applications, &c)
	return &repository.InsertResult{Acknowledged: true, InsertedID: a.ID.Hex()}, nil
}

func (r applicationStore) ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*model.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*model.Application{}
	for _, a := range r.s.applications {
		if a.VolunteerEmail == volunteerEmail {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r applicationStore) GetByID(ctx context.Context, id string) (*model.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, err := r.find(id)
	if err != nil {
		return nil, err
	}
	c := *r.s.applications[i]
	return &c, nil
}

func (r applicationStore) Delete(ctx context.Context, id string, organizationEmail string) (*repository.DeleteResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, err := r.find(id)
	if err != nil {
		return nil, err
	}
	r.s.applications = append(r.s.applications[:i], r.s.applications[i+1:]...)

	if organizationEmail != "" {
		for _, o := range r.s.opportunities {
			if o.OrganizationEmail == organizationEmail {
				o.VolunteerInfo = nil
			}
		}
	}
	return &repository.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (r applicationStore) find(id string) (int, error) {
	oid, err := parseID(id)
	if err != nil {
		return -1, err
	}
	for i, a := range r.s.applications {
		if a.ID == oid {
			return i, nil
		}
	}
	return -1, apperrors.NewNotFoundError("application")
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewValidationError("invalid id").
			WithCode("INVALID_ID").
			WithDetail("id", id).
			WithCause(apperrors.ErrInvalidObject)
	}
	return oid, nil
}
