package usecase

import (
	"context"

	"volunteer-hub/internal/shared/eventbus"
	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/logger"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"
)

// eventSource tags every event published by this module.
const eventSource = "volunteer"

// OpportunityUsecaseInterface defines the opportunity operations exposed to
// the HTTP layer.
type OpportunityUsecaseInterface interface {
	Create(ctx context.Context, o *model.Opportunity) (*repository.InsertResult, error)
	List(ctx context.Context, q repository.ListQuery) ([]*model.Opportunity, error)
	ListAllSorted(ctx context.Context) ([]*model.Opportunity, error)
	ListByOwner(ctx context.Context, organizationEmail string) ([]*model.Opportunity, error)
	Count(ctx context.Context, search string) (int64, error)
	Get(ctx context.Context, id string) (*model.Opportunity, error)
	Update(ctx context.Context, subject *repository.Subject, id string, patch *model.OpportunityPatch) (*repository.UpdateResult, error)
	Delete(ctx context.Context, subject *repository.Subject, id string) (*repository.DeleteResult, error)
	// RequiresSession reports whether Update and Delete need a verified caller.
	RequiresSession() bool
}

// OpportunityUsecase validates requests, applies the ownership policy and
// publishes domain events around the opportunity store.
type OpportunityUsecase struct {
	repo        repository.OpportunityRepository
	policy      repository.OwnershipPolicy
	publisher   eventbus.Publisher
	log         logger.Logger
	maxPageSize int
}

var _ OpportunityUsecaseInterface = (*OpportunityUsecase)(nil)

// NewOpportunityUsecase creates the use case. publisher may be nil.
func NewOpportunityUsecase(
	repo repository.OpportunityRepository,
	policy repository.OwnershipPolicy,
	publisher eventbus.Publisher,
	maxPageSize int,
	log logger.Logger,
) *OpportunityUsecase {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &OpportunityUsecase{
		repo:        repo,
		policy:      policy,
		publisher:   publisher,
		log:         log.WithComponent("opportunity_usecase"),
		maxPageSize: maxPageSize,
	}
}

// Create sanitizes, validates and stores a new opportunity.
func (uc *OpportunityUsecase) Create(ctx context.Context, o *model.Opportunity) (*repository.InsertResult, error) {
	if o == nil {
		return nil, apperrors.NewValidationError("opportunity body is required")
	}
	o.Sanitize()
	if err := o.Validate(); err != nil {
		return nil, err
	}

	res, err := uc.repo.Create(ctx, o)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("Failed to create opportunity: %v", err)
		return nil, err
	}

	uc.publish(ctx, eventbus.EventTypeOpportunityCreated, map[string]interface{}{
		eventbus.PayloadOpportunityID:     res.InsertedID,
		eventbus.PayloadOrganizationEmail: o.OrganizationEmail,
		eventbus.PayloadTitle:             o.Title,
	})
	return res, nil
}

// List returns one page of the filtered listing. Negative pages or sizes
// are rejected and sizes above the configured maximum are capped.
func (uc *OpportunityUsecase) List(ctx context.Context, q repository.ListQuery) ([]*model.Opportunity, error) {
	if q.Page < 0 {
		return nil, apperrors.NewValidationError("pageNo cannot be negative").WithCode("INVALID_PAGE")
	}
	if q.Size < 0 {
		return nil, apperrors.NewValidationError("size cannot be negative").WithCode("INVALID_SIZE")
	}
	switch q.Sort {
	case repository.SortNone, repository.SortAsc, repository.SortDesc:
	default:
		return nil, apperrors.NewValidationError("sort must be asc or desc").WithCode("INVALID_SORT")
	}
	if uc.maxPageSize > 0 && q.Size > uc.maxPageSize {
		q.Size = uc.maxPageSize
	}
	return uc.repo.List(ctx, q)
}

// ListAllSorted returns every opportunity by ascending deadline.
func (uc *OpportunityUsecase) ListAllSorted(ctx context.Context) ([]*model.Opportunity, error) {
	return uc.repo.List(ctx, repository.ListQuery{Sort: repository.SortAsc})
}

// ListByOwner returns the opportunities posted by one organization.
func (uc *OpportunityUsecase) ListByOwner(ctx context.Context, organizationEmail string) ([]*model.Opportunity, error) {
	if organizationEmail == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	return uc.repo.ListByOwner(ctx, organizationEmail)
}

// Count counts the opportunities matching the same filter as List.
func (uc *OpportunityUsecase) Count(ctx context.Context, search string) (int64, error) {
	return uc.repo.Count(ctx, search)
}

// Get returns one opportunity.
func (uc *OpportunityUsecase) Get(ctx context.Context, id string) (*model.Opportunity, error) {
	return uc.repo.GetByID(ctx, id)
}

// RequiresSession implements OpportunityUsecaseInterface.
func (uc *OpportunityUsecase) RequiresSession() bool {
	return uc.policy != nil && uc.policy.Enforced()
}

// Update applies a partial update after the ownership check.
func (uc *OpportunityUsecase) Update(ctx context.Context, subject *repository.Subject, id string, patch *model.OpportunityPatch) (*repository.UpdateResult, error) {
	if patch == nil {
		return nil, apperrors.NewValidationError("update must contain at least one field").WithCode("EMPTY_PATCH")
	}

	current, err := uc.authorize(ctx, subject, "PATCH", id)
	if err != nil {
		return nil, err
	}

	patch.Sanitize()
	if err := patch.Validate(current.OrganizationEmail); err != nil {
		return nil, err
	}

	res, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(patch.Fields()))
	for k := range patch.Fields() {
		fields = append(fields, k)
	}
	uc.publish(ctx, eventbus.EventTypeOpportunityUpdated, map[string]interface{}{
		eventbus.PayloadOpportunityID:     id,
		eventbus.PayloadOrganizationEmail: current.OrganizationEmail,
		"fields":                          fields,
	})
	return res, nil
}

// Delete removes an opportunity after the ownership check.
func (uc *OpportunityUsecase) Delete(ctx context.Context, subject *repository.Subject, id string) (*repository.DeleteResult, error) {
	current, err := uc.authorize(ctx, subject, "DELETE", id)
	if err != nil {
		return nil, err
	}

	res, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, eventbus.EventTypeOpportunityDeleted, map[string]interface{}{
		eventbus.PayloadOpportunityID:     id,
		eventbus.PayloadOrganizationEmail: current.OrganizationEmail,
		eventbus.PayloadTitle:             current.Title,
	})
	return res, nil
}

// authorize loads the target and evaluates the ownership policy for it.
func (uc *OpportunityUsecase) authorize(ctx context.Context, subject *repository.Subject, method, id string) (*model.Opportunity, error) {
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.RequiresSession() {
		return current, nil
	}
	if subject == nil || subject.Email == "" {
		return nil, apperrors.NewAuthenticationError("Unauthorized access")
	}

	allowed, err := uc.policy.Allow(ctx, *subject, method, current)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("Ownership rule failed for %s %s: %v", method, id, err)
		return nil, apperrors.NewAuthorizationError("Forbidden").WithCause(err)
	}
	if !allowed {
		uc.log.WithContext(ctx).WithFields(map[string]interface{}{
			"opportunity_id": id,
			"method":         method,
			"caller":         subject.Email,
		}).Info("ownership check denied")
		return nil, apperrors.NewAuthorizationError("Forbidden")
	}
	return current, nil
}

func (uc *OpportunityUsecase) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.PublishAndForget(ctx, eventbus.NewEvent(eventType, eventSource, payload))
}
