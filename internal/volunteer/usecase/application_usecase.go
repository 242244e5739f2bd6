package usecase

import (
	"context"
	"strings"

	"volunteer-hub/internal/shared/eventbus"
	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/logger"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"
)

// ApplicationUsecaseInterface defines the application operations exposed to
// the HTTP layer.
type ApplicationUsecaseInterface interface {
	Apply(ctx context.Context, opportunityID string, a *model.Application) (*repository.InsertResult, error)
	ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*model.Application, error)
	Delete(ctx context.Context, id string, organizationEmail string) (*repository.DeleteResult, error)
}

// ApplicationUsecase validates applications and publishes their events.
type ApplicationUsecase struct {
	repo      repository.ApplicationRepository
	publisher eventbus.Publisher
	log       logger.Logger
}

var _ ApplicationUsecaseInterface = (*ApplicationUsecase)(nil)

// NewApplicationUsecase creates the use case. publisher may be nil.
func NewApplicationUsecase(repo repository.ApplicationRepository, publisher eventbus.Publisher, log logger.Logger) *ApplicationUsecase {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &ApplicationUsecase{
		repo:      repo,
		publisher: publisher,
		log:       log.WithComponent("application_usecase"),
	}
}

// Apply records an application for opportunityID, or for the id in the
// body when opportunityID is empty.
func (uc *ApplicationUsecase) Apply(ctx context.Context, opportunityID string, a *model.Application) (*repository.InsertResult, error) {
	if a == nil {
		return nil, apperrors.NewValidationError("application body is required")
	}
	a.Sanitize()
	if opportunityID = strings.TrimSpace(opportunityID); opportunityID == "" {
		opportunityID = a.OpportunityID
	}
	if opportunityID == "" {
		return nil, apperrors.NewValidationError("opportunity id is required").WithCode("MISSING_ID")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	res, err := uc.repo.Apply(ctx, opportunityID, a)
	if err != nil {
		if apperrors.IsConflict(err) {
			uc.publish(ctx, eventbus.EventTypeSlotsExhausted, map[string]interface{}{
				eventbus.PayloadOpportunityID:  opportunityID,
				eventbus.PayloadVolunteerEmail: a.VolunteerEmail,
			})
		}
		return nil, err
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"opportunity_id": opportunityID,
		"application_id": res.InsertedID,
	}).Info("application recorded")

	uc.publish(ctx, eventbus.EventTypeApplicationCreated, map[string]interface{}{
		eventbus.PayloadApplicationID:     res.InsertedID,
		eventbus.PayloadOpportunityID:     opportunityID,
		eventbus.PayloadOrganizationEmail: a.OrganizationEmail,
		eventbus.PayloadVolunteerEmail:    a.VolunteerEmail,
		eventbus.PayloadVolunteerName:     a.VolunteerName,
		eventbus.PayloadTitle:             a.PostTitle,
	})
	return res, nil
}

// ListByVolunteer returns the applications of one volunteer.
func (uc *ApplicationUsecase) ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*model.Application, error) {
	if volunteerEmail == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	return uc.repo.ListByVolunteer(ctx, volunteerEmail)
}

// Delete removes one application. volunteerInfo is cleared on the
// opportunities of organizationEmail, or of the organization stored on the
// application when organizationEmail is empty.
func (uc *ApplicationUsecase) Delete(ctx context.Context, id string, organizationEmail string) (*repository.DeleteResult, error) {
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if organizationEmail = strings.TrimSpace(organizationEmail); organizationEmail == "" {
		organizationEmail = current.OrganizationEmail
	}

	res, err := uc.repo.Delete(ctx, id, organizationEmail)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, eventbus.EventTypeApplicationDeleted, map[string]interface{}{
		eventbus.PayloadApplicationID:     id,
		eventbus.PayloadOpportunityID:     current.OpportunityID,
		eventbus.PayloadOrganizationEmail: organizationEmail,
		eventbus.PayloadVolunteerEmail:    current.VolunteerEmail,
	})
	return res, nil
}

func (uc *ApplicationUsecase) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.PublishAndForget(ctx, eventbus.NewEvent(eventType, eventSource, payload))
}
