package repository

import (
	"context"

	"volunteer-hub/internal/volunteer/domain/model"
)

// SortOrder orders listings by deadline.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery selects a page of opportunities. A zero Size means no limit.
type ListQuery struct {
	Search string
	Sort   SortOrder
	Page   int
	Size   int
}

// Skip is the number of documents before the requested page.
func (q ListQuery) Skip() int {
	if q.Size <= 0 {
		return 0
	}
	return q.Page * q.Size
}

// InsertResult mirrors the driver's insert acknowledgement.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult mirrors the driver's update acknowledgement.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult mirrors the driver's delete acknowledgement.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// OpportunityRepository persists opportunities.
type OpportunityRepository interface {
	Create(ctx context.Context, o *model.Opportunity) (*InsertResult, error)
	List(ctx context.Context, q ListQuery) ([]*model.Opportunity, error)
	ListByOwner(ctx context.Context, organizationEmail string) ([]*model.Opportunity, error)
	Count(ctx context.Context, search string) (int64, error)
	GetByID(ctx context.Context, id string) (*model.Opportunity, error)
	Update(ctx context.Context, id string, patch *model.OpportunityPatch) (*UpdateResult, error)
	Delete(ctx context.Context, id string) (*DeleteResult, error)
}

// ApplicationRepository persists applications and performs the slot
// bookkeeping on the opportunity collection.
type ApplicationRepository interface {
	// Apply reserves one slot of the opportunity and stores the
	// application. It fails with NotFound when the opportunity does not exist
	// and with Conflict when it has no slot left.
	Apply(ctx context.Context, opportunityID string, a *model.Application) (*InsertResult, error)
	ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*model.Application, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	// Delete removes the application and then clears volunteerInfo on the
	// opportunities owned by organizationEmail. An empty organizationEmail
	// skips the clear, it never widens it to the whole collection.
	Delete(ctx context.Context, id string, organizationEmail string) (*DeleteResult, error)
}
