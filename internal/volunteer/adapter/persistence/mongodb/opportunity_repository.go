package mongodb

import (
	"context"
	"time"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/logger"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opportunityResource = "opportunity"

// OpportunityRepository stores opportunities in MongoDB.
type OpportunityRepository struct {
	collection   CollectionInterface
	searchFields []string
	log          logger.Logger
	now          func() time.Time
}

var _ repository.OpportunityRepository = (*OpportunityRepository)(nil)

// NewOpportunityRepository creates a repository over the named collection.
func NewOpportunityRepository(db *mongo.Database, collection string, searchFields []string, log logger.Logger) *OpportunityRepository {
	return NewOpportunityRepositoryWithCollection(NewMongoCollectionAdapter(db.Collection(collection)), searchFields, log)
}

// NewOpportunityRepositoryWithCollection creates a repository over any
// CollectionInterface, used by tests.
func NewOpportunityRepositoryWithCollection(col CollectionInterface, searchFields []string, log logger.Logger) *OpportunityRepository {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if len(searchFields) == 0 {
		searchFields = []string{model.FieldTitle}
	}
	return &OpportunityRepository{
		collection:   col,
		searchFields: searchFields,
		log:          log.WithComponent("opportunity_repository"),
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Create inserts a new opportunity and assigns its id and timestamps.
func (r *OpportunityRepository) Create(ctx context.Context, o *model.Opportunity) (*repository.InsertResult, error) {
	now := r.now()
	o.ID = primitive.NewObjectID()
	o.VolunteerInfo = nil
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		r.log.WithContext(ctx).Errorf("insert opportunity failed: %v", err)
		return nil, storeError(err, opportunityResource, "create")
	}
	return &repository.InsertResult{Acknowledged: true, InsertedID: o.ID.Hex()}, nil
}

// List returns one page of the filtered and sorted opportunities.
func (r *OpportunityRepository) List(ctx context.Context, q repository.ListQuery) ([]*model.Opportunity, error) {
	return r.find(ctx, SearchFilter(r.searchFields, q.Search), FindOptions(q))
}

// ListByOwner returns every opportunity of one organization.
func (r *OpportunityRepository) ListByOwner(ctx context.Context, organizationEmail string) ([]*model.Opportunity, error) {
	return r.find(ctx, bson.M{model.FieldOrganizationEmail: organizationEmail}, options.Find())
}

func (r *OpportunityRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Opportunity, error) {
	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError(err, opportunityResource, "list")
	}
	out, err := decodeAll[model.Opportunity](ctx, cur)
	if err != nil {
		return nil, storeError(err, opportunityResource, "decode")
	}
	return out, nil
}

// Count returns the number of opportunities matching search.
func (r *OpportunityRepository) Count(ctx context.Context, search string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, SearchFilter(r.searchFields, search))
	if err != nil {
		return 0, storeError(err, opportunityResource, "count")
	}
	return n, nil
}

// GetByID returns one opportunity.
func (r *OpportunityRepository) GetByID(ctx context.Context, id string) (*model.Opportunity, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var o model.Opportunity
	if err := r.collection.FindOne(ctx, bson.M{model.FieldID: oid}).Decode(&o); err != nil {
		return nil, storeError(err, opportunityResource, "get")
	}
	return &o, nil
}

// Update applies a field-level $set.
func (r *OpportunityRepository) Update(ctx context.Context, id string, patch *model.OpportunityPatch) (*repository.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	set := patch.Fields()
	if len(set) == 0 {
		return nil, apperrors.NewValidationError("update must contain at least one field").WithCode("EMPTY_PATCH")
	}
	set[model.FieldUpdatedAt] = r.now()

	res, err := r.collection.UpdateOne(ctx, bson.M{model.FieldID: oid}, bson.M{"$set": set})
	if err != nil {
		return nil, storeError(err, opportunityResource, "update")
	}
	if res.Matched() == 0 {
		return nil, apperrors.NewNotFoundError(opportunityResource)
	}
	return &repository.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.Matched(),
		ModifiedCount: res.Modified(),
	}, nil
}

// Delete removes one opportunity.
func (r *OpportunityRepository) Delete(ctx context.Context, id string) (*repository.DeleteResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{model.FieldID: oid})
	if err != nil {
		return nil, storeError(err, opportunityResource, "delete")
	}
	if res.Deleted() == 0 {
		return nil, apperrors.NewNotFoundError(opportunityResource)
	}
	return &repository.DeleteResult{Acknowledged: true, DeletedCount: res.Deleted()}, nil
}
