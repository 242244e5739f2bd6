package mongodb

import (
	"context"
	"errors"
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

const (
	applicationResource = "application"
	compensateTimeout   = 5 * time.Second
)

// ApplicationRepository stores applications and keeps the slot count of the
// opportunity collection in step with them.
type ApplicationRepository struct {
	applications  CollectionInterface
	opportunities CollectionInterface
	log           logger.Logger
	now           func() time.Time
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)

// NewApplicationRepository creates a repository over the named collections.
func NewApplicationRepository(db *mongo.Database, applications, opportunities string, log logger.Logger) *ApplicationRepository {
	return NewApplicationRepositoryWithCollections(
		NewMongoCollectionAdapter(db.Collection(applications)),
		NewMongoCollectionAdapter(db.Collection(opportunities)),
		log,
	)
}

// NewApplicationRepositoryWithCollections creates a repository over any
// CollectionInterface pair, used by tests.
func NewApplicationRepositoryWithCollections(applications, opportunities CollectionInterface, log logger.Logger) *ApplicationRepository {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &ApplicationRepository{
		applications:  applications,
		opportunities: opportunities,
		log:           log.WithComponent("application_repository"),
		now:           func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Apply takes one slot of the opportunity and records the application.
//
// The decrement is a single conditional update, so concurrent applicants can
// never push the count below zero. When the insert fails afterwards the slot
// and the previous volunteerInfo are given back.
func (r *ApplicationRepository) Apply(ctx context.Context, opportunityID string, a *model.Application) (*repository.InsertResult, error) {
	if opportunityID == "" {
		return nil, apperrors.NewValidationError("opportunity id is required").WithCode("MISSING_ID")
	}
	oid, err := parseObjectID(opportunityID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	filter := bson.M{
		model.FieldID: oid,
		"$expr":       bson.M{"$gt": bson.A{slotsExpr, 0}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: model.FieldNumberOfVolunteer, Value: bson.M{"$subtract": bson.A{slotsExpr, 1}}},
			{Key: model.FieldVolunteerInfo, Value: bson.M{"$literal": a.VolunteerInfo()}},
			{Key: model.FieldUpdatedAt, Value: now},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before model.Opportunity
	err = r.opportunities.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.noSlotError(ctx, oid)
	}
	if err != nil {
		return nil, storeError(err, opportunityResource, "reserve slot on")
	}

	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.Snapshot(&before)

	if _, err := r.applications.InsertOne(ctx, a); err != nil {
		r.log.WithContext(ctx).Errorf("insert application for %s failed, releasing slot: %v", opportunityID, err)
		r.releaseSlot(ctx, oid, before.VolunteerInfo)
		return nil, storeError(err, applicationResource, "create")
	}

	return &repository.InsertResult{Acknowledged: true, InsertedID: a.ID.Hex()}, nil
}

// noSlotError tells a missing opportunity apart from a full one.
func (r *ApplicationRepository) noSlotError(ctx context.Context, oid primitive.ObjectID) error {
	n, err := r.opportunities.CountDocuments(ctx, bson.M{model.FieldID: oid})
	if err != nil {
		return storeError(err, opportunityResource, "look up")
	}
	if n == 0 {
		return apperrors.NewNotFoundError(opportunityResource)
	}
	return apperrors.NewConflictError("no volunteer slots left").
		WithCode("NO_SLOTS").
		WithDetail("opportunityId", oid.Hex())
}

// releaseSlot undoes a reservation. It runs even when ctx is already done.
func (r *ApplicationRepository) releaseSlot(ctx context.Context, oid primitive.ObjectID, previous *model.VolunteerInfo) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	update := bson.M{"$inc": bson.M{model.FieldNumberOfVolunteer: 1}}
	if previous != nil {
		update["$set"] = bson.M{model.FieldVolunteerInfo: previous}
	} else {
		update["$unset"] = bson.M{model.FieldVolunteerInfo: ""}
	}
	if _, err := r.opportunities.UpdateOne(ctx, bson.M{model.FieldID: oid}, update); err != nil {
		r.log.WithContext(ctx).WithFields(map[string]interface{}{
			"opportunity_id": oid.Hex(),
		}).Errorf("failed to release volunteer slot: %v", err)
	}
}

// ListByVolunteer returns the applications submitted by one volunteer.
func (r *ApplicationRepository) ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*model.Application, error) {
	cur, err := r.applications.Find(ctx, bson.M{model.FieldVolunteerEmail: volunteerEmail})
	if err != nil {
		return nil, storeError(err, applicationResource, "list")
	}
	out, err := decodeAll[model.Application](ctx, cur)
	if err != nil {
		return nil, storeError(err, applicationResource, "decode")
	}
	return out, nil
}

// GetByID returns one application.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*model.Application, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var a model.Application
	if err := r.applications.FindOne(ctx, bson.M{model.FieldID: oid}).Decode(&a); err != nil {
		return nil, storeError(err, applicationResource, "get")
	}
	return &a, nil
}

// Delete removes exactly one application, then clears volunteerInfo on the
// opportunities of organizationEmail.
func (r *ApplicationRepository) Delete(ctx context.Context, id string, organizationEmail string) (*repository.DeleteResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	res, err := r.applications.DeleteOne(ctx, bson.M{model.FieldID: oid})
	if err != nil {
		return nil, storeError(err, applicationResource, "delete")
	}
	if res.Deleted() == 0 {
		return nil, apperrors.NewNotFoundError(applicationResource)
	}

	if organizationEmail != "" {
		filter := bson.M{
			model.FieldOrganizationEmail: organizationEmail,
			model.FieldVolunteerInfo:     bson.M{"$exists": true},
		}
		update := bson.M{"$unset": bson.M{model.FieldVolunteerInfo: ""}}
		if _, err := r.opportunities.UpdateMany(ctx, filter, update); err != nil {
			r.log.WithContext(ctx).WithFields(map[string]interface{}{
				"application_id":     id,
				"organization_email": organizationEmail,
			}).Warnf("application deleted but volunteerInfo was not cleared: %v", err)
		}
	}

	return &repository.DeleteResult{Acknowledged: true, DeletedCount: res.Deleted()}, nil
}
