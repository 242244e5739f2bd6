package mongodb

import (
	"errors"
	"regexp"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// parseObjectID rejects anything that is not a 24 character hex id.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewValidationError("invalid id").
			WithCode("INVALID_ID").
			WithDetail("id", id).
			WithCause(apperrors.ErrInvalidObject)
	}
	return oid, nil
}

// SearchFilter matches search as a case-insensitive literal substring of any
// of the fields. An empty search matches every document.
func SearchFilter(fields []string, search string) bson.M {
	if search == "" || len(fields) == 0 {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	if len(fields) == 1 {
		return bson.M{fields[0]: re}
	}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	return bson.M{"$or": or}
}

// FindOptions turns the sort and paging of q into driver options.
func FindOptions(q repository.ListQuery) *options.FindOptions {
	opts := options.Find()
	switch q.Sort {
	case repository.SortAsc:
		opts.SetSort(bson.D{{Key: model.FieldDeadLine, Value: 1}})
	case repository.SortDesc:
		opts.SetSort(bson.D{{Key: model.FieldDeadLine, Value: -1}})
	}
	if q.Size > 0 {
		opts.SetSkip(int64(q.Skip())).SetLimit(int64(q.Size))
	}
	return opts
}

// slotsExpr reads numberOfVolunteer as an int whatever type it was stored
// with. Strings are trimmed and read through a double so that " 5 " and "6.0"
// agree with SlotCount decoding; unreadable values count as 0.
var slotsExpr = bson.M{"$convert": bson.M{
	"input": bson.M{"$convert": bson.M{
		"input": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{bson.M{"$type": slotsField}, "string"}},
			bson.M{"$trim": bson.M{"input": slotsField}},
			slotsField,
		}},
		"to":      "double",
		"onError": 0,
		"onNull":  0,
	}},
	"to":      "int",
	"onError": 0,
	"onNull":  0,
}}

const slotsField = "$" + model.FieldNumberOfVolunteer

// storeError maps driver errors onto the application error taxonomy.
func storeError(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NewNotFoundError(resource)
	}
	return apperrors.NewInfrastructureError("failed to "+op+" "+resource).
		WithComponent("mongodb").
		WithCause(err)
}
