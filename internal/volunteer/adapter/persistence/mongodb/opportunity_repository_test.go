package mongodb

import (
	"context"
	"errors"
	"testing"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OpportunityRepositoryTestSuite struct {
	suite.Suite
	col  *mockCollection
	repo *OpportunityRepository
	ctx  context.Context
}

func (s *OpportunityRepositoryTestSuite) SetupTest() {
	s.col = &mockCollection{}
	s.repo = NewOpportunityRepositoryWithCollection(s.col, []string{"title"}, nil)
	s.ctx = context.Background()
}

func (s *OpportunityRepositoryTestSuite) TestCreate() {
	s.col.On("InsertOne", s.ctx, mock.AnythingOfType("*model.Opportunity")).Return(primitive.NewObjectID(), nil)

	o := &model.Opportunity{Title: "Beach cleanup", VolunteerInfo: &model.VolunteerInfo{Email: "x@example.com"}}
	res, err := s.repo.Create(s.ctx, o)
	require.NoError(s.T(), err)

	assert.True(s.T(), res.Acknowledged)
	assert.Equal(s.T(), o.ID.Hex(), res.InsertedID)
	assert.False(s.T(), o.CreatedAt.IsZero())
	assert.Nil(s.T(), o.VolunteerInfo)
}

func (s *OpportunityRepositoryTestSuite) TestCreate_DriverFailure() {
	s.col.On("InsertOne", s.ctx, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := s.repo.Create(s.ctx, &model.Opportunity{})
	assert.Equal(s.T(), 500, apperrors.HTTPStatus(err))
}

func (s *OpportunityRepositoryTestSuite) TestList_DecodesLegacyDocuments() {
	docs := []interface{}{
		bson.M{"_id": primitive.NewObjectID(), "title": "A", "numberOfVolunteer": "4", "deadLine": "2026-02-01"},
		bson.M{"_id": primitive.NewObjectID(), "title": "B", "numberOfVolunteer": int64(2), "deadLine": "2026-03-01T00:00:00Z"},
	}
	filter := bson.M{"title": primitive.Regex{Pattern: "a", Options: "i"}}
	s.col.On("Find", s.ctx, filter, mock.Anything).Return(&bsonCursor{docs: docs}, nil)

	out, err := s.repo.List(s.ctx, repository.ListQuery{Search: "a", Sort: repository.SortAsc, Size: 10})
	require.NoError(s.T(), err)
	require.Len(s.T(), out, 2)
	assert.Equal(s.T(), model.SlotCount(4), out[0].NumberOfVolunteer)
	assert.Equal(s.T(), model.SlotCount(2), out[1].NumberOfVolunteer)
	assert.Equal(s.T(), 2026, out[0].DeadLine.Year())
}

func (s *OpportunityRepositoryTestSuite) TestListByOwner() {
	s.col.On("Find", s.ctx, bson.M{"organizationEmail": "org@example.com"}, mock.Anything).
		Return(&bsonCursor{}, nil)

	out, err := s.repo.ListByOwner(s.ctx, "org@example.com")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), out)
	assert.NotNil(s.T(), out)
}

func (s *OpportunityRepositoryTestSuite) TestCount() {
	s.col.On("CountDocuments", s.ctx, bson.M{}).Return(int64(7), nil)

	n, err := s.repo.Count(s.ctx, "")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(7), n)
}

func (s *OpportunityRepositoryTestSuite) TestGetByID() {
	id := primitive.NewObjectID()
	s.col.On("FindOne", s.ctx, bson.M{"_id": id}).
		Return(&bsonResult{doc: bson.M{"_id": id, "title": "A", "numberOfVolunteer": 3.0}})

	o, err := s.repo.GetByID(s.ctx, id.Hex())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), id, o.ID)
	assert.Equal(s.T(), model.SlotCount(3), o.NumberOfVolunteer)
}

func (s *OpportunityRepositoryTestSuite) TestGetByID_Errors() {
	_, err := s.repo.GetByID(s.ctx, "xyz")
	assert.Equal(s.T(), 400, apperrors.HTTPStatus(err))

	id := primitive.NewObjectID()
	s.col.On("FindOne", s.ctx, bson.M{"_id": id}).Return(&bsonResult{err: mongo.ErrNoDocuments})
	_, err = s.repo.GetByID(s.ctx, id.Hex())
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func (s *OpportunityRepositoryTestSuite) TestUpdate() {
	id := primitive.NewObjectID()
	title := "New"
	s.col.On("UpdateOne", s.ctx, bson.M{"_id": id}, mock.MatchedBy(func(u bson.M) bool {
		set, ok := u["$set"].(bson.M)
		_, hasOwner := set["organizationEmail"]
		_, hasStamp := set["updatedAt"]
		return ok && set["title"] == "New" && !hasOwner && hasStamp
	})).Return(updateResult{matched: 1, modified: 1}, nil)

	res, err := s.repo.Update(s.ctx, id.Hex(), &model.OpportunityPatch{Title: &title})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), &repository.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, res)
}

func (s *OpportunityRepositoryTestSuite) TestUpdate_NotFoundAndEmpty() {
	id := primitive.NewObjectID()
	title := "New"
	s.col.On("UpdateOne", s.ctx, bson.M{"_id": id}, mock.Anything).Return(updateResult{}, nil)

	_, err := s.repo.Update(s.ctx, id.Hex(), &model.OpportunityPatch{Title: &title})
	assert.True(s.T(), apperrors.IsNotFound(err))

	_, err = s.repo.Update(s.ctx, id.Hex(), &model.OpportunityPatch{})
	assert.True(s.T(), apperrors.IsValidation(err))
}

func (s *OpportunityRepositoryTestSuite) TestDelete() {
	id := primitive.NewObjectID()
	missing := primitive.NewObjectID()
	s.col.On("DeleteOne", s.ctx, bson.M{"_id": id}).Return(deleteResult{deleted: 1}, nil)
	s.col.On("DeleteOne", s.ctx, bson.M{"_id": missing}).Return(deleteResult{}, nil)

	res, err := s.repo.Delete(s.ctx, id.Hex())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), res.DeletedCount)

	_, err = s.repo.Delete(s.ctx, missing.Hex())
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func TestOpportunityRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(OpportunityRepositoryTestSuite))
}
