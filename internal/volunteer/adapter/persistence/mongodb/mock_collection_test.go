package mongodb

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mockCollection is a testify mock of CollectionInterface.
type mockCollection struct {
	mock.Mock
}

var _ CollectionInterface = (*mockCollection)(nil)

func (m *mockCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCollection) InsertOne(ctx context.Context, doc interface{}) (interface{}, error) {
	args := m.Called(ctx, doc)
	return args.Get(0), args.Error(1)
}

func (m *mockCollection) FindOne(ctx context.Context, filter interface{}) SingleResultInterface {
	args := m.Called(ctx, filter)
	return args.Get(0).(SingleResultInterface)
}

func (m *mockCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (UpdateResultInterface, error) {
	args := m.Called(ctx, filter, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(UpdateResultInterface), args.Error(1)
}

func (m *mockCollection) UpdateMany(ctx context.Context, filter interface{}, update interface{}) (UpdateResultInterface, error) {
	args := m.Called(ctx, filter, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(UpdateResultInterface), args.Error(1)
}

func (m *mockCollection) DeleteOne(ctx context.Context, filter interface{}) (DeleteResultInterface, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(DeleteResultInterface), args.Error(1)
}

func (m *mockCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(CursorInterface), args.Error(1)
}

func (m *mockCollection) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) SingleResultInterface {
	args := m.Called(ctx, filter, update)
	return args.Get(0).(SingleResultInterface)
}

// bsonResult decodes a document through a real BSON round trip so that the
// model codecs run.
type bsonResult struct {
	doc interface{}
	err error
}

func (r *bsonResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	data, err := bson.Marshal(r.doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, v)
}

type bsonCursor struct {
	docs []interface{}
	pos  int
}

func (c *bsonCursor) Next(ctx context.Context) bool {
	c.pos++
	return c.pos <= len(c.docs)
}

func (c *bsonCursor) Decode(val interface{}) error {
	return (&bsonResult{doc: c.docs[c.pos-1]}).Decode(val)
}

func (c *bsonCursor) Close(ctx context.Context) error { return nil }
func (c *bsonCursor) Err() error                      { return nil }

type updateResult struct{ matched, modified int64 }

func (u updateResult) Matched() int64  { return u.matched }
func (u updateResult) Modified() int64 { return u.modified }

type deleteResult struct{ deleted int64 }

func (d deleteResult) Deleted() int64 { return d.deleted }
