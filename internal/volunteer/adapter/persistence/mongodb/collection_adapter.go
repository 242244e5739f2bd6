package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionInterface is the subset of *mongo.Collection the stores use.
type CollectionInterface interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, doc interface{}) (interface{}, error)
	FindOne(ctx context.Context, filter interface{}) SingleResultInterface
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (UpdateResultInterface, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}) (UpdateResultInterface, error)
	DeleteOne(ctx context.Context, filter interface{}) (DeleteResultInterface, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) SingleResultInterface
}

type SingleResultInterface interface {
	Decode(v interface{}) error
}

type UpdateResultInterface interface {
	Matched() int64
	Modified() int64
}

type DeleteResultInterface interface{ Deleted() int64 }

type CursorInterface interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Close(ctx context.Context) error
	Err() error
}

// MongoCollectionAdapter makes *mongo.Collection satisfy CollectionInterface.
type MongoCollectionAdapter struct {
	col *mongo.Collection
}

func NewMongoCollectionAdapter(col *mongo.Collection) *MongoCollectionAdapter {
	return &MongoCollectionAdapter{col: col}
}

func (m *MongoCollectionAdapter) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return m.col.CountDocuments(ctx, filter, opts...)
}

func (m *MongoCollectionAdapter) InsertOne(ctx context.Context, doc interface{}) (interface{}, error) {
	res, err := m.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (m *MongoCollectionAdapter) FindOne(ctx context.Context, filter interface{}) SingleResultInterface {
	return &MongoSingleResultAdapter{res: m.col.FindOne(ctx, filter)}
}

func (m *MongoCollectionAdapter) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (UpdateResultInterface, error) {
	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &MongoUpdateResultAdapter{matched: res.MatchedCount, modified: res.ModifiedCount}, nil
}

func (m *MongoCollectionAdapter) UpdateMany(ctx context.Context, filter interface{}, update interface{}) (UpdateResultInterface, error) {
	res, err := m.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &MongoUpdateResultAdapter{matched: res.MatchedCount, modified: res.ModifiedCount}, nil
}

func (m *MongoCollectionAdapter) DeleteOne(ctx context.Context, filter interface{}) (DeleteResultInterface, error) {
	res, err := m.col.DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &MongoDeleteResultAdapter{deleted: res.DeletedCount}, nil
}

func (m *MongoCollectionAdapter) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error) {
	cur, err := m.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &MongoCursorAdapter{cur: cur}, nil
}

func (m *MongoCollectionAdapter) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) SingleResultInterface {
	return &MongoSingleResultAdapter{res: m.col.FindOneAndUpdate(ctx, filter, update, opts...)}
}

// --- Adapters for result types ---
type MongoSingleResultAdapter struct {
	res *mongo.SingleResult
}

func (m *MongoSingleResultAdapter) Decode(v interface{}) error {
	return m.res.Decode(v)
}

// MongoUpdateResultAdapter wraps the matched and modified counts
type MongoUpdateResultAdapter struct {
	matched  int64
	modified int64
}

func (m *MongoUpdateResultAdapter) Matched() int64  { return m.matched }
func (m *MongoUpdateResultAdapter) Modified() int64 { return m.modified }

// MongoDeleteResultAdapter wraps the deleted count
type MongoDeleteResultAdapter struct {
	deleted int64
}

func (m *MongoDeleteResultAdapter) Deleted() int64 { return m.deleted }

type MongoCursorAdapter struct {
	cur *mongo.Cursor
}

func (m *MongoCursorAdapter) Next(ctx context.Context) bool   { return m.cur.Next(ctx) }
func (m *MongoCursorAdapter) Decode(val interface{}) error    { return m.cur.Decode(val) }
func (m *MongoCursorAdapter) Close(ctx context.Context) error { return m.cur.Close(ctx) }
func (m *MongoCursorAdapter) Err() error                      { return m.cur.Err() }

// decodeAll drains the cursor into a slice and closes it.
func decodeAll[T any](ctx context.Context, cur CursorInterface) ([]*T, error) {
	defer cur.Close(ctx)

	out := make([]*T, 0)
	for cur.Next(ctx) {
		v := new(T)
		if err := cur.Decode(v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
