package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FindOptions carries sort and window directives for a Find.
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// Store is the minimal document-store contract the generic service is built
// on. Implementations translate driver errors to ErrNoDocument and
// ErrDuplicateKey; everything else propagates as-is and is wrapped into a
// StoreError by the service.
type Store interface {
	Find(ctx context.Context, collection string, filter bson.M, opts FindOptions, results any) error
	FindOne(ctx context.Context, collection string, filter bson.M, result any) error
	Aggregate(ctx context.Context, collection string, pipeline []bson.M, results any) error
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
	InsertOne(ctx context.Context, collection string, document any) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, collection string, filter bson.M, update any) (int64, error)
	UpdateMany(ctx context.Context, collection string, filter bson.M, update any) (int64, error)
}
