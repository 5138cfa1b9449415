package engine

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/workshophq/backoffice/pkg/store/mongodb"
)

// MongoStore adapts the MongoDB adapter to the engine's Store contract,
// translating driver errors into the engine sentinels.
type MongoStore struct {
	adapter *mongodb.Adapter
}

// NewMongoStore creates a MongoStore over an established adapter.
func NewMongoStore(adapter *mongodb.Adapter) (*MongoStore, error) {
	if adapter == nil {
		return nil, fmt.Errorf("mongodb adapter is required")
	}
	return &MongoStore{adapter: adapter}, nil
}

// Find queries the collection with sort/skip/limit directives.
func (s *MongoStore) Find(ctx context.Context, collection string, filter bson.M, opts FindOptions, results any) error {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	return s.adapter.Find(ctx, collection, filter, findOpts, results)
}

// FindOne decodes the first matching document into result.
func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M, result any) error {
	err := s.adapter.FindOne(ctx, collection, filter, result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	return err
}

// Aggregate runs the pipeline and decodes all results.
func (s *MongoStore) Aggregate(ctx context.Context, collection string, pipeline []bson.M, results any) error {
	return s.adapter.Aggregate(ctx, collection, pipeline, results)
}

// Count counts documents matching the filter.
func (s *MongoStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return s.adapter.CountDocuments(ctx, collection, filter)
}

// InsertOne inserts a document and returns its assigned id.
func (s *MongoStore) InsertOne(ctx context.Context, collection string, document any) (primitive.ObjectID, error) {
	result, err := s.adapter.InsertOne(ctx, collection, document)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return primitive.NilObjectID, err
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

// UpdateOne updates the first matching document and returns the matched count.
func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter bson.M, update any) (int64, error) {
	result, err := s.adapter.UpdateOne(ctx, collection, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return 0, err
	}
	return result.MatchedCount, nil
}

// UpdateMany updates all matching documents and returns the matched count.
func (s *MongoStore) UpdateMany(ctx context.Context, collection string, filter bson.M, update any) (int64, error) {
	result, err := s.adapter.UpdateMany(ctx, collection, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}
