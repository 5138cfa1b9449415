package engine

import (
	"context"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is a programmable Store for service tests: canned results in,
// recorded calls out.
type fakeStore struct {
	findDocs   []any
	findErr    error
	findOneDoc any
	findOneErr error
	aggDocs    []any
	aggErr     error
	count      int64
	countErr   error
	insertID   primitive.ObjectID
	insertErr  error
	matched    int64
	updateErr  error
	manyErr    error

	findFilter    bson.M
	findOpts      FindOptions
	findOneFilter bson.M
	countFilter   bson.M
	pipeline      []bson.M
	inserted      any
	updateFilter  bson.M
	update        any
	manyFilter    bson.M
	manyUpdate    any
}

func (f *fakeStore) Find(_ context.Context, _ string, filter bson.M, opts FindOptions, results any) error {
	f.findFilter = filter
	f.findOpts = opts
	if f.findErr != nil {
		return f.findErr
	}
	return appendDocs(results, f.findDocs)
}

func (f *fakeStore) FindOne(_ context.Context, _ string, filter bson.M, result any) error {
	f.findOneFilter = filter
	if f.findOneErr != nil {
		return f.findOneErr
	}
	if f.findOneDoc == nil {
		return ErrNoDocument
	}
	return copyDoc(f.findOneDoc, result)
}

func (f *fakeStore) Aggregate(_ context.Context, _ string, pipeline []bson.M, results any) error {
	f.pipeline = pipeline
	if f.aggErr != nil {
		return f.aggErr
	}
	return appendDocs(results, f.aggDocs)
}

func (f *fakeStore) Count(_ context.Context, _ string, filter bson.M) (int64, error) {
	f.countFilter = filter
	return f.count, f.countErr
}

func (f *fakeStore) InsertOne(_ context.Context, _ string, document any) (primitive.ObjectID, error) {
	f.inserted = document
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}
	if f.insertID.IsZero() {
		f.insertID = primitive.NewObjectID()
	}
	return f.insertID, nil
}

func (f *fakeStore) UpdateOne(_ context.Context, _ string, filter bson.M, update any) (int64, error) {
	f.updateFilter = filter
	f.update = update
	return f.matched, f.updateErr
}

func (f *fakeStore) UpdateMany(_ context.Context, _ string, filter bson.M, update any) (int64, error) {
	f.manyFilter = filter
	f.manyUpdate = update
	return f.matched, f.manyErr
}

// copyDoc round-trips a document through bson so the fake behaves like the
// driver's decoder.
func copyDoc(src, dst any) error {
	raw, err := bson.Marshal(src)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, dst)
}

func appendDocs(results any, docs []any) error {
	slice := reflect.ValueOf(results).Elem()
	elemType := slice.Type().Elem()
	for _, doc := range docs {
		elem := reflect.New(elemType)
		if err := copyDoc(doc, elem.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}
