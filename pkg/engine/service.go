// Package engine implements the configuration-driven CRUD engine behind
// every resource: a generic data-access service composed with the
// population resolver, search compiler, and pagination calculator, all over
// a pluggable document store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/workshophq/backoffice/pkg/observability/logger"
)

// Config fixes the per-resource parameters of a Service instance.
type Config struct {
	// Resource is the registry name used to resolve population specs.
	Resource string
	// Collection is the backing store collection.
	Collection string
	// SearchFields lists the fields the search compiler matches against.
	// Empty means search is a no-op for this resource.
	SearchFields []string
	// DefaultSort orders list results when the caller does not specify a
	// sort. Defaults to most-recently-created first.
	DefaultSort bson.D
}

// ListQuery carries the caller-controlled parts of a list operation.
type ListQuery struct {
	// Filter holds structural filters, already reduced to store fields by
	// the controller. Owner scope and soft-delete exclusion are merged in
	// by the service and cannot be overridden here.
	Filter   bson.M
	Search   string
	Page     Page
	Sort     bson.D
	Populate []Populate
}

// Service is the resource-shape-agnostic persistence facade. One instance
// exists per resource type, parameterized by the resource's document struct.
type Service[T any, PT RecordPtr[T]] struct {
	store    Store
	registry *Registry
	cfg      Config
	log      logger.Logger
}

// NewService creates a resource service. The resource must already be
// registered so population specs can be resolved against it.
func NewService[T any, PT RecordPtr[T]](store Store, registry *Registry, cfg Config, log logger.Logger) (*Service[T, PT], error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Resource == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("resource and collection are required")
	}
	if _, ok := registry.Resource(cfg.Resource); !ok {
		return nil, fmt.Errorf("resource %q is not registered", cfg.Resource)
	}
	if len(cfg.DefaultSort) == 0 {
		cfg.DefaultSort = bson.D{{Key: "createdAt", Value: -1}}
	}
	return &Service[T, PT]{store: store, registry: registry, cfg: cfg, log: log}, nil
}

// List returns one page of non-deleted, owner-scoped records plus the total
// matching count before pagination.
func (s *Service[T, PT]) List(ctx context.Context, owner primitive.ObjectID, q ListQuery) ([]T, int64, error) {
	filter := bson.M{}
	for k, v := range q.Filter {
		filter[k] = v
	}
	// scope keys always win over caller filters
	filter["ownerId"] = owner
	filter["isDeleted"] = false
	if search := CompileSearch(s.cfg.SearchFields, q.Search); search != nil {
		filter["$and"] = []bson.M{search}
	}

	total, err := s.store.Count(ctx, s.cfg.Collection, filter)
	if err != nil {
		return nil, 0, s.storeErr("count", err)
	}

	sort := q.Sort
	if len(sort) == 0 {
		sort = s.cfg.DefaultSort
	}

	records := make([]T, 0, q.Page.Limit)
	if len(q.Populate) == 0 {
		opts := FindOptions{Sort: sort, Skip: q.Page.Skip(), Limit: int64(q.Page.Limit)}
		if err := s.store.Find(ctx, s.cfg.Collection, filter, opts, &records); err != nil {
			return nil, 0, s.storeErr("find", err)
		}
		return records, total, nil
	}

	stages, err := CompilePopulate(s.registry, s.cfg.Resource, q.Populate)
	if err != nil {
		return nil, 0, s.storeErr("populate", err)
	}
	// populate only the page being returned
	pipeline := []bson.M{
		{"$match": filter},
		{"$sort": sort},
		{"$skip": q.Page.Skip()},
		{"$limit": int64(q.Page.Limit)},
	}
	pipeline = append(pipeline, stages...)
	if err := s.store.Aggregate(ctx, s.cfg.Collection, pipeline, &records); err != nil {
		return nil, 0, s.storeErr("aggregate", err)
	}
	return records, total, nil
}

// GetByID looks a record up directly by id within the owner scope. Direct
// lookups intentionally skip the soft-delete exclusion so edit flows can
// still resolve a previously deleted reference.
func (s *Service[T, PT]) GetByID(ctx context.Context, owner, id primitive.ObjectID, populate []Populate) (PT, error) {
	filter := bson.M{"_id": id, "ownerId": owner}

	if len(populate) == 0 {
		var record T
		err := s.store.FindOne(ctx, s.cfg.Collection, filter, &record)
		if errors.Is(err, ErrNoDocument) {
			return nil, s.notFound(id)
		}
		if err != nil {
			return nil, s.storeErr("findOne", err)
		}
		return PT(&record), nil
	}

	stages, err := CompilePopulate(s.registry, s.cfg.Resource, populate)
	if err != nil {
		return nil, s.storeErr("populate", err)
	}
	pipeline := append([]bson.M{{"$match": filter}}, stages...)

	var records []T
	if err := s.store.Aggregate(ctx, s.cfg.Collection, pipeline, &records); err != nil {
		return nil, s.storeErr("aggregate", err)
	}
	if len(records) == 0 {
		return nil, s.notFound(id)
	}
	return PT(&records[0]), nil
}

// Create stamps ownership and timestamps onto the record and persists it.
// A record created as the owner's default demotes any previous default.
func (s *Service[T, PT]) Create(ctx context.Context, owner primitive.ObjectID, record PT) (PT, error) {
	record.SetOwner(owner)
	record.Stamp(time.Now().UTC())

	id, err := s.store.InsertOne(ctx, s.cfg.Collection, record)
	if errors.Is(err, ErrDuplicateKey) {
		return nil, &ConflictError{Resource: s.cfg.Resource, Message: fmt.Sprintf("%s already exists", s.cfg.Resource)}
	}
	if err != nil {
		return nil, s.storeErr("insert", err)
	}
	record.SetRecordID(id)

	if record.Default() {
		if err := s.enforceDefault(ctx, owner, id); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// Update merges the patch into the existing record. The id, owner, and
// creation timestamp can never change through a patch.
func (s *Service[T, PT]) Update(ctx context.Context, owner, id primitive.ObjectID, patch bson.M) (PT, error) {
	clean := bson.M{}
	for k, v := range patch {
		switch k {
		case "_id", "id", "ownerId", "createdAt":
			continue
		}
		clean[k] = v
	}
	clean["updatedAt"] = time.Now().UTC()

	filter := bson.M{"_id": id, "ownerId": owner}
	matched, err := s.store.UpdateOne(ctx, s.cfg.Collection, filter, bson.M{"$set": clean})
	if errors.Is(err, ErrDuplicateKey) {
		return nil, &ConflictError{Resource: s.cfg.Resource, Message: fmt.Sprintf("%s already exists", s.cfg.Resource)}
	}
	if err != nil {
		return nil, s.storeErr("update", err)
	}
	if matched == 0 {
		return nil, s.notFound(id)
	}

	if isDefault, _ := clean["isDefault"].(bool); isDefault {
		if err := s.enforceDefault(ctx, owner, id); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, owner, id, nil)
}

// SoftDelete marks the record deleted. The document stays in storage and
// remains addressable by direct id lookup.
func (s *Service[T, PT]) SoftDelete(ctx context.Context, owner, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "ownerId": owner}
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}}

	matched, err := s.store.UpdateOne(ctx, s.cfg.Collection, filter, update)
	if err != nil {
		return s.storeErr("softDelete", err)
	}
	if matched == 0 {
		return s.notFound(id)
	}
	return nil
}

// Exists reports whether another non-deleted record of this owner carries
// the given field value. Used by the uniqueness guard; exclude skips the
// record currently being updated.
func (s *Service[T, PT]) Exists(ctx context.Context, owner primitive.ObjectID, field string, value any, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"ownerId": owner, "isDeleted": false, field: value}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	n, err := s.store.Count(ctx, s.cfg.Collection, filter)
	if err != nil {
		return false, s.storeErr("count", err)
	}
	return n > 0, nil
}

// enforceDefault keeps at most one default record per owner. The swap is a
// single multi-document update keyed by owner, so two concurrent "set as
// default" requests cannot leave two records flagged: each document's final
// flag comes from comparing its own _id against the target id.
func (s *Service[T, PT]) enforceDefault(ctx context.Context, owner, id primitive.ObjectID) error {
	filter := bson.M{"ownerId": owner, "isDeleted": false}
	update := []bson.M{
		{"$set": bson.M{"isDefault": bson.M{"$eq": bson.A{"$_id", id}}}},
	}
	if _, err := s.store.UpdateMany(ctx, s.cfg.Collection, filter, update); err != nil {
		return s.storeErr("enforceDefault", err)
	}
	return nil
}

func (s *Service[T, PT]) notFound(id primitive.ObjectID) error {
	return &NotFoundError{Resource: s.cfg.Resource, ID: id.Hex()}
}

func (s *Service[T, PT]) storeErr(op string, err error) error {
	wrapped := &StoreError{Op: s.cfg.Resource + "." + op, Err: err}
	if s.log != nil {
		s.log.Error("store operation failed", "op", wrapped.Op, "error", err)
	}
	return wrapped
}
