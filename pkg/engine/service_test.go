package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/workshophq/backoffice/pkg/observability/logger"
)

type widget struct {
	Envelope `bson:",inline"`

	Name  string `bson:"name"`
	Brand any    `bson:"brand,omitempty"`
}

func widgetService(t *testing.T, store Store) *Service[widget, *widget] {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register(Resource{Name: "brands", Collection: "brands"}); err != nil {
		t.Fatal(err)
	}
	err := reg.Register(Resource{
		Name:       "widgets",
		Collection: "widgets",
		Relationships: map[string]Relationship{
			"brand": {Resource: "brands"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	svc, err := NewService[widget, *widget](store, reg, Config{
		Resource:     "widgets",
		Collection:   "widgets",
		SearchFields: []string{"name"},
	}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestNewServiceValidation(t *testing.T) {
	reg := NewRegistry()
	store := &fakeStore{}

	if _, err := NewService[widget, *widget](nil, reg, Config{Resource: "w", Collection: "w"}, logger.Nop()); err == nil {
		t.Error("expected error without store")
	}
	if _, err := NewService[widget, *widget](store, reg, Config{Collection: "w"}, logger.Nop()); err == nil {
		t.Error("expected error without resource name")
	}
	if _, err := NewService[widget, *widget](store, reg, Config{Resource: "w", Collection: "w"}, logger.Nop()); err == nil {
		t.Error("expected error for unregistered resource")
	}
}

func TestServiceListScoping(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeStore{count: 12, findDocs: []any{
		widget{Name: "alpha"},
		widget{Name: "beta"},
	}}
	svc := widgetService(t, store)

	records, total, err := svc.List(context.Background(), owner, ListQuery{
		Filter: bson.M{"name": "alpha", "ownerId": primitive.NewObjectID(), "isDeleted": true},
		Page:   NewPage(2, 10, DefaultLimit),
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 12 || len(records) != 2 {
		t.Errorf("got total=%d len=%d, want 12 and 2", total, len(records))
	}

	// caller-supplied scope keys must never win
	if store.findFilter["ownerId"] != owner {
		t.Errorf("ownerId scope overridden: %v", store.findFilter["ownerId"])
	}
	if store.findFilter["isDeleted"] != false {
		t.Errorf("soft-delete exclusion overridden: %v", store.findFilter["isDeleted"])
	}
	if store.findFilter["name"] != "alpha" {
		t.Errorf("structural filter dropped: %v", store.findFilter)
	}
	if store.findOpts.Skip != 10 || store.findOpts.Limit != 10 {
		t.Errorf("pagination not applied: %+v", store.findOpts)
	}
	if len(store.findOpts.Sort) == 0 || store.findOpts.Sort[0].Key != "createdAt" {
		t.Errorf("default sort not applied: %v", store.findOpts.Sort)
	}
}

func TestServiceListSearch(t *testing.T) {
	store := &fakeStore{}
	svc := widgetService(t, store)

	_, _, err := svc.List(context.Background(), primitive.NewObjectID(), ListQuery{
		Search: "bolt",
		Page:   NewPage(1, 10, DefaultLimit),
	})
	if err != nil {
		t.Fatal(err)
	}

	and, ok := store.findFilter["$and"].([]bson.M)
	if !ok || len(and) != 1 {
		t.Fatalf("expected search merged under $and, got %v", store.findFilter)
	}
	if _, ok := and[0]["$or"]; !ok {
		t.Errorf("expected $or search clause, got %v", and[0])
	}
}

func TestServiceListPopulate(t *testing.T) {
	store := &fakeStore{count: 1, aggDocs: []any{widget{Name: "alpha"}}}
	svc := widgetService(t, store)

	records, _, err := svc.List(context.Background(), primitive.NewObjectID(), ListQuery{
		Page:     NewPage(1, 10, DefaultLimit),
		Populate: Fields("brand"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}

	// $match, $sort, $skip, $limit, then lookup+set
	if len(store.pipeline) != 6 {
		t.Fatalf("expected 6 pipeline stages, got %d: %v", len(store.pipeline), store.pipeline)
	}
	if _, ok := store.pipeline[0]["$match"]; !ok {
		t.Errorf("pipeline must start with $match: %v", store.pipeline[0])
	}
	if _, ok := store.pipeline[4]["$lookup"]; !ok {
		t.Errorf("expected lookup after pagination stages: %v", store.pipeline[4])
	}
}

func TestServiceListUnknownPopulatePath(t *testing.T) {
	store := &fakeStore{}
	svc := widgetService(t, store)

	_, _, err := svc.List(context.Background(), primitive.NewObjectID(), ListQuery{
		Page:     NewPage(1, 10, DefaultLimit),
		Populate: Fields("name"),
	})
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError for bad populate path, got %v", err)
	}
}

func TestServiceGetByID(t *testing.T) {
	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()

	t.Run("direct lookup skips the soft-delete filter", func(t *testing.T) {
		store := &fakeStore{findOneDoc: widget{Envelope: Envelope{ID: id, IsDeleted: true}, Name: "gone"}}
		svc := widgetService(t, store)

		record, err := svc.GetByID(context.Background(), owner, id, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !record.IsDeleted {
			t.Error("expected the deleted record back")
		}
		if _, scoped := store.findOneFilter["isDeleted"]; scoped {
			t.Errorf("direct lookup must not filter on isDeleted: %v", store.findOneFilter)
		}
		if store.findOneFilter["_id"] != id || store.findOneFilter["ownerId"] != owner {
			t.Errorf("lookup not id+owner scoped: %v", store.findOneFilter)
		}
	})

	t.Run("missing document maps to NotFoundError", func(t *testing.T) {
		store := &fakeStore{findOneErr: ErrNoDocument}
		svc := widgetService(t, store)

		_, err := svc.GetByID(context.Background(), owner, id, nil)
		if !IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("populated lookup aggregates", func(t *testing.T) {
		store := &fakeStore{aggDocs: []any{widget{Envelope: Envelope{ID: id}, Name: "alpha"}}}
		svc := widgetService(t, store)

		record, err := svc.GetByID(context.Background(), owner, id, Fields("brand"))
		if err != nil {
			t.Fatal(err)
		}
		if record.Name != "alpha" {
			t.Errorf("unexpected record %+v", record)
		}
		if _, ok := store.pipeline[0]["$match"]; !ok {
			t.Errorf("expected $match first, got %v", store.pipeline)
		}
	})

	t.Run("empty aggregation maps to NotFoundError", func(t *testing.T) {
		store := &fakeStore{}
		svc := widgetService(t, store)

		_, err := svc.GetByID(context.Background(), owner, id, Fields("brand"))
		if !IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestServiceCreate(t *testing.T) {
	owner := primitive.NewObjectID()

	t.Run("stamps ownership, timestamps, and id", func(t *testing.T) {
		store := &fakeStore{}
		svc := widgetService(t, store)

		created, err := svc.Create(context.Background(), owner, &widget{Envelope: NewEnvelope(), Name: "alpha"})
		if err != nil {
			t.Fatal(err)
		}
		if created.OwnerID != owner {
			t.Errorf("owner not stamped: %v", created.OwnerID)
		}
		if created.ID != store.insertID {
			t.Errorf("assigned id not set: %v", created.ID)
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Error("timestamps not stamped")
		}
		if store.manyUpdate != nil {
			t.Error("non-default create must not sweep defaults")
		}
	})

	t.Run("default record triggers the single-update sweep", func(t *testing.T) {
		store := &fakeStore{}
		svc := widgetService(t, store)

		created, err := svc.Create(context.Background(), owner, &widget{
			Envelope: Envelope{IsActive: true, IsDefault: true},
			Name:     "alpha",
		})
		if err != nil {
			t.Fatal(err)
		}
		if store.manyFilter["ownerId"] != owner || store.manyFilter["isDeleted"] != false {
			t.Errorf("sweep filter not owner scoped: %v", store.manyFilter)
		}
		stages, ok := store.manyUpdate.([]bson.M)
		if !ok || len(stages) != 1 {
			t.Fatalf("sweep must be a single pipeline update, got %v", store.manyUpdate)
		}
		set := stages[0]["$set"].(bson.M)
		eq := set["isDefault"].(bson.M)["$eq"].(bson.A)
		if eq[0] != "$_id" || eq[1] != created.ID {
			t.Errorf("sweep must compare each _id against the new default: %v", eq)
		}
	})

	t.Run("duplicate key maps to ConflictError", func(t *testing.T) {
		store := &fakeStore{insertErr: ErrDuplicateKey}
		svc := widgetService(t, store)

		_, err := svc.Create(context.Background(), owner, &widget{Envelope: NewEnvelope(), Name: "alpha"})
		if !IsConflict(err) {
			t.Errorf("expected ConflictError, got %v", err)
		}
	})
}

func TestServiceUpdate(t *testing.T) {
	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()

	t.Run("protected fields are stripped from the patch", func(t *testing.T) {
		store := &fakeStore{matched: 1, findOneDoc: widget{Envelope: Envelope{ID: id}, Name: "renamed"}}
		svc := widgetService(t, store)

		_, err := svc.Update(context.Background(), owner, id, bson.M{
			"name":      "renamed",
			"_id":       primitive.NewObjectID(),
			"id":        "abc",
			"ownerId":   primitive.NewObjectID(),
			"createdAt": time.Now(),
		})
		if err != nil {
			t.Fatal(err)
		}

		set := store.update.(bson.M)["$set"].(bson.M)
		for _, field := range []string{"_id", "id", "ownerId", "createdAt"} {
			if _, present := set[field]; present {
				t.Errorf("protected field %q leaked into patch", field)
			}
		}
		if set["name"] != "renamed" {
			t.Errorf("patch field dropped: %v", set)
		}
		if _, present := set["updatedAt"]; !present {
			t.Error("updatedAt not stamped")
		}
	})

	t.Run("no match maps to NotFoundError", func(t *testing.T) {
		store := &fakeStore{matched: 0}
		svc := widgetService(t, store)

		_, err := svc.Update(context.Background(), owner, id, bson.M{"name": "x"})
		if !IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("setting isDefault sweeps the owner's records", func(t *testing.T) {
		store := &fakeStore{matched: 1, findOneDoc: widget{Envelope: Envelope{ID: id, IsDefault: true}}}
		svc := widgetService(t, store)

		if _, err := svc.Update(context.Background(), owner, id, bson.M{"isDefault": true}); err != nil {
			t.Fatal(err)
		}
		if store.manyUpdate == nil {
			t.Error("expected default sweep on isDefault=true")
		}
	})

	t.Run("clearing isDefault does not sweep", func(t *testing.T) {
		store := &fakeStore{matched: 1, findOneDoc: widget{Envelope: Envelope{ID: id}}}
		svc := widgetService(t, store)

		if _, err := svc.Update(context.Background(), owner, id, bson.M{"isDefault": false}); err != nil {
			t.Fatal(err)
		}
		if store.manyUpdate != nil {
			t.Error("unexpected sweep on isDefault=false")
		}
	})
}

func TestServiceSoftDelete(t *testing.T) {
	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()

	t.Run("marks deleted without removing", func(t *testing.T) {
		store := &fakeStore{matched: 1}
		svc := widgetService(t, store)

		if err := svc.SoftDelete(context.Background(), owner, id); err != nil {
			t.Fatal(err)
		}
		set := store.update.(bson.M)["$set"].(bson.M)
		if set["isDeleted"] != true {
			t.Errorf("expected isDeleted=true, got %v", set)
		}
		if store.updateFilter["_id"] != id || store.updateFilter["ownerId"] != owner {
			t.Errorf("delete not id+owner scoped: %v", store.updateFilter)
		}
	})

	t.Run("no match maps to NotFoundError", func(t *testing.T) {
		store := &fakeStore{matched: 0}
		svc := widgetService(t, store)

		if err := svc.SoftDelete(context.Background(), owner, id); !IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestServiceExists(t *testing.T) {
	owner := primitive.NewObjectID()
	exclude := primitive.NewObjectID()

	store := &fakeStore{count: 1}
	svc := widgetService(t, store)

	exists, err := svc.Exists(context.Background(), owner, "order", 3, exclude)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("expected exists=true for count>0")
	}
	if store.countFilter["order"] != 3 || store.countFilter["isDeleted"] != false {
		t.Errorf("unexpected filter: %v", store.countFilter)
	}
	ne, ok := store.countFilter["_id"].(bson.M)
	if !ok || ne["$ne"] != exclude {
		t.Errorf("exclusion missing: %v", store.countFilter["_id"])
	}

	store.count = 0
	exists, err = svc.Exists(context.Background(), owner, "order", 3, primitive.NilObjectID)
	if err != nil || exists {
		t.Errorf("expected exists=false, got %v, %v", exists, err)
	}
	if _, present := store.countFilter["_id"]; present {
		t.Errorf("nil exclusion must not constrain _id: %v", store.countFilter)
	}
}
