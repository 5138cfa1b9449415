package engine

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func vehicleRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	resources := []Resource{
		{Name: "brands", Collection: "brands"},
		{Name: "customers", Collection: "customers"},
		{Name: "vehiclemodels", Collection: "vehiclemodels", Relationships: map[string]Relationship{
			"brand": {Resource: "brands"},
		}},
		{Name: "vehicles", Collection: "vehicles", Relationships: map[string]Relationship{
			"customer": {Resource: "customers"},
			"model":    {Resource: "vehiclemodels"},
		}},
	}
	for _, res := range resources {
		if err := reg.Register(res); err != nil {
			t.Fatalf("register %s: %v", res.Name, err)
		}
	}
	return reg
}

func TestCompilePopulate(t *testing.T) {
	reg := vehicleRegistry(t)

	t.Run("empty spec compiles to nothing", func(t *testing.T) {
		stages, err := CompilePopulate(reg, "vehicles", nil)
		if err != nil || stages != nil {
			t.Errorf("expected no stages, got %v, %v", stages, err)
		}
	})

	t.Run("single field compiles to lookup plus set", func(t *testing.T) {
		stages, err := CompilePopulate(reg, "vehicles", Fields("customer"))
		if err != nil {
			t.Fatal(err)
		}
		if len(stages) != 2 {
			t.Fatalf("expected 2 stages, got %d: %v", len(stages), stages)
		}
		lookup := stages[0]["$lookup"].(bson.M)
		if lookup["from"] != "customers" || lookup["localField"] != "customer" || lookup["foreignField"] != "_id" {
			t.Errorf("unexpected lookup: %v", lookup)
		}
		set := stages[1]["$set"].(bson.M)
		first := set["customer"].(bson.M)["$first"]
		if first != "$customer" {
			t.Errorf("expected $first collapse, got %v", set)
		}
	})

	t.Run("field list compiles one lookup per field", func(t *testing.T) {
		stages, err := CompilePopulate(reg, "vehicles", Fields("customer", "model"))
		if err != nil {
			t.Fatal(err)
		}
		if len(stages) != 4 {
			t.Fatalf("expected 4 stages, got %d", len(stages))
		}
	})

	t.Run("select projects the inlined record", func(t *testing.T) {
		stages, err := CompilePopulate(reg, "vehicles", []Populate{
			{Path: "customer", Select: []string{"firstName", "lastName"}},
		})
		if err != nil {
			t.Fatal(err)
		}
		lookup := stages[0]["$lookup"].(bson.M)
		pipeline := lookup["pipeline"].([]bson.M)
		projection := pipeline[len(pipeline)-1]["$project"].(bson.M)
		if projection["firstName"] != 1 || projection["lastName"] != 1 {
			t.Errorf("unexpected projection: %v", projection)
		}
	})

	t.Run("nested populate recurses into the sub-pipeline", func(t *testing.T) {
		stages, err := CompilePopulate(reg, "vehicles", []Populate{
			{Path: "model", Populate: []Populate{{Path: "brand"}}},
		})
		if err != nil {
			t.Fatal(err)
		}
		lookup := stages[0]["$lookup"].(bson.M)
		sub := lookup["pipeline"].([]bson.M)
		if len(sub) != 2 {
			t.Fatalf("expected nested lookup+set, got %v", sub)
		}
		nested := sub[0]["$lookup"].(bson.M)
		if nested["from"] != "brands" {
			t.Errorf("expected nested lookup into brands, got %v", nested)
		}
	})

	t.Run("select keeps nested populated paths", func(t *testing.T) {
		stages, err := CompilePopulate(reg, "vehicles", []Populate{
			{Path: "model", Select: []string{"name"}, Populate: []Populate{{Path: "brand"}}},
		})
		if err != nil {
			t.Fatal(err)
		}
		lookup := stages[0]["$lookup"].(bson.M)
		sub := lookup["pipeline"].([]bson.M)
		projection := sub[len(sub)-1]["$project"].(bson.M)
		if projection["brand"] != 1 {
			t.Errorf("populated child path dropped by select: %v", projection)
		}
	})

	t.Run("non-relationship path is a configuration error", func(t *testing.T) {
		_, err := CompilePopulate(reg, "vehicles", Fields("plate"))
		if err == nil || !strings.Contains(err.Error(), "plate") {
			t.Errorf("expected error naming the bad path, got %v", err)
		}
	})

	t.Run("unknown resource is an error", func(t *testing.T) {
		if _, err := CompilePopulate(reg, "nope", Fields("customer")); err == nil {
			t.Error("expected error for unknown resource")
		}
	})
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Resource{Name: "", Collection: "x"}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := reg.Register(Resource{Name: "x", Collection: ""}); err == nil {
		t.Error("expected error for empty collection")
	}
	if err := reg.Register(Resource{Name: "taxes", Collection: "taxes"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(Resource{Name: "taxes", Collection: "other"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if _, ok := reg.Resource("taxes"); !ok {
		t.Error("registered resource not found")
	}
	if _, ok := reg.Resource("missing"); ok {
		t.Error("unexpected resource found")
	}
}
