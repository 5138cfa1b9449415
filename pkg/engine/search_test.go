package engine

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCompileSearch(t *testing.T) {
	fields := []string{"firstName", "lastName", "email"}

	t.Run("empty term produces no filter", func(t *testing.T) {
		if got := CompileSearch(fields, ""); got != nil {
			t.Errorf("expected nil filter, got %v", got)
		}
	})

	t.Run("whitespace-only term produces no filter", func(t *testing.T) {
		if got := CompileSearch(fields, "   "); got != nil {
			t.Errorf("expected nil filter, got %v", got)
		}
	})

	t.Run("empty field list is a silent no-op", func(t *testing.T) {
		if got := CompileSearch(nil, "smith"); got != nil {
			t.Errorf("expected nil filter, got %v", got)
		}
	})

	t.Run("one clause per field", func(t *testing.T) {
		filter := CompileSearch(fields, "smith")
		clauses, ok := filter["$or"].([]bson.M)
		if !ok {
			t.Fatalf("expected $or clause list, got %v", filter)
		}
		if len(clauses) != len(fields) {
			t.Fatalf("expected %d clauses, got %d", len(fields), len(clauses))
		}
		for i, field := range fields {
			regex, ok := clauses[i][field].(bson.M)
			if !ok {
				t.Fatalf("clause %d missing field %q: %v", i, field, clauses[i])
			}
			if regex["$regex"] != "smith" || regex["$options"] != "i" {
				t.Errorf("clause %d = %v, want case-insensitive smith", i, regex)
			}
		}
	})

	t.Run("regex metacharacters are escaped", func(t *testing.T) {
		filter := CompileSearch([]string{"name"}, "a.b*c")
		clauses := filter["$or"].([]bson.M)
		regex := clauses[0]["name"].(bson.M)
		if regex["$regex"] != `a\.b\*c` {
			t.Errorf("expected escaped pattern, got %q", regex["$regex"])
		}
	})
}

func TestCompileSearchProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("non-empty term over non-empty fields yields one clause per field", prop.ForAll(
		func(fields []string, term string) bool {
			filter := CompileSearch(fields, term)
			if len(fields) == 0 {
				return filter == nil
			}
			clauses, ok := filter["$or"].([]bson.M)
			return ok && len(clauses) == len(fields)
		},
		gen.SliceOf(gen.Identifier()),
		gen.RegexMatch(`[a-z0-9]{1,12}`),
	))

	properties.Property("escaped pattern always compiles as a literal match", prop.ForAll(
		func(term string) bool {
			filter := CompileSearch([]string{"name"}, term)
			if filter == nil {
				return true
			}
			clauses := filter["$or"].([]bson.M)
			_, isStr := clauses[0]["name"].(bson.M)["$regex"].(string)
			return isStr
		},
		gen.RegexMatch(`[a-z.*+?(){}\[\]|]{1,16}`),
	))

	properties.TestingRun(t)
}
