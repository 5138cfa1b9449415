package engine

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Populate is one node of a declarative population spec: inline the record
// referenced by Path, optionally projected to Select fields, and recursively
// populate the inlined record's own relationship fields.
//
// Specs are static per-resource configuration, not user input. There is no
// cycle detection: a spec that populates back into an ancestor resource
// recurses exactly as deep as written, no further.
type Populate struct {
	Path     string
	Select   []string
	Populate []Populate
}

// Fields builds a population spec that inlines each named field in full.
func Fields(paths ...string) []Populate {
	specs := make([]Populate, 0, len(paths))
	for _, p := range paths {
		specs = append(specs, Populate{Path: p})
	}
	return specs
}

// CompilePopulate expands a population spec into the aggregation stages that
// inline the referenced documents: one $lookup per field, followed by a $set
// collapsing the lookup array to the single referenced document. Nested
// specs become pipeline stages inside the $lookup.
//
// A path naming a field that is not a declared relationship is a
// configuration error surfaced here, at call time.
func CompilePopulate(reg *Registry, resource string, specs []Populate) ([]bson.M, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	res, ok := reg.Resource(resource)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", resource)
	}

	var stages []bson.M
	for _, spec := range specs {
		if spec.Path == "" {
			return nil, fmt.Errorf("resource %q: population path is required", resource)
		}
		rel, ok := res.Relationships[spec.Path]
		if !ok {
			return nil, fmt.Errorf("resource %q has no relationship field %q", resource, spec.Path)
		}
		target, ok := reg.Resource(rel.Resource)
		if !ok {
			return nil, fmt.Errorf("resource %q: relationship %q references unknown resource %q", resource, spec.Path, rel.Resource)
		}

		sub, err := CompilePopulate(reg, rel.Resource, spec.Populate)
		if err != nil {
			return nil, err
		}
		if len(spec.Select) > 0 {
			projection := bson.M{}
			for _, field := range spec.Select {
				projection[field] = 1
			}
			// nested populated paths survive an explicit select
			for _, child := range spec.Populate {
				projection[child.Path] = 1
			}
			sub = append(sub, bson.M{"$project": projection})
		}

		lookup := bson.M{
			"from":         target.Collection,
			"localField":   spec.Path,
			"foreignField": "_id",
			"as":           spec.Path,
		}
		if len(sub) > 0 {
			lookup["pipeline"] = sub
		}
		stages = append(stages,
			bson.M{"$lookup": lookup},
			bson.M{"$set": bson.M{spec.Path: bson.M{"$first": "$" + spec.Path}}},
		)
	}
	return stages, nil
}
