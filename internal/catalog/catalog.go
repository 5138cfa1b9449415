package catalog

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/workshophq/backoffice/pkg/controller"
	"github.com/workshophq/backoffice/pkg/engine"
	"github.com/workshophq/backoffice/pkg/middleware/unique"
	"github.com/workshophq/backoffice/pkg/observability/logger"
	"github.com/workshophq/backoffice/pkg/server/router"
	"github.com/workshophq/backoffice/pkg/store/mongodb"
)

// Deps carries what every resource needs to come online.
type Deps struct {
	Store    engine.Store
	Registry *engine.Registry
	Router   router.Router
	Log      logger.Logger
}

// definition is the per-resource configuration tuple consumed by mount:
// everything that distinguishes one resource from another.
type definition[T any, PT engine.RecordPtr[T]] struct {
	name         string
	collection   string
	base         string
	searchFields []string
	defaultSort  bson.D
	populate     []engine.Populate
	create       controller.CreateValidator[T, PT]
	patch        controller.PatchValidator
	filters      controller.FilterFunc
	// uniqueField, when set, attaches the uniqueness guard to writes.
	uniqueField string
}

// Mount registers the relationship graph and brings every resource online
// under the given router (normally the authenticated /api group).
func Mount(deps Deps) error {
	if err := registerResources(deps.Registry); err != nil {
		return err
	}

	if err := mount(deps, taxDefinition()); err != nil {
		return err
	}
	if err := mount(deps, departmentDefinition()); err != nil {
		return err
	}
	if err := mount(deps, jobStatusDefinition()); err != nil {
		return err
	}
	if err := mount(deps, brandDefinition()); err != nil {
		return err
	}
	if err := mount(deps, vehicleModelDefinition()); err != nil {
		return err
	}
	if err := mount(deps, iconDefinition()); err != nil {
		return err
	}
	if err := mount(deps, paymentTermDefinition()); err != nil {
		return err
	}
	if err := mount(deps, supplierDefinition()); err != nil {
		return err
	}
	if err := mount(deps, customerDefinition()); err != nil {
		return err
	}
	if err := mount(deps, vehicleDefinition()); err != nil {
		return err
	}
	if err := mount(deps, technicianDefinition()); err != nil {
		return err
	}
	if err := mount(deps, ticketDefinition()); err != nil {
		return err
	}
	return nil
}

// mount instantiates the service and controller pair for one resource and
// registers its routes.
func mount[T any, PT engine.RecordPtr[T]](deps Deps, def definition[T, PT]) error {
	svc, err := engine.NewService[T, PT](deps.Store, deps.Registry, engine.Config{
		Resource:     def.name,
		Collection:   def.collection,
		SearchFields: def.searchFields,
		DefaultSort:  def.defaultSort,
	}, deps.Log)
	if err != nil {
		return fmt.Errorf("mount %s: %w", def.name, err)
	}

	res, err := controller.NewResource(controller.ResourceConfig[T, PT]{
		Service:        svc,
		Populate:       def.populate,
		ValidateCreate: def.create,
		ValidatePatch:  def.patch,
		Filters:        def.filters,
		Logger:         deps.Log,
	})
	if err != nil {
		return fmt.Errorf("mount %s: %w", def.name, err)
	}

	var writeMiddleware []router.MiddlewareFunc
	if def.uniqueField != "" {
		writeMiddleware = append(writeMiddleware, unique.Guard(def.name, def.uniqueField, svc))
	}
	res.Register(deps.Router, def.base, writeMiddleware...)
	return nil
}

// refFilters builds structural filters from query parameters naming
// relationship ids (e.g. ?brand=<id> on vehicle models). Malformed ids are
// ignored rather than rejected; they simply match nothing they intended to.
func refFilters(c router.Context, fields ...string) bson.M {
	filter := bson.M{}
	for _, field := range fields {
		raw := c.Query(field)
		if raw == "" {
			continue
		}
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			filter[field] = id
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

// registerResources declares the cross-resource relationship graph the
// population resolver walks.
func registerResources(reg *engine.Registry) error {
	resources := []engine.Resource{
		{Name: "taxes", Collection: "taxes"},
		{Name: "departments", Collection: "departments"},
		{Name: "icons", Collection: "icons"},
		{Name: "brands", Collection: "brands"},
		{Name: "paymentterms", Collection: "paymentterms"},
		{Name: "suppliers", Collection: "suppliers"},
		{Name: "customers", Collection: "customers"},
		{Name: "jobstatuses", Collection: "jobstatuses", Relationships: map[string]engine.Relationship{
			"icon": {Resource: "icons"},
		}},
		{Name: "vehiclemodels", Collection: "vehiclemodels", Relationships: map[string]engine.Relationship{
			"brand": {Resource: "brands"},
		}},
		{Name: "technicians", Collection: "technicians", Relationships: map[string]engine.Relationship{
			"department": {Resource: "departments"},
		}},
		{Name: "vehicles", Collection: "vehicles", Relationships: map[string]engine.Relationship{
			"customer": {Resource: "customers"},
			"brand":    {Resource: "brands"},
			"model":    {Resource: "vehiclemodels"},
		}},
		{Name: "tickets", Collection: "tickets", Relationships: map[string]engine.Relationship{
			"customer":   {Resource: "customers"},
			"vehicle":    {Resource: "vehicles"},
			"technician": {Resource: "technicians"},
			"jobStatus":  {Resource: "jobstatuses"},
			"department": {Resource: "departments"},
		}},
	}
	for _, res := range resources {
		if err := reg.Register(res); err != nil {
			return err
		}
	}
	return nil
}

// IndexSpecs returns the indexes every deployment must carry: owner scoping
// on each collection, default lookups where the flag exists, and the partial
// unique backstops behind the uniqueness guards.
func IndexSpecs() []mongodb.IndexSpec {
	collections := []string{
		"taxes", "departments", "jobstatuses", "brands", "vehiclemodels",
		"icons", "paymentterms", "suppliers", "customers", "vehicles",
		"technicians", "tickets",
	}
	defaultable := []string{"taxes", "jobstatuses", "paymentterms"}

	var specs []mongodb.IndexSpec
	for _, coll := range collections {
		specs = append(specs, mongodb.IndexSpec{
			Collection: coll,
			Keys:       bson.D{{Key: "ownerId", Value: 1}, {Key: "isDeleted", Value: 1}},
		})
	}
	for _, coll := range defaultable {
		specs = append(specs, mongodb.IndexSpec{
			Collection: coll,
			Keys:       bson.D{{Key: "ownerId", Value: 1}, {Key: "isDefault", Value: 1}},
		})
	}
	// unique display order per owner, deleted records excluded
	specs = append(specs, mongodb.IndexSpec{
		Collection: "jobstatuses",
		Keys:       bson.D{{Key: "ownerId", Value: 1}, {Key: "order", Value: 1}},
		Unique:     true,
		Partial:    bson.M{"isDeleted": false},
	})
	return specs
}
