package controller

import (
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/workshophq/backoffice/pkg/engine"
	"github.com/workshophq/backoffice/pkg/middleware"
	"github.com/workshophq/backoffice/pkg/observability/logger"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// CreateValidator maps a raw request body to a typed record or a structured
// validation failure.
type CreateValidator[T any, PT engine.RecordPtr[T]] func(body bson.M) (PT, *engine.ValidationError)

// PatchValidator maps a raw request body to a store-level patch or a
// structured validation failure. Unknown fields are dropped, not rejected.
type PatchValidator func(body bson.M) (bson.M, *engine.ValidationError)

// FilterFunc extracts resource-specific structural filters from the query
// string (e.g. ?customer=<id> on tickets).
type FilterFunc func(c router.Context) bson.M

// ResourceConfig fixes the per-resource behavior of a Resource controller.
type ResourceConfig[T any, PT engine.RecordPtr[T]] struct {
	Service        *engine.Service[T, PT]
	Populate       []engine.Populate
	ValidateCreate CreateValidator[T, PT]
	ValidatePatch  PatchValidator
	Filters        FilterFunc
	DefaultLimit   int
	Logger         logger.Logger
}

// Resource is the generic HTTP controller: five handlers over one resource
// service, configured per resource with a population spec, validators, and
// optional structural filters.
type Resource[T any, PT engine.RecordPtr[T]] struct {
	service        *engine.Service[T, PT]
	populate       []engine.Populate
	validateCreate CreateValidator[T, PT]
	validatePatch  PatchValidator
	filters        FilterFunc
	defaultLimit   int
	log            logger.Logger
}

// NewResource creates a resource controller.
func NewResource[T any, PT engine.RecordPtr[T]](cfg ResourceConfig[T, PT]) (*Resource[T, PT], error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("service is required")
	}
	if cfg.ValidateCreate == nil || cfg.ValidatePatch == nil {
		return nil, fmt.Errorf("create and patch validators are required")
	}
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = engine.DefaultLimit
	}
	return &Resource[T, PT]{
		service:        cfg.Service,
		populate:       cfg.Populate,
		validateCreate: cfg.ValidateCreate,
		validatePatch:  cfg.ValidatePatch,
		filters:        cfg.Filters,
		defaultLimit:   cfg.DefaultLimit,
		log:            cfg.Logger,
	}, nil
}

// Register mounts the five standard routes at base. writeMiddleware runs on
// create and update only, which is where the uniqueness guard attaches.
func (r *Resource[T, PT]) Register(rt router.Router, base string, writeMiddleware ...router.MiddlewareFunc) {
	rt.GET(base, r.list)
	rt.GET(base+"/:id", r.get)
	rt.POST(base, r.create, writeMiddleware...)
	rt.PUT(base+"/:id", r.update, writeMiddleware...)
	rt.DELETE(base+"/:id", r.remove)
}

func (r *Resource[T, PT]) list(c router.Context) error {
	owner, err := ownerFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	page := engine.ParsePage(c.Query("page"), c.Query("limit"), r.defaultLimit)
	query := engine.ListQuery{
		Search:   c.Query("search"),
		Page:     page,
		Populate: r.populate,
	}
	if r.filters != nil {
		query.Filter = r.filters(c)
	}

	records, total, err := r.service.List(c.Request().Context(), owner, query)
	if err != nil {
		return Error(c, err)
	}
	return List(c, records, total, page.Number, page.Limit, page.TotalPages(total))
}

func (r *Resource[T, PT]) get(c router.Context) error {
	owner, err := ownerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := recordID(c)
	if err != nil {
		return Error(c, err)
	}

	record, err := r.service.GetByID(c.Request().Context(), owner, id, r.populate)
	if err != nil {
		return Error(c, err)
	}
	return Success(c, record)
}

func (r *Resource[T, PT]) create(c router.Context) error {
	owner, err := ownerFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	var body bson.M
	if err := c.Bind(&body); err != nil {
		return Error(c, engine.NewValidationError("invalid request body"))
	}
	record, verr := r.validateCreate(body)
	if verr != nil {
		return Error(c, verr)
	}

	created, err := r.service.Create(c.Request().Context(), owner, record)
	if err != nil {
		return Error(c, err)
	}
	return Created(c, created)
}

func (r *Resource[T, PT]) update(c router.Context) error {
	owner, err := ownerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := recordID(c)
	if err != nil {
		return Error(c, err)
	}

	var body bson.M
	if err := c.Bind(&body); err != nil {
		return Error(c, engine.NewValidationError("invalid request body"))
	}
	patch, verr := r.validatePatch(body)
	if verr != nil {
		return Error(c, verr)
	}

	updated, err := r.service.Update(c.Request().Context(), owner, id, patch)
	if err != nil {
		return Error(c, err)
	}
	return Success(c, updated)
}

func (r *Resource[T, PT]) remove(c router.Context) error {
	owner, err := ownerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := recordID(c)
	if err != nil {
		return Error(c, err)
	}

	if err := r.service.SoftDelete(c.Request().Context(), owner, id); err != nil {
		return Error(c, err)
	}
	return Message(c, "record deleted")
}

// ownerFrom reads the authenticated tenant set by the auth middleware.
func ownerFrom(c router.Context) (primitive.ObjectID, error) {
	owner, ok := c.Get(string(middleware.OwnerKey)).(primitive.ObjectID)
	if !ok || owner.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("no authenticated owner on request")
	}
	return owner, nil
}

// recordID parses the :id route parameter. A malformed id can never resolve
// to a record, so it surfaces as not found rather than a validation error.
func recordID(c router.Context) (primitive.ObjectID, error) {
	raw := c.Param("id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, &engine.NotFoundError{Resource: "record", ID: raw}
	}
	return id, nil
}

func unauthorized(c router.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
}
