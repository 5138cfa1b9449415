// Package unique rejects writes whose configured field value already exists
// on another record of the same resource and owner.
//
// The pre-write check here gives callers a friendly 409; the partial unique
// indexes ensured at startup are the authoritative backstop under
// concurrent writes.
package unique

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/workshophq/backoffice/pkg/controller"
	"github.com/workshophq/backoffice/pkg/engine"
	mwauth "github.com/workshophq/backoffice/pkg/middleware/auth"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Checker answers whether a field value already exists for an owner,
// excluding one record id. The generic resource service satisfies it.
type Checker interface {
	Exists(ctx context.Context, owner primitive.ObjectID, field string, value any, exclude primitive.ObjectID) (bool, error)
}

// Guard creates middleware enforcing uniqueness of field within the
// resource. A body without the field passes through untouched: uniqueness
// is opt-in per request. On updates the record being updated is excluded
// from the check via the :id route parameter.
func Guard(resource, field string, checker Checker) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			body, err := io.ReadAll(req.Body)
			req.Body.Close()
			// hand the handler a fresh body regardless of the outcome
			req.Body = io.NopCloser(bytes.NewReader(body))
			c.SetRequest(req)
			if err != nil {
				return controller.Error(c, &engine.StoreError{Op: resource + ".uniqueGuard", Err: err})
			}

			var payload map[string]any
			if json.Unmarshal(body, &payload) != nil {
				// malformed JSON is the validator's problem, not ours
				return next(c)
			}
			value, present := payload[field]
			if !present || value == nil {
				return next(c)
			}

			owner, ok := mwauth.Owner(c)
			if !ok {
				return next(c)
			}
			exclude := primitive.NilObjectID
			if raw := c.Param("id"); raw != "" {
				if id, err := primitive.ObjectIDFromHex(raw); err == nil {
					exclude = id
				}
			}

			exists, err := checker.Exists(req.Context(), owner, field, value, exclude)
			if err != nil {
				return controller.Error(c, err)
			}
			if exists {
				return controller.Error(c, &engine.ConflictError{Resource: resource, Field: field})
			}
			return next(c)
		}
	}
}
