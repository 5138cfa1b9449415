// Package catalog declares every resource mounted on the CRUD engine: its
// collection, document shape, validators, relationships, population spec,
// search fields, and invariant configuration.
package catalog

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/workshophq/backoffice/pkg/engine"
)

// check accumulates field-level validation failures while a validator
// walks the request body.
type check struct {
	verr *engine.ValidationError
}

func (c *check) fail(field, message string) {
	if c.verr == nil {
		c.verr = engine.NewValidationError("validation failed")
	}
	c.verr.WithField(field, message)
}

func (c *check) err() *engine.ValidationError {
	return c.verr
}

// reqString returns a required, non-blank string field.
func (c *check) reqString(body bson.M, field string) string {
	raw, ok := body[field]
	if !ok {
		c.fail(field, "is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		c.fail(field, "must be a non-empty string")
		return ""
	}
	return strings.TrimSpace(s)
}

// optString returns an optional string field, "" when absent.
func (c *check) optString(body bson.M, field string) string {
	raw, ok := body[field]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		c.fail(field, "must be a string")
		return ""
	}
	return strings.TrimSpace(s)
}

// optBool returns an optional boolean field and whether it was present.
func (c *check) optBool(body bson.M, field string) (bool, bool) {
	raw, ok := body[field]
	if !ok || raw == nil {
		return false, false
	}
	b, ok := raw.(bool)
	if !ok {
		c.fail(field, "must be a boolean")
		return false, false
	}
	return b, true
}

// reqNumber returns a required numeric field. JSON numbers decode as
// float64; integer inputs arrive the same way.
func (c *check) reqNumber(body bson.M, field string) float64 {
	raw, ok := body[field]
	if !ok {
		c.fail(field, "is required")
		return 0
	}
	return c.asNumber(raw, field)
}

// optNumber returns an optional numeric field and whether it was present.
func (c *check) optNumber(body bson.M, field string) (float64, bool) {
	raw, ok := body[field]
	if !ok || raw == nil {
		return 0, false
	}
	return c.asNumber(raw, field), true
}

func (c *check) asNumber(raw any, field string) float64 {
	switch n := raw.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		c.fail(field, "must be a number")
		return 0
	}
}

// reqRef returns a required relationship field as an object id.
func (c *check) reqRef(body bson.M, field string) primitive.ObjectID {
	raw, ok := body[field]
	if !ok {
		c.fail(field, "is required")
		return primitive.NilObjectID
	}
	return c.asRef(raw, field)
}

// optRef returns an optional relationship field and whether it was present.
func (c *check) optRef(body bson.M, field string) (primitive.ObjectID, bool) {
	raw, ok := body[field]
	if !ok || raw == nil {
		return primitive.NilObjectID, false
	}
	return c.asRef(raw, field), true
}

func (c *check) asRef(raw any, field string) primitive.ObjectID {
	s, ok := raw.(string)
	if !ok {
		c.fail(field, "must be an id string")
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		c.fail(field, "must be a valid id")
		return primitive.NilObjectID
	}
	return id
}

// envelopeFromBody builds the common envelope from create-request flags.
// Marking a record default implies it is active.
func envelopeFromBody(c *check, body bson.M) engine.Envelope {
	env := engine.NewEnvelope()
	if active, ok := c.optBool(body, "isActive"); ok {
		env.IsActive = active
	}
	if def, ok := c.optBool(body, "isDefault"); ok && def {
		env.IsDefault = true
		env.IsActive = true
	}
	return env
}

// envelopePatch copies envelope flags from an update body into the patch.
func envelopePatch(c *check, body, patch bson.M) {
	if active, ok := c.optBool(body, "isActive"); ok {
		patch["isActive"] = active
	}
	if def, ok := c.optBool(body, "isDefault"); ok {
		patch["isDefault"] = def
		if def {
			patch["isActive"] = true
		}
	}
}

// patchString copies an optional string field from body to patch.
func patchString(c *check, body, patch bson.M, field string) {
	if raw, ok := body[field]; ok && raw != nil {
		s, isStr := raw.(string)
		if !isStr {
			c.fail(field, "must be a string")
			return
		}
		patch[field] = strings.TrimSpace(s)
	}
}

// patchReqString copies a string field that must stay non-blank if present.
func patchReqString(c *check, body, patch bson.M, field string) {
	if raw, ok := body[field]; ok {
		s, isStr := raw.(string)
		if !isStr || strings.TrimSpace(s) == "" {
			c.fail(field, "must be a non-empty string")
			return
		}
		patch[field] = strings.TrimSpace(s)
	}
}

// patchNumber copies an optional numeric field from body to patch.
func patchNumber(c *check, body, patch bson.M, field string) {
	if n, ok := c.optNumber(body, field); ok {
		patch[field] = n
	}
}

// patchRef copies an optional relationship field from body to patch.
func patchRef(c *check, body, patch bson.M, field string) {
	if id, ok := c.optRef(body, field); ok {
		patch[field] = id
	}
}
