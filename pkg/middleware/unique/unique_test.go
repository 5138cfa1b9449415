package unique_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/workshophq/backoffice/pkg/middleware"
	"github.com/workshophq/backoffice/pkg/middleware/unique"
	"github.com/workshophq/backoffice/pkg/server/router"
	ginrouter "github.com/workshophq/backoffice/pkg/server/router/gin"
)

type fakeChecker struct {
	exists bool
	err    error

	owner   primitive.ObjectID
	field   string
	value   any
	exclude primitive.ObjectID
	called  bool
}

func (f *fakeChecker) Exists(_ context.Context, owner primitive.ObjectID, field string, value any, exclude primitive.ObjectID) (bool, error) {
	f.called = true
	f.owner = owner
	f.field = field
	f.value = value
	f.exclude = exclude
	return f.exists, f.err
}

func guardedRouter(owner primitive.ObjectID, checker unique.Checker) (router.Router, *bool, *string) {
	var reached bool
	var body string

	rt := ginrouter.NewRouter()
	rt.Use(func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			c.Set(string(middleware.OwnerKey), owner)
			return next(c)
		}
	})
	guard := unique.Guard("jobstatuses", "order", checker)

	handler := func(c router.Context) error {
		reached = true
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		body = string(raw)
		return c.String(http.StatusOK, "ok")
	}
	rt.POST("/jobstatuses", handler, guard)
	rt.PUT("/jobstatuses/:id", handler, guard)
	return rt, &reached, &body
}

func post(rt router.Router, path, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func TestGuardUniqueValuePasses(t *testing.T) {
	owner := primitive.NewObjectID()
	checker := &fakeChecker{exists: false}
	rt, reached, _ := guardedRouter(owner, checker)

	rec := post(rt, "/jobstatuses", `{"name":"queued","order":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
	assert.True(t, checker.called)
	assert.Equal(t, owner, checker.owner)
	assert.Equal(t, "order", checker.field)
	assert.Equal(t, float64(3), checker.value)
	assert.Equal(t, primitive.NilObjectID, checker.exclude, "create excludes nothing")
}

func TestGuardDuplicateValueConflicts(t *testing.T) {
	checker := &fakeChecker{exists: true}
	rt, reached, _ := guardedRouter(primitive.NewObjectID(), checker)

	rec := post(rt, "/jobstatuses", `{"order":3}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, *reached)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestGuardAbsentFieldPasses(t *testing.T) {
	checker := &fakeChecker{exists: true}
	rt, reached, _ := guardedRouter(primitive.NewObjectID(), checker)

	rec := post(rt, "/jobstatuses", `{"name":"queued"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
	assert.False(t, checker.called, "no field, no check")
}

func TestGuardMalformedBodyPasses(t *testing.T) {
	checker := &fakeChecker{exists: true}
	rt, reached, body := guardedRouter(primitive.NewObjectID(), checker)

	rec := post(rt, "/jobstatuses", `{broken`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
	assert.False(t, checker.called)
	assert.Equal(t, `{broken`, *body, "body must be restored for the handler")
}

func TestGuardBodyRestoredAfterCheck(t *testing.T) {
	checker := &fakeChecker{exists: false}
	rt, _, body := guardedRouter(primitive.NewObjectID(), checker)

	payload := `{"order":7,"name":"done"}`
	rec := post(rt, "/jobstatuses", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, *body)
}

func TestGuardUpdateExcludesRecord(t *testing.T) {
	checker := &fakeChecker{exists: false}
	rt, _, _ := guardedRouter(primitive.NewObjectID(), checker)

	id := primitive.NewObjectID()
	req := httptest.NewRequest(http.MethodPut, "/jobstatuses/"+id.Hex(), bytes.NewReader([]byte(`{"order":5}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, checker.exclude)
}

func TestGuardMissingOwnerPasses(t *testing.T) {
	checker := &fakeChecker{exists: true}
	rt, reached, _ := guardedRouter(primitive.NilObjectID, checker)

	rec := post(rt, "/jobstatuses", `{"order":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached, "scoping is the auth middleware's job")
	assert.False(t, checker.called)
}
