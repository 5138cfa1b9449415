// Package router defines the HTTP routing abstraction the controllers and
// middleware are written against, keeping them independent of the concrete
// router implementation.
package router

import "net/http"

// Router registers handlers for HTTP methods and composes middleware.
type Router interface {
	GET(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	POST(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PUT(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	DELETE(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PATCH(path string, handler HandlerFunc, middleware ...MiddlewareFunc)

	// Group creates a route group with a common prefix and middleware.
	Group(prefix string, middleware ...MiddlewareFunc) Router

	// Use applies middleware to all routes registered afterwards.
	Use(middleware ...MiddlewareFunc)

	// ServeHTTP implements http.Handler.
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// HandlerFunc is the signature of route handlers.
type HandlerFunc func(Context) error

// MiddlewareFunc wraps a HandlerFunc and returns a new one.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// Context provides request/response access in a router-agnostic way.
type Context interface {
	// Request returns the underlying HTTP request.
	Request() *http.Request

	// SetRequest replaces the request, e.g. after attaching context values.
	SetRequest(r *http.Request)

	// Response returns the response writer.
	Response() ResponseWriter

	// Param returns a URL path parameter by name (e.g. /taxes/:id).
	Param(name string) string

	// Query returns a query-string parameter by name.
	Query(name string) string

	// Bind decodes the JSON request body into v.
	Bind(v any) error

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain-text response with the given status code.
	String(code int, s string) error

	// Get retrieves a request-scoped value by key.
	Get(key string) any

	// Set stores a request-scoped value by key.
	Set(key string, value any)
}

// ResponseWriter wraps http.ResponseWriter and tracks what was written.
type ResponseWriter interface {
	http.ResponseWriter

	// Status returns the HTTP status code of the response.
	Status() int

	// Written reports whether the response has been written.
	Written() bool
}
