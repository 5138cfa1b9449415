// Package middleware holds the context keys shared between the middleware
// subpackages and the controllers.
package middleware

// ContextKey is the type used for request-scoped context values.
type ContextKey string

const (
	// RequestIDKey carries the request correlation id.
	RequestIDKey ContextKey = "request_id"
	// OwnerKey carries the authenticated tenant's identifier.
	OwnerKey ContextKey = "owner_id"
)
