// Package auth attaches the authenticated tenant to every request. All
// engine queries are scoped by the owner id this middleware supplies.
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	authpkg "github.com/workshophq/backoffice/pkg/auth"
	"github.com/workshophq/backoffice/pkg/middleware"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Authenticate creates middleware that verifies the bearer token and stores
// the owner id on the request. Requests without a valid token get 401.
func Authenticate(verifier *authpkg.Verifier) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return reject(c, "missing bearer token")
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return reject(c, "invalid token")
			}
			owner, err := primitive.ObjectIDFromHex(claims.Subject)
			if err != nil {
				return reject(c, "invalid token subject")
			}

			c.Set(string(middleware.OwnerKey), owner)
			ctx := context.WithValue(c.Request().Context(), middleware.OwnerKey, owner)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// Owner reads the authenticated tenant set by Authenticate.
func Owner(c router.Context) (primitive.ObjectID, bool) {
	owner, ok := c.Get(string(middleware.OwnerKey)).(primitive.ObjectID)
	return owner, ok && !owner.IsZero()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func reject(c router.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": message,
	})
}
