// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the bearer-token authentication gate. Protected routes
// install RequireAuth, which verifies the Authorization header against the
// token manager and stores the resulting identity in the Gin context for
// handlers and downstream middleware.
//
// Behavior:
//   - A missing or non-Bearer Authorization header aborts with a bare 401.
//   - A present but invalid, expired, or mis-signed token aborts with 401 and
//     the standard error envelope.
//   - On success the verified identity is stored under "identity" and the
//     stringified user id under "userID".
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediashare/go-media-backend/internal/auth"
	"github.com/mediashare/go-media-backend/internal/authz"
)

const (
	// identityKey is the Gin context key holding the verified authz.Identity.
	identityKey = "identity"
	// userIDKey mirrors the identity's user id as a string for consumers that
	// only need a stable key (logging, rate limiting).
	userIDKey = "userID"
)

// RequireAuth returns a middleware that admits only requests carrying a valid
// bearer token signed by tokens.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, value, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
			// No credential presented at all: a bare 401 so clients can
			// distinguish "log in first" from "your token is broken".
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		identity, err := tokens.Verify(strings.TrimSpace(value))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthorized",
				"error": gin.H{
					"message": "invalid token",
					"status":  http.StatusUnauthorized,
				},
			})
			return
		}

		c.Set(identityKey, identity)
		c.Set(userIDKey, strconv.FormatInt(identity.UserID, 10))
		c.Next()
	}
}

// IdentityFrom returns the verified identity stored by RequireAuth. The bool
// is false on routes where the gate did not run.
func IdentityFrom(c *gin.Context) (authz.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return authz.Identity{}, false
	}
	id, ok := v.(authz.Identity)
	return id, ok
}
