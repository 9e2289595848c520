package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nomnom/session-service/internal/gateway"
)

const bearerPrefix = "bearer "

// Authorizer authenticates a bearer token and returns the caller's identity.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*gateway.Principal, error)
}

// RequireAuth returns gin middleware that validates the Bearer token on every
// request and sets user_id and session_id in the request context. Requests
// without a verified ACTIVE session get 401 and never reach the handler.
func RequireAuth(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		p, err := auth.Authorize(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), p.UserID, p.SessionID))
		c.Next()
	}
}

// extractBearer returns the Bearer token from an Authorization header value,
// or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
