package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Identity is established by an upstream auth proxy which strips these
// headers from client traffic and re-injects them for authenticated sessions.
const (
	headerCartID   = "X-Cart-Id"
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

const ctxUserID = "userID"

func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(headerUserID)); userID != "" {
			c.Set(ctxUserID, userID)
		}
		c.Next()
	}
}

func adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.EqualFold(strings.TrimSpace(c.GetHeader(headerUserRole)), "admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, envelope{
				Success: false,
				Error:   &apiError{Code: "FORBIDDEN", Message: "admin access required"},
			})
			return
		}
		c.Next()
	}
}

// currentUserID returns the authenticated user id, nil for guests.
func currentUserID(c *gin.Context) *string {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(string); ok && id != "" {
			return &id
		}
	}
	return nil
}

func cartIDHeader(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(headerCartID))
}
