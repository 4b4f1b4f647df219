// Package middleware provides shared gin middleware for the API.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// RequireUser resolves the authenticated user id from the X-User-ID header
// set by the upstream identity layer. The engine trusts this input and
// performs no authentication itself.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
			return
		}
		c.Set(userIDKey, uint(id))
		c.Next()
	}
}

// UserID returns the resolved user id for the request.
func UserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}
