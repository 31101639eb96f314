package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader carries the authenticated user id set by the API gateway
	UserIDHeader = "X-User-ID"
	// ContextKeyUserID is the context key for the user id
	ContextKeyUserID = "user_id"
)

// UserIdentity reads the gateway-injected user id header into the request
// context. Authentication itself happens upstream.
func UserIdentity(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" && required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "MISSING_USER_ID",
				"message": "X-User-ID header is required",
			})
			return
		}

		if userID != "" {
			c.Set(ContextKeyUserID, userID)
		}
		c.Next()
	}
}

// GetUserID extracts the user id from gin context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
