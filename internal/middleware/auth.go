package middleware

import (
	"net/http"
	"time"

	"learning-api/internal/response"

	"github.com/gin-gonic/gin"
)

// UserAuthMiddleware extracts the authenticated user id forwarded by the
// identity layer. Identity management itself is external; the engine treats
// the id as opaque.
func UserAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = c.Query("user_id")
		}

		if userID == "" {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Missing user identity"))
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("request_time", time.Now())
		c.Next()
	}
}

// UserID returns the authenticated user id stored by UserAuthMiddleware.
func UserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}
