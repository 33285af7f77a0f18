package middleware

import (
	"swarmrewards/pkg/errutil"

	"github.com/gin-gonic/gin"
)

const userIDHeader = "X-User-ID"

// Identity reads the caller identity injected by the auth layer in front of
// this service. Token verification itself happens upstream.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(
				errutil.StatusUnauthorized.HTTPStatus(),
				errutil.BaseError{Code: errutil.StatusUnauthorized, Message: "missing user identity"}.JSON(),
			)
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by Identity.
func UserID(c *gin.Context) string {
	return c.GetString("user_id")
}
