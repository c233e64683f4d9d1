package middlewares

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opencantine/pantry_backend/utils"
)

// AdminAuthMiddleware gates every admin endpoint on the shared admin token.
// The token travels in the x-admin-token header; verification happens before
// any handler logic runs.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := strings.TrimSpace(os.Getenv("ADMIN_TOKEN"))
		if expected == "" {
			// Refuse to serve rather than run an unauthenticated admin API.
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin token not configured"})
			c.Abort()
			return
		}

		token := c.Request.Header.Get("x-admin-token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(utils.SetIsAdminInContext(c.Request.Context(), true))
		c.Next()
	}
}
