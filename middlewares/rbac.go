package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects requests whose authenticated role does not match.
// Runs after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("userRole")
		if userRole != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
