package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"hirevox/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies JWT and sets user email and role in context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization token"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Authorization token format"})
			c.Abort()
			return
		}
		token := parts[1]

		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("Token validation error: %v", err)})
			c.Abort()
			return
		}

		email := claims.Email
		if email == "" {
			email = claims.Sub
		}

		c.Set("userEmail", email)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}
