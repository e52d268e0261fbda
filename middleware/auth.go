package middleware

import (
	"net/http"
	"strings"

	"fundilink/models"
	"fundilink/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token and puts the caller's
// identity and role into the gin context for handlers downstream.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, err := utils.ExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("actorID", subject)
		c.Set("actorRole", role)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
// Admins pass every gate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("actorRole")
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}

// AdminAuthMiddleware restricts a group to admin callers.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("actorRole") != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
