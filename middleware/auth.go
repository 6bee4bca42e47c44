package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quizone/models"
	"quizone/services"
)

const identityKey = "user"

// AuthMiddleware requires a valid Bearer access token and stores the caller's identity
// in the context.
func AuthMiddleware(resolver services.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"errorCode": services.CodeInvalidCredentials,
				"message":   "Authorization header required",
			})
			return
		}

		ident, err := resolver.Resolve(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"errorCode": services.CodeInvalidCredentials,
				"message":   "Invalid or expired token",
			})
			return
		}

		c.Set(identityKey, ident)
		c.Set("user_id", ident.ID)
		c.Next()
	}
}

// Identity returns the caller set by AuthMiddleware, or nil on public routes.
func Identity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	ident, _ := v.(*models.Identity)
	return ident
}

// OptionalAuth stores the caller's identity when a valid token is present and lets the
// request through either way.
func OptionalAuth(resolver services.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
			if ident, err := resolver.Resolve(strings.TrimSpace(token)); err == nil {
				c.Set(identityKey, ident)
				c.Set("user_id", ident.ID)
			}
		}
		c.Next()
	}
}
