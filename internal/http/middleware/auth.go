package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const apiKeyContextKey = "platform_api_key"

// BearerAuth extracts the caller's platform credential from the
// Authorization header. The gateway never validates the key itself; the
// platform owns that decision. Missing or malformed headers stop here so
// the core always runs with a credential in hand.
func BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization must be 'Bearer <token>'"})
			return
		}

		c.Set(apiKeyContextKey, strings.TrimSpace(token))
		c.Next()
	}
}

// APIKey returns the bearer token stashed by BearerAuth, or "" when the
// route skipped auth.
func APIKey(c *gin.Context) string {
	return c.GetString(apiKeyContextKey)
}
