package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const apiKeyHeader = "X-API-Key"

// RequireAPIKey accepts the key from X-API-Key or an Authorization bearer
// token. Without a configured key every request fails with 500.
func RequireAPIKey(apiKey string, logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			logger.Error("API_KEY is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Server configuration error",
			})
			return
		}

		provided := c.GetHeader(apiKeyHeader)
		if provided == "" {
			provided = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "API key is required. Provide via X-API-Key header or Authorization: Bearer <key>",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Invalid API key",
			})
			return
		}

		c.Next()
	}
}
