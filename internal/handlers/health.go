package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-bff/internal/clients"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CircuitReporter exposes the upstream circuit breaker state.
type CircuitReporter interface {
	CircuitState() clients.CircuitState
}

// HealthCheck is the liveness probe
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storefront-bff",
	})
}

// ReadinessCheck reports not ready while the cache is unreachable or the
// upstream circuit is open
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func ReadinessCheck(cache Pinger, upstream CircuitReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		checks := gin.H{"cache": "healthy", "upstream": "healthy"}

		if err := cache.Ping(ctx); err != nil {
			ready = false
			checks["cache"] = "unhealthy: " + err.Error()
		}
		if upstream != nil {
			if state := upstream.CircuitState(); state == clients.CircuitOpen {
				ready = false
				checks["upstream"] = "circuit " + state.String()
			}
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
	}
}
