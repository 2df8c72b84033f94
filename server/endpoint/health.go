// Package endpoint provides the standard operational endpoints mounted on
// every radscribe server: /health for probes and /info for build identity.
package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health returns a handler that reports process liveness. It deliberately
// does not call the upstream speech or chat APIs: the service is healthy
// when it can accept requests, even if a provider credential is absent.
func Health(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
