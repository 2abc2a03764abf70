package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipebox/recipe-service/pkg/logger"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

const readyTimeout = 2 * time.Second

// RegisterHealth mounts GET /health (liveness) and GET /ready, which runs
// every check and answers 503 when any of them fails.
func RegisterHealth(r gin.IRouter, started time.Time, checks map[string]Check) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warnf("readiness: %s: %v", name, err)
				deps[name] = false
				ready = false
				continue
			}
			deps[name] = true
		}

		body := gin.H{"status": "ready", "deps": deps, "uptime": time.Since(started).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	})
}
