package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadyProbe reports whether downstream dependencies are reachable.
// The postgres pool's Ping satisfies it; memory mode passes nil.
type ReadyProbe func(ctx context.Context) error

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	ready ReadyProbe
}

// NewHealthHandler creates a health handler. probe may be nil.
func NewHealthHandler(probe ReadyProbe) *HealthHandler {
	return &HealthHandler{ready: probe}
}

// Register mounts the health routes directly on the engine, outside the
// API group: probes carry no envelope and no auth.
func (h *HealthHandler) Register(router *gin.Engine) {
	health := router.Group("/health")
	{
		health.GET("/live", h.Live)
		health.GET("/ready", h.Ready)
	}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports dependency readiness.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
