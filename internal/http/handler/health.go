package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"labgate.app/gateway/internal/http/middleware"
	"labgate.app/gateway/internal/service"
)

type PlatformHealthHandler struct {
	tasks service.TaskService
}

func NewPlatformHealthHandler(tasks service.TaskService) *PlatformHealthHandler {
	return &PlatformHealthHandler{tasks: tasks}
}

// Check probes the platform with the caller's credentials so a caller can
// tell apart "gateway up" from "platform reachable".
func (h *PlatformHealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.tasks.Ping(ctx, middleware.APIKey(c)); err != nil {
		slog.WarnContext(ctx, "platform health probe failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unreachable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "connected"})
}
