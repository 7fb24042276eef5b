package router

import (
	"github.com/gin-gonic/gin"

	"labgate.app/gateway/internal/http/handler"
)

func TaskRouter(rg *gin.RouterGroup, h *handler.TaskHandler) {
	rg.POST("/run/sync", h.RunSync)
	rg.POST("/run/async", h.RunAsync)
	rg.POST("/run/sync/batch", h.RunBatchSync)
	rg.POST("/run/async/batch", h.RunBatchAsync)
	rg.POST("/run/continuation/sync", h.RunContinuationSync)
	rg.POST("/run/continuation/async", h.RunContinuationAsync)
	rg.GET("/:task_id/status", h.Status)
}
