package router

import (
	"github.com/gin-gonic/gin"

	"labgate.app/gateway/internal/http/handler"
	"labgate.app/gateway/internal/http/middleware"
	"labgate.app/gateway/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	tasks := services.Tasks()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.BearerAuth())
	{
		taskHandler := handler.NewTaskHandler(tasks)
		TaskRouter(v1.Group("/tasks"), taskHandler)

		jobsHandler := handler.NewJobsHandler(services.Jobs())
		v1.GET("/jobs", jobsHandler.List)

		healthHandler := handler.NewPlatformHealthHandler(tasks)
		v1.GET("/platform/health", healthHandler.Check)
	}
}
