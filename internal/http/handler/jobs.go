package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"labgate.app/gateway/internal/http/dto"
	"labgate.app/gateway/internal/service"
)

type JobsHandler struct {
	catalog service.JobCatalogService
}

func NewJobsHandler(catalog service.JobCatalogService) *JobsHandler {
	return &JobsHandler{catalog: catalog}
}

func (h *JobsHandler) List(c *gin.Context) {
	descriptions := h.catalog.List()

	jobs := make([]dto.JobResponse, len(descriptions))
	for i, d := range descriptions {
		jobs[i] = dto.JobResponse{Name: string(d.Kind), Description: d.Description}
	}

	c.JSON(http.StatusOK, dto.JobsResponse{Jobs: jobs})
}
