package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"labgate.app/gateway/internal/http/dto"
	"labgate.app/gateway/internal/http/middleware"
	"labgate.app/gateway/internal/platform"
	"labgate.app/gateway/internal/service"
	"labgate.app/gateway/internal/task"
)

type TaskHandler struct {
	tasks service.TaskService
}

func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// RunSync executes one task and blocks until it is terminal or the wait
// budget runs out.
func (h *TaskHandler) RunSync(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RunTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.tasks.RunSingleSync(ctx, middleware.APIKey(c), toTaskRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskOutcomeResponse(outcome))
}

// RunAsync submits one task and returns its id immediately; completion is
// observed through later Status calls.
func (h *TaskHandler) RunAsync(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RunTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	handle, err := h.tasks.RunSingleAsync(ctx, middleware.APIKey(c), toTaskRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToTaskStartedResponse(handle))
}

func (h *TaskHandler) RunBatchSync(c *gin.Context) {
	h.runBatch(c, task.ModeSync)
}

func (h *TaskHandler) RunBatchAsync(c *gin.Context) {
	h.runBatch(c, task.ModeAsync)
}

// runBatch fans out every task in the request. Per-task failures land in
// their result slot; the call itself succeeds as long as every task could
// be attempted.
func (h *TaskHandler) runBatch(c *gin.Context, mode task.Mode) {
	ctx := c.Request.Context()

	var req dto.RunBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reqs := make([]task.Request, len(req.Tasks))
	for i, t := range req.Tasks {
		reqs[i] = toTaskRequest(t)
	}

	entries, err := h.tasks.RunBatch(ctx, middleware.APIKey(c), reqs, mode)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.BatchEntryResponse, len(entries))
	for i, entry := range entries {
		results[i] = toBatchEntryResponse(entry)
	}

	c.JSON(http.StatusOK, dto.BatchResponse{Results: results})
}

// RunContinuationSync runs a task chained to a prior task id and waits for
// completion.
func (h *TaskHandler) RunContinuationSync(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RunContinuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.tasks.RunSingleSync(ctx, middleware.APIKey(c),
		service.NormalizeRequest(req.Kind, req.Query, req.ContinuedJobID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskOutcomeResponse(outcome))
}

// RunContinuationAsync submits a chained task and returns its id.
func (h *TaskHandler) RunContinuationAsync(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RunContinuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	handle, err := h.tasks.RunSingleAsync(ctx, middleware.APIKey(c),
		service.NormalizeRequest(req.Kind, req.Query, req.ContinuedJobID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToTaskStartedResponse(handle))
}

// Status returns the current snapshot for a task id. Terminal outcomes are
// stable: repeated checks keep returning the same answer.
func (h *TaskHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	taskID := c.Param("task_id")

	outcome, err := h.tasks.CheckStatus(ctx, middleware.APIKey(c), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskOutcomeResponse(outcome))
}

func toTaskRequest(req dto.RunTaskRequest) task.Request {
	continuedJobID := ""
	if req.ContinuedJobID != nil {
		continuedJobID = *req.ContinuedJobID
	}
	return service.NormalizeRequest(req.Kind, req.Query, continuedJobID)
}

func toBatchEntryResponse(entry task.BatchEntry) dto.BatchEntryResponse {
	out := dto.BatchEntryResponse{Index: entry.Index}
	switch {
	case entry.Err != nil:
		out.Error = toErrorBody(entry.Err)
	case entry.Outcome != nil:
		out.Outcome = dto.ToTaskOutcomeResponse(entry.Outcome)
	case entry.Handle != nil:
		out.Task = dto.ToTaskStartedResponse(entry.Handle)
	}
	return out
}

func toErrorBody(err error) *dto.ErrorBody {
	if task.IsTimeout(err) {
		return &dto.ErrorBody{Kind: "timeout", Message: err.Error()}
	}
	if kind := platform.KindOf(err); kind != "" {
		return &dto.ErrorBody{Kind: string(kind), Message: err.Error()}
	}
	return &dto.ErrorBody{Kind: "internal", Message: err.Error()}
}

// respondError maps error kinds onto status codes: fix the request (400),
// re-authenticate (401), unknown task (404), retry later (502/504).
func respondError(c *gin.Context, err error) {
	body := toErrorBody(err)

	status := http.StatusInternalServerError
	switch body.Kind {
	case "timeout":
		status = http.StatusGatewayTimeout
	case string(platform.KindAuth):
		status = http.StatusUnauthorized
	case string(platform.KindValidation):
		status = http.StatusBadRequest
	case string(platform.KindNotFound):
		status = http.StatusNotFound
	case string(platform.KindConnectivity):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": body.Message, "kind": body.Kind})
}
