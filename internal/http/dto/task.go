package dto

import (
	"time"

	"labgate.app/gateway/internal/task"
)

type RunTaskRequest struct {
	Kind           string  `json:"kind" binding:"required,min=1,max=64"`
	Query          string  `json:"query" binding:"required"`
	ContinuedJobID *string `json:"continued_job_id,omitempty" binding:"omitempty,max=64"`
}

type RunContinuationRequest struct {
	Kind           string `json:"kind" binding:"required,min=1,max=64"`
	Query          string `json:"query" binding:"required"`
	ContinuedJobID string `json:"continued_job_id" binding:"required,max=64"`
}

type RunBatchRequest struct {
	Tasks []RunTaskRequest `json:"tasks" binding:"required,min=1,max=50,dive"`
}

// TaskOutcomeResponse mirrors task.Outcome: result only on COMPLETED,
// error only on FAILED.
type TaskOutcomeResponse struct {
	TaskID string  `json:"task_id"`
	Status string  `json:"status"`
	Result *string `json:"result,omitempty"`
	Error  *string `json:"error,omitempty"`
}

func ToTaskOutcomeResponse(o *task.Outcome) *TaskOutcomeResponse {
	return &TaskOutcomeResponse{
		TaskID: o.TaskID,
		Status: string(o.Status),
		Result: o.Result,
		Error:  o.Error,
	}
}

// TaskStartedResponse acknowledges an async submission.
type TaskStartedResponse struct {
	TaskID      string    `json:"task_id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func ToTaskStartedResponse(h *task.Handle) *TaskStartedResponse {
	return &TaskStartedResponse{
		TaskID:      h.TaskID,
		Status:      "started",
		SubmittedAt: h.SubmittedAt,
	}
}

// ErrorBody carries a failure with its kind so callers can branch on it:
// retry (connectivity, timeout), fix the request (validation), or
// re-authenticate (auth).
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BatchEntryResponse is one positional slot of a batch result. Exactly one
// of Outcome (sync), Task (async), or Error is set.
type BatchEntryResponse struct {
	Index   int                  `json:"index"`
	Outcome *TaskOutcomeResponse `json:"outcome,omitempty"`
	Task    *TaskStartedResponse `json:"task,omitempty"`
	Error   *ErrorBody           `json:"error,omitempty"`
}

type BatchResponse struct {
	Results []BatchEntryResponse `json:"results"`
}

type JobResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}
