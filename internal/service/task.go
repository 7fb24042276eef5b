package service

import (
	"context"
	"log/slog"
	"strings"

	"labgate.app/gateway/common/logger"
	"labgate.app/gateway/internal/platform"
	"labgate.app/gateway/internal/task"
)

// TaskService is the boundary the HTTP layer talks to: already-parsed,
// already-authenticated requests in, outcomes or kinded errors out.
type TaskService interface {
	RunSingleSync(ctx context.Context, apiKey string, req task.Request) (*task.Outcome, error)
	RunSingleAsync(ctx context.Context, apiKey string, req task.Request) (*task.Handle, error)
	RunBatch(ctx context.Context, apiKey string, reqs []task.Request, mode task.Mode) ([]task.BatchEntry, error)
	CheckStatus(ctx context.Context, apiKey, taskID string) (*task.Outcome, error)
	Ping(ctx context.Context, apiKey string) error
}

// Runner is the slice of task.Runner this service needs. Mirrors
// task.Runner; defined here so tests can substitute it.
type Runner interface {
	RunSingleSync(ctx context.Context, apiKey string, req task.Request) (*task.Outcome, error)
	RunSingleAsync(ctx context.Context, apiKey string, req task.Request) (*task.Handle, error)
	RunBatch(ctx context.Context, apiKey string, reqs []task.Request, mode task.Mode) ([]task.BatchEntry, error)
	CheckStatus(ctx context.Context, apiKey, taskID string) (*task.Outcome, error)
}

// Pinger probes platform reachability.
type Pinger interface {
	Ping(ctx context.Context, apiKey string) error
}

type taskService struct {
	runner Runner
	pinger Pinger
}

func NewTaskService(runner Runner, pinger Pinger) TaskService {
	return &taskService{runner: runner, pinger: pinger}
}

// NormalizeRequest maps boundary input into a core request. The kind is
// upper-cased so callers may send "literature"; membership in the closed
// set is still enforced by Request.Validate.
func NormalizeRequest(kind, query, continuedJobID string) task.Request {
	return task.Request{
		Kind:           task.JobKind(strings.ToUpper(strings.TrimSpace(kind))),
		Query:          query,
		ContinuedJobID: strings.TrimSpace(continuedJobID),
	}
}

func (s *taskService) RunSingleSync(ctx context.Context, apiKey string, req task.Request) (*task.Outcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "gateway.service.task"})

	outcome, err := s.runner.RunSingleSync(ctx, apiKey, req)
	if err != nil {
		slog.WarnContext(ctx, "sync execution failed", "error", err, "kind", req.Kind)
		return nil, err
	}

	slog.InfoContext(ctx, "sync execution finished", "task_id", outcome.TaskID, "status", outcome.Status)
	return outcome, nil
}

func (s *taskService) RunSingleAsync(ctx context.Context, apiKey string, req task.Request) (*task.Handle, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "gateway.service.task"})
	return s.runner.RunSingleAsync(ctx, apiKey, req)
}

func (s *taskService) RunBatch(ctx context.Context, apiKey string, reqs []task.Request, mode task.Mode) ([]task.BatchEntry, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "gateway.service.task"})

	if len(reqs) == 0 {
		return nil, platform.NewError(platform.KindValidation, "batch must contain at least one task")
	}

	return s.runner.RunBatch(ctx, apiKey, reqs, mode)
}

func (s *taskService) CheckStatus(ctx context.Context, apiKey, taskID string) (*task.Outcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "gateway.service.task"})

	if strings.TrimSpace(taskID) == "" {
		return nil, platform.NewError(platform.KindValidation, "task id must not be empty")
	}

	return s.runner.CheckStatus(ctx, apiKey, taskID)
}

func (s *taskService) Ping(ctx context.Context, apiKey string) error {
	return s.pinger.Ping(ctx, apiKey)
}
