package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"labgate.app/gateway/common/logger"
	"labgate.app/gateway/internal/platform"
)

// Submitter creates exactly one remote task per call. It never retries:
// submission is not idempotent, so an automatic retry could double-submit
// work on the platform. Retry decisions belong to the caller.
type Submitter struct {
	client PlatformClient
	now    func() time.Time
}

func NewSubmitter(client PlatformClient) *Submitter {
	return &Submitter{client: client, now: time.Now}
}

// Submit validates the continuation reference shape, forwards the request,
// and normalizes the platform's acknowledgment into a Handle. The request
// itself must already satisfy the Request invariants.
func (s *Submitter) Submit(ctx context.Context, apiKey string, req Request) (*Handle, error) {
	if req.ContinuedJobID != "" {
		if err := ValidateContinuationID(req.ContinuedJobID); err != nil {
			return nil, err
		}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		JobKind:   logger.Ptr(string(req.Kind)),
		Component: "gateway.task.submitter",
	})

	taskID, err := s.client.CreateTask(ctx, apiKey, platform.CreateTaskInput{
		Kind:           string(req.Kind),
		Query:          req.Query,
		ContinuedJobID: req.ContinuedJobID,
	})
	if err != nil {
		slog.WarnContext(ctx, "task submission failed",
			"error", err,
			"query", logger.Truncate(req.Query, 120),
		)
		return nil, err
	}

	slog.InfoContext(ctx, "task submitted",
		"task_id", taskID,
		"continued_job_id", req.ContinuedJobID,
	)

	return &Handle{TaskID: taskID, SubmittedAt: s.now().UTC()}, nil
}

// ValidateContinuationID checks that a continuation reference is shaped
// like a platform task id (UUID). Whether the referenced task exists or is
// complete stays the platform's call; its rejection surfaces as a normal
// submission failure.
func ValidateContinuationID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return platform.WrapError(platform.KindValidation, "malformed continuation reference", err)
	}
	return nil
}
