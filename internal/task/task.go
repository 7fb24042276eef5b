package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"labgate.app/gateway/internal/platform"
)

// JobKind identifies what the remote platform should do. Closed set:
// unknown values are rejected at the boundary, never forwarded.
type JobKind string

const (
	KindLiterature JobKind = "LITERATURE"
	KindAnalysis   JobKind = "ANALYSIS"
	KindPrecedent  JobKind = "PRECEDENT"
	KindMolecules  JobKind = "MOLECULES"
	KindDummy      JobKind = "DUMMY"
)

// Kinds returns the closed set of job kinds, in catalog order.
func Kinds() []JobKind {
	return []JobKind{KindLiterature, KindAnalysis, KindPrecedent, KindMolecules, KindDummy}
}

func (k JobKind) Valid() bool {
	switch k {
	case KindLiterature, KindAnalysis, KindPrecedent, KindMolecules, KindDummy:
		return true
	}
	return false
}

// Status is the lifecycle state of a remote task. COMPLETED and FAILED are
// terminal: once observed, a task id never reports anything else.
type Status string

const (
	StatusPending   Status = Status(platform.StatusPending)
	StatusRunning   Status = Status(platform.StatusRunning)
	StatusCompleted Status = Status(platform.StatusCompleted)
	StatusFailed    Status = Status(platform.StatusFailed)
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Request is one task submission. ContinuedJobID, when non-empty, chains
// the task to a previously issued task id; continuation is strictly
// additive and a request without one behaves as a fresh task.
type Request struct {
	Kind           JobKind
	Query          string
	ContinuedJobID string
}

// Validate enforces the data-model invariants: kind in the closed set,
// query non-empty after trimming. Violations are validation-kind errors,
// raised before any network call.
func (r Request) Validate() error {
	if !r.Kind.Valid() {
		return platform.NewError(platform.KindValidation, fmt.Sprintf("unknown job kind %q", string(r.Kind)))
	}
	if strings.TrimSpace(r.Query) == "" {
		return platform.NewError(platform.KindValidation, "query must not be empty")
	}
	return nil
}

// Handle records a submission acknowledged by the platform. Immutable.
type Handle struct {
	TaskID      string
	SubmittedAt time.Time
}

// Outcome is the status snapshot for a task id at a point in time. Result
// is set only when COMPLETED, Error only when FAILED. A FAILED outcome is a
// valid result, not a call-level error.
type Outcome struct {
	TaskID string
	Status Status
	Result *string
	Error  *string
}

func outcomeFromState(state platform.TaskState) *Outcome {
	return &Outcome{
		TaskID: state.TaskID,
		Status: Status(state.Status),
		Result: state.Result,
		Error:  state.Error,
	}
}

// BatchEntry is one slot of a batch result, positionally matched to the
// input request. Exactly one of Handle (async), Outcome (sync), or Err is
// meaningful.
type BatchEntry struct {
	Index   int
	Handle  *Handle
	Outcome *Outcome
	Err     error
}

// TimeoutError reports that polling exceeded its wait budget while the
// task was still non-terminal. It deliberately is not a FAILED outcome:
// the task may still be progressing on the platform.
type TimeoutError struct {
	TaskID     string
	LastStatus Status
	Waited     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s still %s after %s", e.TaskID, e.LastStatus, e.Waited.Round(time.Millisecond))
}

// IsTimeout reports whether err is a polling timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// PlatformClient is the capability this package needs from the remote
// platform. Mirrors platform.Client; defined here so the orchestration
// core depends only on the interface.
type PlatformClient interface {
	CreateTask(ctx context.Context, apiKey string, in platform.CreateTaskInput) (string, error)
	GetTask(ctx context.Context, apiKey, taskID string) (platform.TaskState, error)
}
