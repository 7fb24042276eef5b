package task

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"labgate.app/gateway/common/logger"
	"labgate.app/gateway/internal/platform"
)

// Mode selects whether a run waits for completion or returns right after
// submission.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// RunnerConfig carries the timing policy for synchronous execution.
type RunnerConfig struct {
	// SyncWaitBudget bounds one sync execution end to end: submission plus
	// all polling.
	SyncWaitBudget time.Duration
	Poll           PollPolicy
}

// Runner is the execution coordinator over the remote platform: it
// composes submission and polling for single tasks and fans out batches
// with per-slot failure isolation.
type Runner struct {
	client    PlatformClient
	submitter *Submitter
	poller    *Poller
	cfg       RunnerConfig
	now       func() time.Time
}

func NewRunner(client PlatformClient, cfg RunnerConfig) *Runner {
	return &Runner{
		client:    client,
		submitter: NewSubmitter(client),
		poller:    NewPoller(client, cfg.Poll),
		cfg:       cfg,
		now:       time.Now,
	}
}

// RunSingleSync submits one task and waits for a terminal outcome. The
// caller never blocks past the configured budget: the result is a terminal
// Outcome, a submission error, or a TimeoutError. Submission failure
// short-circuits polling.
func (r *Runner) RunSingleSync(ctx context.Context, apiKey string, req Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := r.now()
	handle, err := r.submitter.Submit(ctx, apiKey, req)
	if err != nil {
		return nil, err
	}

	remaining := r.cfg.SyncWaitBudget - r.now().Sub(start)
	if remaining <= 0 {
		return nil, &TimeoutError{TaskID: handle.TaskID, LastStatus: StatusPending, Waited: r.cfg.SyncWaitBudget}
	}

	return r.poller.Wait(ctx, apiKey, handle.TaskID, remaining)
}

// RunSingleAsync submits one task and hands the handle straight back;
// polling is left to later CheckStatus calls.
func (r *Runner) RunSingleAsync(ctx context.Context, apiKey string, req Request) (*Handle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return r.submitter.Submit(ctx, apiKey, req)
}

// RunBatch dispatches every request concurrently, waits for all of them,
// and returns one entry per input in input order. Any failure at index i
// (invalid request, submission error, poll timeout) lands in entry i and
// never aborts or cancels the other indices. The one exception is an auth
// failure, which poisons every entry by definition and aborts the call.
func (r *Runner) RunBatch(ctx context.Context, apiKey string, reqs []Request, mode Mode) ([]BatchEntry, error) {
	entries := make([]BatchEntry, len(reqs))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		eg.Go(func() error {
			ictx := logger.WithLogFields(egCtx, logger.LogFields{
				BatchIndex: logger.Ptr(i),
			})
			entries[i] = r.runOne(ictx, apiKey, i, req, mode)
			// Isolation: per-task failures are recorded, not returned, so
			// one slot can never cancel its siblings through the group.
			return nil
		})
	}
	_ = eg.Wait()

	for _, entry := range entries {
		if platform.IsAuth(entry.Err) {
			slog.WarnContext(ctx, "batch aborted: platform rejected credentials", "index", entry.Index)
			return nil, entry.Err
		}
	}

	slog.InfoContext(ctx, "batch finished",
		"mode", mode,
		"size", len(reqs),
		"failed", countFailed(entries),
	)

	return entries, nil
}

// runOne owns exactly one batch slot.
func (r *Runner) runOne(ctx context.Context, apiKey string, index int, req Request, mode Mode) BatchEntry {
	entry := BatchEntry{Index: index}

	if err := req.Validate(); err != nil {
		entry.Err = err
		return entry
	}

	if mode == ModeAsync {
		handle, err := r.submitter.Submit(ctx, apiKey, req)
		if err != nil {
			entry.Err = err
			return entry
		}
		entry.Handle = handle
		return entry
	}

	outcome, err := r.RunSingleSync(ctx, apiKey, req)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.Outcome = outcome
	return entry
}

// CheckStatus is one status query with no polling state: repeated checks
// for a terminal task id keep returning the same terminal outcome.
func (r *Runner) CheckStatus(ctx context.Context, apiKey, taskID string) (*Outcome, error) {
	state, err := r.client.GetTask(ctx, apiKey, taskID)
	if err != nil {
		return nil, err
	}
	return outcomeFromState(state), nil
}

func countFailed(entries []BatchEntry) int {
	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
		}
	}
	return failed
}
