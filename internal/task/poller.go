package task

import (
	"context"
	"log/slog"
	"time"

	"labgate.app/gateway/common/logger"
)

// PollPolicy shapes the wait between status queries: the interval starts
// at Initial and doubles after every non-terminal poll, capped at Max.
type PollPolicy struct {
	Initial time.Duration
	Max     time.Duration
}

// Sleeper blocks for d or until ctx is done. Injectable so tests can run
// the backoff schedule without real time passing.
type Sleeper func(ctx context.Context, d time.Duration) error

func defaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller drives a task handle to a terminal state by repeated status
// queries. Each Wait call runs its own backoff sequence; nothing is shared
// between invocations, so independent status checks for the same task id
// stay independent queries.
type Poller struct {
	client PlatformClient
	policy PollPolicy
	sleep  Sleeper
	now    func() time.Time
}

func NewPoller(client PlatformClient, policy PollPolicy) *Poller {
	return &Poller{
		client: client,
		policy: policy,
		sleep:  defaultSleeper,
		now:    time.Now,
	}
}

// Wait polls until the task reaches COMPLETED or FAILED, or maxWait
// elapses. On expiry it returns a TimeoutError carrying the last observed
// status, never FAILED, since the task may still be progressing remotely.
func (p *Poller) Wait(ctx context.Context, apiKey, taskID string, maxWait time.Duration) (*Outcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TaskID:    logger.Ptr(taskID),
		Component: "gateway.task.poller",
	})

	start := p.now()
	deadline := start.Add(maxWait)
	interval := p.policy.Initial
	lastStatus := StatusPending

	for {
		state, err := p.client.GetTask(ctx, apiKey, taskID)
		if err != nil {
			return nil, err
		}

		outcome := outcomeFromState(state)
		if outcome.Status.Terminal() {
			slog.InfoContext(ctx, "task reached terminal state",
				"status", outcome.Status,
				"waited", p.now().Sub(start).Round(time.Millisecond),
			)
			return outcome, nil
		}
		lastStatus = outcome.Status

		remaining := deadline.Sub(p.now())
		if remaining <= 0 {
			slog.WarnContext(ctx, "poll budget exhausted", "last_status", lastStatus, "max_wait", maxWait)
			return nil, &TimeoutError{TaskID: taskID, LastStatus: lastStatus, Waited: maxWait}
		}

		slog.DebugContext(ctx, "task not terminal, backing off",
			"status", lastStatus,
			"next_poll_in", interval,
		)

		if err := p.sleep(ctx, minDuration(interval, remaining)); err != nil {
			return nil, err
		}

		interval *= 2
		if interval > p.policy.Max {
			interval = p.policy.Max
		}
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
