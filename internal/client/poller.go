package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// defaultPollInterval is the pause between the end of one status request and
// the start of the next. Polls never overlap: the next request is scheduled
// only after the previous one completes, so a slow server gets fewer
// requests rather than a pile-up.
const defaultPollInterval = 3 * time.Second

// PollHandlers receives notifications while a poll loop runs. Any handler
// may be nil.
type PollHandlers struct {
	// OnUpdate is called after every successful status read.
	OnUpdate func(job *MemoJob)

	// OnError is called when a status request fails. The loop keeps polling;
	// transport failures are reported, not fatal.
	OnError func(err error)
}

// Poller repeatedly reads a memo job's status until the job reaches a
// terminal state or the context is cancelled.
type Poller struct {
	client   *Client
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a Poller over the given client. An interval of zero or
// less falls back to the default.
func NewPoller(c *Client, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		client:   c,
		interval: interval,
		logger:   logger.With("component", "status_poller"),
	}
}

// Poll blocks until the job reaches a terminal state, returning its final
// snapshot. Cancelling the context stops the loop after any in-flight
// request completes; the job itself keeps running on the server.
func (p *Poller) Poll(ctx context.Context, jobID uuid.UUID, handlers PollHandlers) (*MemoJob, error) {
	for {
		job, err := p.client.GetMemoStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			// A missing job will never turn up; stop rather than spin.
			if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == 404 {
				return nil, err
			}

			p.logger.Warn("status poll failed, will retry", "error", err, "job_id", jobID)
			if handlers.OnError != nil {
				handlers.OnError(err)
			}
		} else {
			if handlers.OnUpdate != nil {
				handlers.OnUpdate(job)
			}
			if job.IsTerminal() {
				return job, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
