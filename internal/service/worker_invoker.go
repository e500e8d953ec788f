package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdandre/dealmemo-api/internal/events"
	"github.com/cdandre/dealmemo-api/internal/store"
	"github.com/cdandre/dealmemo-api/internal/task"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// defaultPollInterval is how often the embedded invoker re-reads the job
// while waiting for the worker to finish.
const defaultPollInterval = 2 * time.Second

// WorkerInvoker kicks off generation for a job and blocks until the job
// reaches a terminal state or the context expires. Implementations must not
// cancel or alter the job when the context expires; the wait gives up, the
// work continues.
type WorkerInvoker interface {
	// Invoke starts generation for the job and waits for it to finish.
	// Returns ctx.Err() when the wait window elapses first.
	Invoke(ctx context.Context, jobID uuid.UUID) error
}

// EmbeddedInvoker dispatches work to the in-process task runner through the
// event emitter and waits by polling the job store.
type EmbeddedInvoker struct {
	emitter      events.EventEmitter
	jobs         store.MemoJobStore
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewEmbeddedInvoker creates an invoker backed by the in-process worker pool.
func NewEmbeddedInvoker(emitter events.EventEmitter, jobs store.MemoJobStore, logger *slog.Logger) *EmbeddedInvoker {
	return &EmbeddedInvoker{
		emitter:      emitter,
		jobs:         jobs,
		pollInterval: defaultPollInterval,
		logger:       logger.With("component", "embedded_invoker"),
	}
}

// Ensure EmbeddedInvoker implements WorkerInvoker
var _ WorkerInvoker = (*EmbeddedInvoker)(nil)

// Invoke emits a task request event for the job and polls until the job is
// terminal or ctx expires.
func (i *EmbeddedInvoker) Invoke(ctx context.Context, jobID uuid.UUID) error {
	payload := struct {
		JobID uuid.UUID `json:"job_id"`
	}{JobID: jobID}

	event, err := events.NewGenerationRequestEvent(task.TaskTypeMemoGeneration, payload)
	if err != nil {
		return fmt.Errorf("%w: failed to create event: %v", ErrWorkerFailure, err)
	}

	if err := i.emitter.EmitEvent(ctx, event); err != nil {
		return fmt.Errorf("%w: failed to emit event: %v", ErrWorkerFailure, err)
	}

	ticker := time.NewTicker(i.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Polling with a fresh context: the deadline bounds the wait,
			// not the status read.
			job, err := i.jobs.GetByID(context.WithoutCancel(ctx), jobID)
			if err != nil {
				i.logger.Warn("failed to poll job while waiting",
					"error", err, "job_id", jobID)
				continue
			}
			if job.IsTerminal() {
				return nil
			}
		}
	}
}

// RemoteInvoker dispatches work to an external worker service over HTTP. The
// remote endpoint generates the memo synchronously, so the request lives as
// long as the generation or the context, whichever ends first.
type RemoteInvoker struct {
	client *resty.Client
	logger *slog.Logger
}

// NewRemoteInvoker creates an invoker that calls an external worker service.
func NewRemoteInvoker(baseURL, token string, logger *slog.Logger) *RemoteInvoker {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		// Retries are for connection-level failures only. The server decides
		// what a re-sent request means, so keep the count low.
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &RemoteInvoker{
		client: client,
		logger: logger.With("component", "remote_invoker"),
	}
}

// Ensure RemoteInvoker implements WorkerInvoker
var _ WorkerInvoker = (*RemoteInvoker)(nil)

// Invoke POSTs the job to the worker and waits for the response. The context
// deadline is the wait window; the worker keeps going when we hang up.
func (r *RemoteInvoker) Invoke(ctx context.Context, jobID uuid.UUID) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"job_id": jobID.String()}).
		Post("/internal/v1/generate")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrWorkerFailure, err)
	}

	if resp.IsError() {
		r.logger.Error("worker returned an error",
			"status", resp.StatusCode(),
			"job_id", jobID,
			"body", resp.String())
		return fmt.Errorf("%w: worker returned status %d", ErrWorkerFailure, resp.StatusCode())
	}

	return nil
}
