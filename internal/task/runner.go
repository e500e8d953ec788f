package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cdandre/dealmemo-api/internal/domain"
)

// recoveryBatchSize caps how many jobs a single startup recovery pass will
// requeue. Anything beyond the cap is picked up by the janitor.
const recoveryBatchSize = 500

// RecoveryStore is the subset of job persistence the runner needs to find
// work left over from a previous process.
type RecoveryStore interface {
	// FindJobsByStatus retrieves jobs with the given status, oldest first
	FindJobsByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.MemoJob, error)
}

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner manages background task processing. Job state lives in the job
// store; the runner only owns the in-memory queue and the worker pool, so a
// crash loses no work that Recover cannot find again.
type TaskRunner struct {
	store      RecoveryStore
	factory    TaskFactory
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store RecoveryStore, factory TaskFactory, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultTaskRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskRunnerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		factory:    factory,
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit adds a new task to the queue
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start recovers unfinished jobs and begins processing tasks
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	return nil
}

// Stop gracefully shuts down the task runner
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.queue.Close()
	r.wg.Wait()
}

// Recover requeues jobs that a previous process left unfinished. Pending
// jobs simply restart; generating jobs are requeued and the task settles any
// interrupted sections before continuing with the pending ones.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pendingJobs, err := r.store.FindJobsByStatus(ctx, domain.JobStatusPending, recoveryBatchSize)
	if err != nil {
		return fmt.Errorf("failed to find pending jobs: %w", err)
	}

	generatingJobs, err := r.store.FindJobsByStatus(ctx, domain.JobStatusGenerating, recoveryBatchSize)
	if err != nil {
		return fmt.Errorf("failed to find generating jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pendingJobs),
		"generating_count", len(generatingJobs))

	for _, job := range append(pendingJobs, generatingJobs...) {
		task, err := r.factory.CreateTask(job.ID)
		if err != nil {
			r.logger.Error("failed to create recovery task",
				"job_id", job.ID,
				"error", err)
			continue
		}

		if err := r.queue.Enqueue(task); err != nil {
			r.logger.Error("failed to requeue job",
				"job_id", job.ID,
				"error", err)
		}
	}

	return nil
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.queue.GetChannel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}

			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Info("processing task")

	// The worker context, not the submitter's request context, bounds the
	// task. An HTTP caller timing out must not cancel the generation work.
	if err := task.Execute(r.ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed successfully")
}
