package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// JobStatusSnapshot is a point-in-time view of a memo job, its sections, and
// the progress derived from them. Progress is always computed from the
// sections at read time, never stored.
type JobStatusSnapshot struct {
	Job      *domain.MemoJob
	Sections []*domain.MemoSection
	Progress float64
}

// MemoService provides memo generation operations
type MemoService interface {
	// StartGeneration creates a memo job for the deal, kicks off generation,
	// and waits up to the configured window for it to finish. On timeout the
	// returned snapshot shows the job still running and the error is
	// ErrGenerationTimeout.
	StartGeneration(ctx context.Context, dealID uuid.UUID) (*JobStatusSnapshot, error)

	// GetStatus retrieves the current state of a memo job with derived
	// progress. Safe for any number of concurrent pollers.
	GetStatus(ctx context.Context, jobID uuid.UUID) (*JobStatusSnapshot, error)
}

// MemoServiceError wraps errors from the memo service with context.
type MemoServiceError struct {
	// Operation is the operation that failed (e.g., "start_generation")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for MemoServiceError.
func (e *MemoServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("memo service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("memo service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *MemoServiceError) Unwrap() error {
	return e.Err
}

// NewMemoServiceError creates a new MemoServiceError.
// It returns known sentinel errors directly without wrapping.
func NewMemoServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrDealNotFound) || errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrGenerationInProgress) || errors.Is(err, ErrGenerationTimeout) {
		return err
	}

	// Map store-level sentinels to service-level ones
	if errors.Is(err, store.ErrDealNotFound) {
		return ErrDealNotFound
	}
	if errors.Is(err, store.ErrJobNotFound) {
		return ErrJobNotFound
	}
	if errors.Is(err, store.ErrActiveJobExists) {
		return ErrGenerationInProgress
	}

	return &MemoServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// memoServiceImpl implements the MemoService interface
type memoServiceImpl struct {
	deals       store.DealStore
	jobs        store.MemoJobStore
	invoker     WorkerInvoker
	waitTimeout time.Duration
	flight      singleflight.Group
	logger      *slog.Logger
}

// NewMemoService creates a new MemoService.
// It returns an error if any of the required dependencies are nil.
func NewMemoService(
	deals store.DealStore,
	jobs store.MemoJobStore,
	invoker WorkerInvoker,
	waitTimeout time.Duration,
	logger *slog.Logger,
) (MemoService, error) {
	if deals == nil {
		return nil, &MemoServiceError{Operation: "create_service", Message: "deal store cannot be nil"}
	}
	if jobs == nil {
		return nil, &MemoServiceError{Operation: "create_service", Message: "job store cannot be nil"}
	}
	if invoker == nil {
		return nil, &MemoServiceError{Operation: "create_service", Message: "worker invoker cannot be nil"}
	}
	if waitTimeout <= 0 {
		waitTimeout = 6 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &memoServiceImpl{
		deals:       deals,
		jobs:        jobs,
		invoker:     invoker,
		waitTimeout: waitTimeout,
		logger:      logger.With("component", "memo_service"),
	}, nil
}

// StartGeneration creates the job durably before any generation starts, so a
// caller that later times out can still poll the job it was handed.
func (s *memoServiceImpl) StartGeneration(
	ctx context.Context,
	dealID uuid.UUID,
) (*JobStatusSnapshot, error) {
	// 1. The deal must exist
	if _, err := s.deals.GetByID(ctx, dealID); err != nil {
		s.logger.Warn("deal lookup failed during launch",
			"error", err, "deal_id", dealID)
		return nil, NewMemoServiceError("start_generation", "failed to look up deal", err)
	}

	// 2. Build the job with its full section skeleton
	job, err := domain.NewMemoJob(dealID)
	if err != nil {
		return nil, NewMemoServiceError("start_generation", "failed to create job object", err)
	}

	sections := make([]*domain.MemoSection, 0, len(domain.AllSectionTypes()))
	for i, sectionType := range domain.AllSectionTypes() {
		section, err := domain.NewMemoSection(job.ID, sectionType, i)
		if err != nil {
			return nil, NewMemoServiceError("start_generation", "failed to create section object", err)
		}
		sections = append(sections, section)
	}

	// 3. Persist atomically; a concurrent launch for the same deal loses here
	if err := s.jobs.CreateWithSections(ctx, job, sections); err != nil {
		if errors.Is(err, store.ErrActiveJobExists) {
			s.logger.Info("rejected duplicate launch",
				"deal_id", dealID)
			return nil, ErrGenerationInProgress
		}
		return nil, NewMemoServiceError("start_generation", "failed to persist job", err)
	}

	s.logger.Info("memo job created",
		"job_id", job.ID,
		"deal_id", dealID,
		"total_sections", job.TotalSections)

	// 4. Invoke the worker and wait, bounded by the launch window
	invokeCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	err = s.invoker.Invoke(invokeCtx, job.ID)
	switch {
	case err == nil:
		// Finished within the window; report the terminal state.

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// The wait gave up; the job carries on in the background untouched.
		s.logger.Info("launch wait window elapsed",
			"job_id", job.ID,
			"wait_timeout", s.waitTimeout.String())
		snapshot, snapErr := s.readStatus(context.WithoutCancel(ctx), job.ID)
		if snapErr != nil {
			return nil, NewMemoServiceError("start_generation", "failed to read job after timeout", snapErr)
		}
		return snapshot, ErrGenerationTimeout

	default:
		s.logger.Error("worker invocation failed",
			"error", err, "job_id", job.ID)
		return nil, NewMemoServiceError("start_generation", "worker invocation failed", err)
	}

	snapshot, err := s.readStatus(ctx, job.ID)
	if err != nil {
		return nil, NewMemoServiceError("start_generation", "failed to read finished job", err)
	}

	return snapshot, nil
}

// GetStatus reads the job with its sections and derives progress. Concurrent
// polls for the same job are collapsed into a single store read.
func (s *memoServiceImpl) GetStatus(ctx context.Context, jobID uuid.UUID) (*JobStatusSnapshot, error) {
	result, err, _ := s.flight.Do(jobID.String(), func() (interface{}, error) {
		return s.readStatus(ctx, jobID)
	})
	if err != nil {
		return nil, NewMemoServiceError("get_status", "failed to read job status", err)
	}

	return result.(*JobStatusSnapshot), nil
}

// readStatus assembles a snapshot from one consistent store read.
func (s *memoServiceImpl) readStatus(ctx context.Context, jobID uuid.UUID) (*JobStatusSnapshot, error) {
	job, sections, err := s.jobs.GetWithSections(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	return &JobStatusSnapshot{
		Job:      job,
		Sections: sections,
		Progress: job.Progress(sections),
	}, nil
}
