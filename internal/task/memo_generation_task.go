package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilDealReader = errors.New("deal reader cannot be nil")
	ErrNilJobStore   = errors.New("job store cannot be nil")
	ErrNilGenerator  = errors.New("generator cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
	ErrEmptyJobID    = errors.New("job ID cannot be empty")
)

// DealReader provides the task with read access to deals. Local interface so
// the task package does not depend on the service layer.
type DealReader interface {
	// GetDeal retrieves a deal by its ID
	GetDeal(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error)
}

// JobStore is the subset of job persistence the task needs while working
// through a job's sections.
type JobStore interface {
	// GetWithSections retrieves a job and its sections in display order
	GetWithSections(ctx context.Context, id uuid.UUID) (*domain.MemoJob, []*domain.MemoSection, error)

	// UpdateJobStatus updates the aggregate status of a job
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus, errorMsg string) error

	// TransitionSection moves a section along its status state machine
	TransitionSection(ctx context.Context, sectionID uuid.UUID, target domain.SectionStatus, content, errorMsg string) error

	// MergeContent folds a finished section's text into the job content map
	MergeContent(ctx context.Context, jobID uuid.UUID, sectionType domain.SectionType, content string) error
}

// SectionGenerator produces the prose for one memo section.
type SectionGenerator interface {
	GenerateSection(ctx context.Context, deal *domain.Deal, sectionType domain.SectionType) (string, error)
}

// memoGenerationPayload represents the serialized data stored in the task
type memoGenerationPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// MemoGenerationTask implements the Task interface for generating all
// sections of a deal memo job. Sections are processed one at a time in
// display order; a failed section is recorded and the task moves on, so one
// bad section never blocks the rest of the memo.
type MemoGenerationTask struct {
	id        uuid.UUID
	jobID     uuid.UUID
	deals     DealReader
	jobs      JobStore
	generator SectionGenerator
	logger    *slog.Logger
	status    TaskStatus
}

// NewMemoGenerationTask creates a new memo generation task
func NewMemoGenerationTask(
	jobID uuid.UUID,
	deals DealReader,
	jobs JobStore,
	generator SectionGenerator,
	logger *slog.Logger,
) (*MemoGenerationTask, error) {
	if deals == nil {
		return nil, ErrNilDealReader
	}
	if jobs == nil {
		return nil, ErrNilJobStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if jobID == uuid.Nil {
		return nil, ErrEmptyJobID
	}

	return &MemoGenerationTask{
		id:        uuid.New(),
		jobID:     jobID,
		deals:     deals,
		jobs:      jobs,
		generator: generator,
		logger:    logger.With("task_type", TaskTypeMemoGeneration, "job_id", jobID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *MemoGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *MemoGenerationTask) Type() string {
	return TaskTypeMemoGeneration
}

// Payload returns the task data as a byte slice
func (t *MemoGenerationTask) Payload() []byte {
	data, err := json.Marshal(memoGenerationPayload{JobID: t.jobID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *MemoGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute works through the job's sections in display order and finally
// resolves the job to its terminal status. Running it against a job that is
// already terminal is a no-op, so a task requeued twice is harmless.
func (t *MemoGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting memo generation task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	job, sections, err := t.jobs.GetWithSections(ctx, t.jobID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve job", "error", err)
		return fmt.Errorf("failed to retrieve job: %w", err)
	}

	if job.IsTerminal() {
		t.logger.Info("job already in terminal state, nothing to do",
			"job_status", string(job.Status))
		t.status = TaskStatusCompleted
		return nil
	}

	if job.Status == domain.JobStatusPending {
		if err := t.jobs.UpdateJobStatus(ctx, t.jobID, domain.JobStatusGenerating, ""); err != nil {
			t.status = TaskStatusFailed
			t.logger.Error("failed to move job to generating", "error", err)
			return fmt.Errorf("failed to move job to generating: %w", err)
		}
	}

	deal, err := t.deals.GetDeal(ctx, job.DealID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve deal", "error", err, "deal_id", job.DealID)
		msg := fmt.Sprintf("failed to retrieve deal: %v", err)
		if updateErr := t.jobs.UpdateJobStatus(ctx, t.jobID, domain.JobStatusFailed, msg); updateErr != nil {
			t.logger.Error("failed to mark job as failed", "error", updateErr)
		}
		return fmt.Errorf("failed to retrieve deal: %w", err)
	}

	var failures []string
	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			// Worker shutdown. Leave the job in generating state; startup
			// recovery or the janitor will pick it up.
			t.status = TaskStatusFailed
			t.logger.Warn("task interrupted mid-job", "error", err)
			return fmt.Errorf("task cancelled by context: %w", err)
		}

		switch section.Status {
		case domain.SectionStatusCompleted, domain.SectionStatusFailed:
			// Already settled on a previous run.
			continue

		case domain.SectionStatusGenerating:
			// A crash left this section mid-flight. It cannot go back to
			// pending, so settle it as failed.
			if err := t.jobs.TransitionSection(ctx, section.ID, domain.SectionStatusFailed, "", "generation interrupted"); err != nil {
				t.logger.Error("failed to settle interrupted section",
					"error", err, "section_id", section.ID)
			}
			section.Status = domain.SectionStatusFailed
			failures = append(failures, fmt.Sprintf("%s: generation interrupted", section.SectionType))
			continue
		}

		if err := t.processSection(ctx, deal, section); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", section.SectionType, err))
		}
	}

	finalStatus := domain.ResolveTerminalStatus(sections)
	finalError := strings.Join(failures, "; ")

	if err := t.jobs.UpdateJobStatus(ctx, t.jobID, finalStatus, finalError); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to record terminal job status",
			"error", err, "final_status", string(finalStatus))
		return fmt.Errorf("failed to record terminal job status: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("memo generation task finished",
		"final_status", string(finalStatus),
		"completed_sections", domain.CountCompletedSections(sections),
		"total_sections", len(sections))

	if finalStatus == domain.JobStatusFailed {
		return fmt.Errorf("memo generation finished with failed sections: %s", finalError)
	}
	return nil
}

// processSection runs one pending section through generating to a terminal
// state, mirroring the outcome onto the in-memory section so the caller can
// resolve the job without a re-read.
func (t *MemoGenerationTask) processSection(
	ctx context.Context,
	deal *domain.Deal,
	section *domain.MemoSection,
) error {
	logger := t.logger.With("section_id", section.ID, "section_type", string(section.SectionType))

	if err := t.jobs.TransitionSection(ctx, section.ID, domain.SectionStatusGenerating, "", ""); err != nil {
		logger.Error("failed to move section to generating", "error", err)
		section.Status = domain.SectionStatusFailed
		return fmt.Errorf("failed to move section to generating: %w", err)
	}
	section.Status = domain.SectionStatusGenerating

	content, err := t.generator.GenerateSection(ctx, deal, section.SectionType)
	if err != nil {
		logger.Error("section generation failed", "error", err)
		if transErr := t.jobs.TransitionSection(ctx, section.ID, domain.SectionStatusFailed, "", err.Error()); transErr != nil {
			logger.Error("failed to mark section as failed", "error", transErr)
		}
		section.Status = domain.SectionStatusFailed
		return err
	}

	if err := t.jobs.TransitionSection(ctx, section.ID, domain.SectionStatusCompleted, content, ""); err != nil {
		logger.Error("failed to mark section as completed", "error", err)
		section.Status = domain.SectionStatusFailed
		return fmt.Errorf("failed to mark section as completed: %w", err)
	}
	section.Status = domain.SectionStatusCompleted
	section.Content = content

	if err := t.jobs.MergeContent(ctx, t.jobID, section.SectionType, content); err != nil {
		// The section itself is completed; losing the job-level merge only
		// affects the aggregated content view.
		logger.Error("failed to merge section content into job", "error", err)
	}

	logger.Debug("section completed", "content_length", len(content))
	return nil
}
