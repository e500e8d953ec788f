package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/google/uuid"
)

// MemoJobStore defines the interface for memo job and section persistence.
// All writes to a job come from a single worker; reads come from any number
// of concurrent pollers, so every operation here is safe under that split.
type MemoJobStore interface {
	// CreateWithSections atomically saves a new job together with its pending
	// sections. Returns ErrActiveJobExists if the deal already has a job in a
	// non-terminal state, so duplicate launches never race each other.
	CreateWithSections(ctx context.Context, job *domain.MemoJob, sections []*domain.MemoSection) error

	// GetByID retrieves a job by its unique ID, without its sections.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MemoJob, error)

	// GetWithSections retrieves a job and its sections sorted by display
	// order ascending. Returns ErrJobNotFound if the job does not exist.
	GetWithSections(ctx context.Context, id uuid.UUID) (*domain.MemoJob, []*domain.MemoSection, error)

	// UpdateJobStatus updates the aggregate status of a job. The error
	// message is stored alongside failed status and ignored otherwise.
	// Returns ErrJobNotFound if the job does not exist.
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus, errorMsg string) error

	// TransitionSection moves a section to the target status, recording
	// content for completed and an error message for failed. The update is
	// guarded at the row level: an edge outside
	// pending -> generating -> completed/failed returns ErrInvalidTransition.
	// Returns ErrSectionNotFound if the section does not exist.
	TransitionSection(ctx context.Context, sectionID uuid.UUID, target domain.SectionStatus, content, errorMsg string) error

	// MergeContent folds one generated section's text into the job-level
	// content map, keyed by section type.
	// Returns ErrJobNotFound if the job does not exist.
	MergeContent(ctx context.Context, jobID uuid.UUID, sectionType domain.SectionType, content string) error

	// FindJobsByStatus retrieves jobs with the given aggregate status,
	// oldest first. Used for startup recovery.
	FindJobsByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.MemoJob, error)

	// FindStalled retrieves jobs that have sat in generating state without
	// an update for longer than olderThan. Used by the janitor.
	FindStalled(ctx context.Context, olderThan time.Duration) ([]*domain.MemoJob, error)

	// WithTx returns a new MemoJobStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) MemoJobStore
}
