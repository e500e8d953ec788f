package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the aggregate state of a memo generation job.
type JobStatus string

// Possible job status values
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusGenerating JobStatus = "generating"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Common validation errors for MemoJob
var (
	ErrEmptyJobID     = errors.New("job ID cannot be empty")
	ErrEmptyJobDealID = errors.New("job deal ID cannot be empty")
)

// MemoJob represents a single investment-memo generation run tied to one
// deal. Its content map fills in incrementally as sections complete; the
// aggregate status reaches completed only when every section has.
type MemoJob struct {
	ID            uuid.UUID              `json:"id"`
	DealID        uuid.UUID              `json:"deal_id"`
	Status        JobStatus              `json:"status"`
	Content       map[SectionType]string `json:"content"`
	TotalSections int                    `json:"total_sections"`
	Error         string                 `json:"error,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// NewMemoJob creates a pending MemoJob for the given deal, expecting the
// full fixed set of sections. Returns an error if validation fails.
func NewMemoJob(dealID uuid.UUID) (*MemoJob, error) {
	job := &MemoJob{
		ID:            uuid.New(),
		DealID:        dealID,
		Status:        JobStatusPending,
		Content:       make(map[SectionType]string),
		TotalSections: len(AllSectionTypes()),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the MemoJob has valid data.
func (j *MemoJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.DealID == uuid.Nil {
		return ErrEmptyJobDealID
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	return nil
}

// UpdateStatus updates the job status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (j *MemoJob) UpdateStatus(status JobStatus) error {
	if !isValidJobStatus(status) {
		return ErrInvalidJobStatus
	}

	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// IsTerminal reports whether the job has reached a state from which no
// further transitions are expected.
func (j *MemoJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Progress computes the completion percentage from the given sections.
// It is derived on every read, never stored: 100 * completed / total,
// clamped to [0,100], and 0 when the job expects no sections.
func (j *MemoJob) Progress(sections []*MemoSection) float64 {
	if j.TotalSections == 0 {
		return 0
	}

	completed := CountCompletedSections(sections)
	progress := float64(completed) / float64(j.TotalSections) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// CountCompletedSections returns how many of the given sections have
// completed.
func CountCompletedSections(sections []*MemoSection) int {
	count := 0
	for _, s := range sections {
		if s.Status == SectionStatusCompleted {
			count++
		}
	}
	return count
}

// ResolveTerminalStatus decides the job's terminal status once the worker
// has attempted every section: completed only when all sections completed,
// failed otherwise. A job with any failed section never reports completed.
func ResolveTerminalStatus(sections []*MemoSection) JobStatus {
	for _, s := range sections {
		if s.Status != SectionStatusCompleted {
			return JobStatusFailed
		}
	}
	return JobStatusCompleted
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusGenerating, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
