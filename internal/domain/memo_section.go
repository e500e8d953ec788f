package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SectionType identifies one named subsection of an investment memo.
type SectionType string

// The full set of memo section types, fixed at build time. The declared
// order here is the display order used when a job's sections are created.
const (
	SectionExecutiveSummary SectionType = "executive_summary"
	SectionCompanyOverview  SectionType = "company_overview"
	SectionMarketAnalysis   SectionType = "market_analysis"
	SectionProduct          SectionType = "product"
	SectionBusinessModel    SectionType = "business_model"
	SectionTraction         SectionType = "traction"
	SectionTeam             SectionType = "team"
	SectionCompetition      SectionType = "competition"
	SectionFinancials       SectionType = "financials"
	SectionRisks            SectionType = "risks"
	SectionDealTerms        SectionType = "deal_terms"
	SectionRecommendation   SectionType = "recommendation"
)

// AllSectionTypes returns every memo section type in display order.
func AllSectionTypes() []SectionType {
	return []SectionType{
		SectionExecutiveSummary,
		SectionCompanyOverview,
		SectionMarketAnalysis,
		SectionProduct,
		SectionBusinessModel,
		SectionTraction,
		SectionTeam,
		SectionCompetition,
		SectionFinancials,
		SectionRisks,
		SectionDealTerms,
		SectionRecommendation,
	}
}

// IsValidSectionType checks if the given type is a known SectionType.
func IsValidSectionType(t SectionType) bool {
	for _, known := range AllSectionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// SectionStatus represents the generation state of a single memo section.
type SectionStatus string

// Possible section status values
const (
	SectionStatusPending    SectionStatus = "pending"
	SectionStatusGenerating SectionStatus = "generating"
	SectionStatusCompleted  SectionStatus = "completed"
	SectionStatusFailed     SectionStatus = "failed"
)

// Common validation errors for MemoSection
var (
	ErrEmptySectionID    = errors.New("section ID cannot be empty")
	ErrEmptySectionJobID = errors.New("section job ID cannot be empty")
)

// MemoSection is one independently generated subsection of a memo job.
// Sections are exclusively owned by their job and ordered for display;
// the order carries no generation dependency.
type MemoSection struct {
	ID          uuid.UUID     `json:"id"`
	JobID       uuid.UUID     `json:"job_id"`
	SectionType SectionType   `json:"section_type"`
	Order       int           `json:"order"`
	Status      SectionStatus `json:"status"`
	Content     string        `json:"content,omitempty"`
	Error       string        `json:"error,omitempty"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// NewMemoSection creates a pending MemoSection for the given job.
// Returns an error if validation fails.
func NewMemoSection(jobID uuid.UUID, sectionType SectionType, order int) (*MemoSection, error) {
	section := &MemoSection{
		ID:          uuid.New(),
		JobID:       jobID,
		SectionType: sectionType,
		Order:       order,
		Status:      SectionStatusPending,
	}

	if err := section.Validate(); err != nil {
		return nil, err
	}

	return section, nil
}

// Validate checks if the MemoSection has valid data.
func (s *MemoSection) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySectionID
	}

	if s.JobID == uuid.Nil {
		return ErrEmptySectionJobID
	}

	if !IsValidSectionType(s.SectionType) {
		return ErrInvalidSectionType
	}

	if !isValidSectionStatus(s.Status) {
		return ErrInvalidSectionStatus
	}

	return nil
}

// CanTransitionTo reports whether moving from the section's current status
// to the target status follows the monotonic discipline
// pending -> generating -> completed/failed. No other edges exist; in
// particular a section never moves backward out of a terminal state.
func (s *MemoSection) CanTransitionTo(target SectionStatus) bool {
	return isValidSectionTransition(s.Status, target)
}

// UpdateStatus applies a status transition, stamping StartedAt or
// CompletedAt as appropriate. Returns ErrInvalidTransition if the edge
// is not allowed.
func (s *MemoSection) UpdateStatus(target SectionStatus) error {
	if !isValidSectionStatus(target) {
		return ErrInvalidSectionStatus
	}

	if !s.CanTransitionTo(target) {
		return ErrInvalidTransition
	}

	now := time.Now().UTC()
	switch target {
	case SectionStatusGenerating:
		s.StartedAt = &now
	case SectionStatusCompleted, SectionStatusFailed:
		s.CompletedAt = &now
	}

	s.Status = target
	return nil
}

// isValidSectionStatus checks if the given status is a valid SectionStatus.
func isValidSectionStatus(status SectionStatus) bool {
	switch status {
	case SectionStatusPending, SectionStatusGenerating,
		SectionStatusCompleted, SectionStatusFailed:
		return true
	default:
		return false
	}
}

// isValidSectionTransition encodes the allowed status edges.
func isValidSectionTransition(from, to SectionStatus) bool {
	switch from {
	case SectionStatusPending:
		return to == SectionStatusGenerating
	case SectionStatusGenerating:
		return to == SectionStatusCompleted || to == SectionStatusFailed
	default:
		// completed and failed are terminal
		return false
	}
}
