package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/service"
)

// Common request/response structures

// CreateDealRequest defines the payload for the deal creation endpoint.
type CreateDealRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=200"`
	Company     string `json:"company"     validate:"required,min=1,max=200"`
	Stage       string `json:"stage"       validate:"required,min=1,max=50"`
	Description string `json:"description" validate:"required,min=1,max=10000"`
}

// DealResponse defines the representation of a deal returned by the API.
type DealResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Stage       string    `json:"stage"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DealListResponse wraps a page of deals.
type DealListResponse struct {
	Deals []DealResponse `json:"deals"`
}

// SectionResponse defines the representation of a single memo section,
// including its per-section lifecycle status.
type SectionResponse struct {
	ID          uuid.UUID  `json:"id"`
	SectionType string     `json:"section_type"`
	Order       int        `json:"order"`
	Status      string     `json:"status"`
	Content     string     `json:"content,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MemoJobResponse defines the representation of a memo generation job.
// Progress is derived from section states at read time, never stored.
type MemoJobResponse struct {
	JobID             uuid.UUID         `json:"job_id"`
	DealID            uuid.UUID         `json:"deal_id"`
	Status            string            `json:"status"`
	Progress          float64           `json:"progress"`
	SectionsCompleted int               `json:"sections_completed"`
	TotalSections     int               `json:"total_sections"`
	Sections          []SectionResponse `json:"sections"`
	Content       map[string]string `json:"content,omitempty"`
	Error         string            `json:"error,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// dealToResponse converts a domain deal into its API representation.
func dealToResponse(deal *domain.Deal) DealResponse {
	return DealResponse{
		ID:          deal.ID,
		Name:        deal.Name,
		Company:     deal.Company,
		Stage:       deal.Stage,
		Description: deal.Description,
		CreatedAt:   deal.CreatedAt,
		UpdatedAt:   deal.UpdatedAt,
	}
}

// snapshotToResponse converts a job status snapshot into its API
// representation. Section content is surfaced through the job-level
// content map keyed by section type.
func snapshotToResponse(snapshot *service.JobStatusSnapshot) MemoJobResponse {
	sections := make([]SectionResponse, 0, len(snapshot.Sections))
	for _, section := range snapshot.Sections {
		sections = append(sections, SectionResponse{
			ID:          section.ID,
			SectionType: string(section.SectionType),
			Order:       section.Order,
			Status:      string(section.Status),
			Content:     section.Content,
			Error:       section.Error,
			StartedAt:   section.StartedAt,
			CompletedAt: section.CompletedAt,
		})
	}

	var content map[string]string
	if len(snapshot.Job.Content) > 0 {
		content = make(map[string]string, len(snapshot.Job.Content))
		for sectionType, text := range snapshot.Job.Content {
			content[string(sectionType)] = text
		}
	}

	return MemoJobResponse{
		JobID:             snapshot.Job.ID,
		DealID:            snapshot.Job.DealID,
		Status:            string(snapshot.Job.Status),
		Progress:          snapshot.Progress,
		SectionsCompleted: domain.CountCompletedSections(snapshot.Sections),
		TotalSections:     snapshot.Job.TotalSections,
		Sections:          sections,
		Content:           content,
		Error:             snapshot.Job.Error,
		CreatedAt:         snapshot.Job.CreatedAt,
		UpdatedAt:         snapshot.Job.UpdatedAt,
	}
}
