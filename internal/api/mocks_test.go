package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/service"
)

// mockMemoService implements service.MemoService with configurable behavior.
type mockMemoService struct {
	startGenerationFn func(ctx context.Context, dealID uuid.UUID) (*service.JobStatusSnapshot, error)
	getStatusFn       func(ctx context.Context, jobID uuid.UUID) (*service.JobStatusSnapshot, error)
}

func (m *mockMemoService) StartGeneration(
	ctx context.Context,
	dealID uuid.UUID,
) (*service.JobStatusSnapshot, error) {
	return m.startGenerationFn(ctx, dealID)
}

func (m *mockMemoService) GetStatus(
	ctx context.Context,
	jobID uuid.UUID,
) (*service.JobStatusSnapshot, error) {
	return m.getStatusFn(ctx, jobID)
}

// mockDealService implements service.DealService with configurable behavior.
type mockDealService struct {
	createDealFn func(ctx context.Context, name, company, stage, description string) (*domain.Deal, error)
	getDealFn    func(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error)
	listDealsFn  func(ctx context.Context, limit, offset int) ([]*domain.Deal, error)
}

func (m *mockDealService) CreateDeal(
	ctx context.Context,
	name, company, stage, description string,
) (*domain.Deal, error) {
	return m.createDealFn(ctx, name, company, stage, description)
}

func (m *mockDealService) GetDeal(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error) {
	return m.getDealFn(ctx, dealID)
}

func (m *mockDealService) ListDeals(ctx context.Context, limit, offset int) ([]*domain.Deal, error) {
	return m.listDealsFn(ctx, limit, offset)
}

// newTestDeal builds a valid deal for handler tests.
func newTestDeal(t *testing.T) *domain.Deal {
	t.Helper()
	deal, err := domain.NewDeal("Acme Series A", "Acme", "series_a", "B2B infrastructure startup")
	require.NoError(t, err)
	return deal
}

// newTestSnapshot builds a job snapshot with the given number of completed
// sections out of the full fixed set.
func newTestSnapshot(t *testing.T, dealID uuid.UUID, completed int) *service.JobStatusSnapshot {
	t.Helper()

	job, err := domain.NewMemoJob(dealID)
	require.NoError(t, err)

	types := domain.AllSectionTypes()
	sections := make([]*domain.MemoSection, 0, len(types))
	now := time.Now().UTC()
	for i, sectionType := range types {
		section, err := domain.NewMemoSection(job.ID, sectionType, i)
		require.NoError(t, err)
		if i < completed {
			section.Status = domain.SectionStatusCompleted
			section.Content = "generated text"
			section.StartedAt = &now
			section.CompletedAt = &now
			job.Content[sectionType] = "generated text"
		}
		sections = append(sections, section)
	}

	if completed == len(types) {
		job.Status = domain.JobStatusCompleted
	} else if completed > 0 {
		job.Status = domain.JobStatusGenerating
	}

	return &service.JobStatusSnapshot{
		Job:      job,
		Sections: sections,
		Progress: job.Progress(sections),
	}
}

// newFailedSnapshot builds a snapshot for a job that settled failed: the
// given number of sections completed, the next one failed, the rest pending.
func newFailedSnapshot(t *testing.T, dealID uuid.UUID, completed int) *service.JobStatusSnapshot {
	t.Helper()

	snapshot := newTestSnapshot(t, dealID, completed)
	require.Less(t, completed, len(snapshot.Sections))

	failed := snapshot.Sections[completed]
	failed.Status = domain.SectionStatusFailed
	failed.Error = "content blocked by language model safety filters"

	snapshot.Job.Status = domain.JobStatusFailed
	snapshot.Job.Error = "generation failed for sections: " + string(failed.SectionType)
	return snapshot
}
