package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/store"
	"github.com/google/uuid"
)

// mockDealReader implements DealReader for testing
type mockDealReader struct {
	GetDealFn func(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error)
}

func (m *mockDealReader) GetDeal(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error) {
	return m.GetDealFn(ctx, dealID)
}

// mockGenerator implements SectionGenerator for testing
type mockGenerator struct {
	GenerateSectionFn func(ctx context.Context, deal *domain.Deal, sectionType domain.SectionType) (string, error)
}

func (m *mockGenerator) GenerateSection(
	ctx context.Context,
	deal *domain.Deal,
	sectionType domain.SectionType,
) (string, error) {
	return m.GenerateSectionFn(ctx, deal, sectionType)
}

// fakeJobStore is an in-memory JobStore, RecoveryStore, and JanitorStore
// that enforces the same section transition rules as the SQL implementation.
type fakeJobStore struct {
	mu       sync.Mutex
	jobs     map[uuid.UUID]*domain.MemoJob
	sections map[uuid.UUID]*domain.MemoSection
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:     make(map[uuid.UUID]*domain.MemoJob),
		sections: make(map[uuid.UUID]*domain.MemoSection),
	}
}

func (f *fakeJobStore) addJob(job *domain.MemoJob, sections []*domain.MemoSection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
	for _, s := range sections {
		f.sections[s.ID] = s
	}
}

func (f *fakeJobStore) GetWithSections(
	ctx context.Context,
	id uuid.UUID,
) (*domain.MemoJob, []*domain.MemoSection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	job, ok := f.jobs[id]
	if !ok {
		return nil, nil, store.ErrJobNotFound
	}

	jobCopy := *job
	var sections []*domain.MemoSection
	for _, s := range f.sections {
		if s.JobID == id {
			sCopy := *s
			sections = append(sections, &sCopy)
		}
	}
	for i := 0; i < len(sections); i++ {
		for j := i + 1; j < len(sections); j++ {
			if sections[j].Order < sections[i].Order {
				sections[i], sections[j] = sections[j], sections[i]
			}
		}
	}
	return &jobCopy, sections, nil
}

func (f *fakeJobStore) UpdateJobStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	errorMsg string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	job, ok := f.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	job.Status = status
	if status == domain.JobStatusFailed {
		job.Error = errorMsg
	}
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeJobStore) TransitionSection(
	ctx context.Context,
	sectionID uuid.UUID,
	target domain.SectionStatus,
	content, errorMsg string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	section, ok := f.sections[sectionID]
	if !ok {
		return store.ErrSectionNotFound
	}
	if !section.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, section.Status, target)
	}
	section.Status = target
	if target == domain.SectionStatusCompleted {
		section.Content = content
	}
	if target == domain.SectionStatusFailed {
		section.Error = errorMsg
	}
	return nil
}

func (f *fakeJobStore) MergeContent(
	ctx context.Context,
	jobID uuid.UUID,
	sectionType domain.SectionType,
	content string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	job, ok := f.jobs[jobID]
	if !ok {
		return store.ErrJobNotFound
	}
	if job.Content == nil {
		job.Content = make(map[domain.SectionType]string)
	}
	job.Content[sectionType] = content
	return nil
}

func (f *fakeJobStore) FindJobsByStatus(
	ctx context.Context,
	status domain.JobStatus,
	limit int,
) ([]*domain.MemoJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var jobs []*domain.MemoJob
	for _, job := range f.jobs {
		if job.Status == status && len(jobs) < limit {
			jobCopy := *job
			jobs = append(jobs, &jobCopy)
		}
	}
	return jobs, nil
}

func (f *fakeJobStore) FindStalled(
	ctx context.Context,
	olderThan time.Duration,
) ([]*domain.MemoJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var jobs []*domain.MemoJob
	for _, job := range f.jobs {
		if job.Status == domain.JobStatusGenerating && job.UpdatedAt.Before(cutoff) {
			jobCopy := *job
			jobs = append(jobs, &jobCopy)
		}
	}
	return jobs, nil
}

func (f *fakeJobStore) sectionStatus(id uuid.UUID) domain.SectionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sections[id].Status
}

func (f *fakeJobStore) jobStatus(id uuid.UUID) domain.JobStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id].Status
}

// newTestJob builds a pending job with the full section skeleton.
func newTestJob() (*domain.MemoJob, []*domain.MemoSection, *domain.Deal) {
	deal, _ := domain.NewDeal("Series A - Acme Robotics", "Acme Robotics", "series_a", "Warehouse automation robots.")
	job, _ := domain.NewMemoJob(deal.ID)

	var sections []*domain.MemoSection
	for i, sectionType := range domain.AllSectionTypes() {
		section, _ := domain.NewMemoSection(job.ID, sectionType, i)
		sections = append(sections, section)
	}
	return job, sections, deal
}

// stubTask is a minimal Task for queue and runner tests.
type stubTask struct {
	id        uuid.UUID
	taskType  string
	executeFn func(ctx context.Context) error
}

func newStubTask() *stubTask {
	return &stubTask{
		id:        uuid.New(),
		taskType:  TaskTypeMemoGeneration,
		executeFn: func(ctx context.Context) error { return nil },
	}
}

func (t *stubTask) ID() uuid.UUID      { return t.id }
func (t *stubTask) Type() string       { return t.taskType }
func (t *stubTask) Payload() []byte    { return nil }
func (t *stubTask) Status() TaskStatus { return TaskStatusPending }
func (t *stubTask) Execute(ctx context.Context) error {
	return t.executeFn(ctx)
}
