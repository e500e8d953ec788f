package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoJob(t *testing.T) {
	t.Parallel()

	t.Run("creates pending job with full section count", func(t *testing.T) {
		dealID := uuid.New()

		job, err := NewMemoJob(dealID)

		require.NoError(t, err)
		assert.Equal(t, dealID, job.DealID)
		assert.Equal(t, JobStatusPending, job.Status)
		assert.Equal(t, len(AllSectionTypes()), job.TotalSections)
		assert.Empty(t, job.Content)
		assert.NotEqual(t, uuid.Nil, job.ID)
	})

	t.Run("fails with nil deal ID", func(t *testing.T) {
		job, err := NewMemoJob(uuid.Nil)

		assert.ErrorIs(t, err, ErrEmptyJobDealID)
		assert.Nil(t, job)
	})
}

func TestMemoJobUpdateStatus(t *testing.T) {
	t.Parallel()

	job, err := NewMemoJob(uuid.New())
	require.NoError(t, err)

	t.Run("accepts valid status", func(t *testing.T) {
		before := job.UpdatedAt

		err := job.UpdateStatus(JobStatusGenerating)

		require.NoError(t, err)
		assert.Equal(t, JobStatusGenerating, job.Status)
		assert.False(t, job.UpdatedAt.Before(before))
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		err := job.UpdateStatus(JobStatus("archived"))

		assert.ErrorIs(t, err, ErrInvalidJobStatus)
	})
}

func TestMemoJobProgress(t *testing.T) {
	t.Parallel()

	newSections := func(t *testing.T, jobID uuid.UUID, completed int) []*MemoSection {
		t.Helper()
		var sections []*MemoSection
		for i, st := range AllSectionTypes() {
			section, err := NewMemoSection(jobID, st, i)
			require.NoError(t, err)
			if i < completed {
				require.NoError(t, section.UpdateStatus(SectionStatusGenerating))
				require.NoError(t, section.UpdateStatus(SectionStatusCompleted))
			}
			sections = append(sections, section)
		}
		return sections
	}

	t.Run("progress is completed over total times 100", func(t *testing.T) {
		job, err := NewMemoJob(uuid.New())
		require.NoError(t, err)

		for completed := 0; completed <= job.TotalSections; completed++ {
			sections := newSections(t, job.ID, completed)
			want := float64(completed) / float64(job.TotalSections) * 100
			assert.InDelta(t, want, job.Progress(sections), 0.0001)
		}
	})

	t.Run("zero total sections yields zero progress", func(t *testing.T) {
		job, err := NewMemoJob(uuid.New())
		require.NoError(t, err)
		job.TotalSections = 0

		assert.Zero(t, job.Progress(nil))
	})

	t.Run("progress is clamped to 100", func(t *testing.T) {
		job, err := NewMemoJob(uuid.New())
		require.NoError(t, err)
		sections := newSections(t, job.ID, job.TotalSections)
		// More completed sections than the job expects.
		job.TotalSections = 1

		assert.Equal(t, float64(100), job.Progress(sections))
	})
}

func TestResolveTerminalStatus(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()

	advance := func(t *testing.T, s *MemoSection, target SectionStatus) {
		t.Helper()
		require.NoError(t, s.UpdateStatus(SectionStatusGenerating))
		require.NoError(t, s.UpdateStatus(target))
	}

	t.Run("completed when every section completed", func(t *testing.T) {
		var sections []*MemoSection
		for i, st := range AllSectionTypes() {
			section, err := NewMemoSection(jobID, st, i)
			require.NoError(t, err)
			advance(t, section, SectionStatusCompleted)
			sections = append(sections, section)
		}

		assert.Equal(t, JobStatusCompleted, ResolveTerminalStatus(sections))
	})

	t.Run("not completed while a section remains pending", func(t *testing.T) {
		var sections []*MemoSection
		for i, st := range AllSectionTypes() {
			section, err := NewMemoSection(jobID, st, i)
			require.NoError(t, err)
			if i > 0 {
				advance(t, section, SectionStatusCompleted)
			}
			sections = append(sections, section)
		}

		// One pending section must keep the aggregate away from completed.
		assert.NotEqual(t, JobStatusCompleted, ResolveTerminalStatus(sections))
	})

	t.Run("failed when any section failed", func(t *testing.T) {
		var sections []*MemoSection
		for i, st := range AllSectionTypes() {
			section, err := NewMemoSection(jobID, st, i)
			require.NoError(t, err)
			if i == 3 {
				advance(t, section, SectionStatusFailed)
			} else {
				advance(t, section, SectionStatusCompleted)
			}
			sections = append(sections, section)
		}

		assert.Equal(t, JobStatusFailed, ResolveTerminalStatus(sections))
	})
}
