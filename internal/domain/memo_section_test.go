package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoSection(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()

	t.Run("creates pending section", func(t *testing.T) {
		section, err := NewMemoSection(jobID, SectionMarketAnalysis, 2)

		require.NoError(t, err)
		assert.Equal(t, jobID, section.JobID)
		assert.Equal(t, SectionMarketAnalysis, section.SectionType)
		assert.Equal(t, 2, section.Order)
		assert.Equal(t, SectionStatusPending, section.Status)
		assert.Nil(t, section.StartedAt)
		assert.Nil(t, section.CompletedAt)
	})

	t.Run("fails with nil job ID", func(t *testing.T) {
		section, err := NewMemoSection(uuid.Nil, SectionTeam, 0)

		assert.ErrorIs(t, err, ErrEmptySectionJobID)
		assert.Nil(t, section)
	})

	t.Run("fails with unknown section type", func(t *testing.T) {
		section, err := NewMemoSection(jobID, SectionType("appendix"), 0)

		assert.ErrorIs(t, err, ErrInvalidSectionType)
		assert.Nil(t, section)
	})
}

func TestMemoSectionTransitions(t *testing.T) {
	t.Parallel()

	newSection := func(t *testing.T) *MemoSection {
		t.Helper()
		section, err := NewMemoSection(uuid.New(), SectionRisks, 9)
		require.NoError(t, err)
		return section
	}

	t.Run("pending to generating stamps started at", func(t *testing.T) {
		section := newSection(t)

		err := section.UpdateStatus(SectionStatusGenerating)

		require.NoError(t, err)
		assert.Equal(t, SectionStatusGenerating, section.Status)
		assert.NotNil(t, section.StartedAt)
	})

	t.Run("generating to completed stamps completed at", func(t *testing.T) {
		section := newSection(t)
		require.NoError(t, section.UpdateStatus(SectionStatusGenerating))

		err := section.UpdateStatus(SectionStatusCompleted)

		require.NoError(t, err)
		assert.Equal(t, SectionStatusCompleted, section.Status)
		assert.NotNil(t, section.CompletedAt)
	})

	t.Run("generating to failed is allowed", func(t *testing.T) {
		section := newSection(t)
		require.NoError(t, section.UpdateStatus(SectionStatusGenerating))

		err := section.UpdateStatus(SectionStatusFailed)

		require.NoError(t, err)
		assert.Equal(t, SectionStatusFailed, section.Status)
	})

	t.Run("pending cannot jump to completed", func(t *testing.T) {
		section := newSection(t)

		err := section.UpdateStatus(SectionStatusCompleted)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, SectionStatusPending, section.Status)
	})

	t.Run("completed cannot move back to pending", func(t *testing.T) {
		section := newSection(t)
		require.NoError(t, section.UpdateStatus(SectionStatusGenerating))
		require.NoError(t, section.UpdateStatus(SectionStatusCompleted))

		err := section.UpdateStatus(SectionStatusPending)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, SectionStatusCompleted, section.Status)
	})

	t.Run("failed is terminal", func(t *testing.T) {
		section := newSection(t)
		require.NoError(t, section.UpdateStatus(SectionStatusGenerating))
		require.NoError(t, section.UpdateStatus(SectionStatusFailed))

		for _, target := range []SectionStatus{
			SectionStatusPending, SectionStatusGenerating, SectionStatusCompleted,
		} {
			assert.ErrorIs(t, section.UpdateStatus(target), ErrInvalidTransition)
		}
	})
}

func TestAllSectionTypes(t *testing.T) {
	t.Parallel()

	types := AllSectionTypes()

	assert.Len(t, types, 12)
	assert.Equal(t, SectionExecutiveSummary, types[0])
	assert.Equal(t, SectionRecommendation, types[len(types)-1])

	seen := make(map[SectionType]bool)
	for _, st := range types {
		assert.True(t, IsValidSectionType(st))
		assert.False(t, seen[st], "duplicate section type %s", st)
		seen[st] = true
	}
}
