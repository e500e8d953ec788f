package task

import (
	"log/slog"

	"github.com/google/uuid"
)

// MemoGenerationTaskFactory creates MemoGenerationTask instances
type MemoGenerationTaskFactory struct {
	deals     DealReader
	jobs      JobStore
	generator SectionGenerator
	logger    *slog.Logger
}

// NewMemoGenerationTaskFactory creates a new factory for MemoGenerationTasks
func NewMemoGenerationTaskFactory(
	deals DealReader,
	jobs JobStore,
	generator SectionGenerator,
	logger *slog.Logger,
) *MemoGenerationTaskFactory {
	return &MemoGenerationTaskFactory{
		deals:     deals,
		jobs:      jobs,
		generator: generator,
		logger:    logger.With("component", "memo_generation_task_factory"),
	}
}

// Ensure MemoGenerationTaskFactory implements TaskFactory
var _ TaskFactory = (*MemoGenerationTaskFactory)(nil)

// CreateTask creates a new MemoGenerationTask for the specified job
func (f *MemoGenerationTaskFactory) CreateTask(jobID uuid.UUID) (Task, error) {
	task, err := NewMemoGenerationTask(
		jobID,
		f.deals,
		f.jobs,
		f.generator,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
