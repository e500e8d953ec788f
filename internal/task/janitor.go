package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// JanitorStore is the subset of job persistence the janitor needs to find
// and settle stalled jobs.
type JanitorStore interface {
	// FindStalled retrieves generating jobs with no update for olderThan
	FindStalled(ctx context.Context, olderThan time.Duration) ([]*domain.MemoJob, error)

	// GetWithSections retrieves a job and its sections in display order
	GetWithSections(ctx context.Context, id uuid.UUID) (*domain.MemoJob, []*domain.MemoSection, error)

	// UpdateJobStatus updates the aggregate status of a job
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus, errorMsg string) error

	// TransitionSection moves a section along its status state machine
	TransitionSection(ctx context.Context, sectionID uuid.UUID, target domain.SectionStatus, content, errorMsg string) error
}

// Janitor periodically fails memo jobs that have sat in generating state
// with no progress for longer than the configured age. It is the backstop
// for worker crashes that startup recovery cannot see, for example when the
// process keeps running but a worker goroutine is gone.
type Janitor struct {
	store    JanitorStore
	cron     *cron.Cron
	schedule string
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewJanitor creates a janitor that runs on the given cron schedule.
// The schedule accepts standard cron expressions and descriptors such
// as "@every 5m".
func NewJanitor(store JanitorStore, schedule string, maxAge time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:    store,
		cron:     cron.New(),
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger.With("component", "janitor"),
	}
}

// Start registers the sweep with the cron scheduler and starts it.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if err := j.Sweep(context.Background()); err != nil {
			j.logger.Error("janitor sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("janitor started", "schedule", j.schedule, "max_age", j.maxAge.String())
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("janitor stopped")
}

// Sweep fails every job that has stalled past the configured age. In-flight
// sections are settled as failed first so the section record explains what
// happened; a poller sees the job flip straight to failed.
func (j *Janitor) Sweep(ctx context.Context) error {
	stalled, err := j.store.FindStalled(ctx, j.maxAge)
	if err != nil {
		return fmt.Errorf("failed to find stalled jobs: %w", err)
	}

	if len(stalled) == 0 {
		return nil
	}

	j.logger.Info("found stalled jobs", "count", len(stalled))

	for _, job := range stalled {
		logger := j.logger.With("job_id", job.ID)

		_, sections, err := j.store.GetWithSections(ctx, job.ID)
		if err != nil {
			logger.Error("failed to load stalled job sections", "error", err)
			continue
		}

		for _, section := range sections {
			if section.Status != domain.SectionStatusGenerating {
				continue
			}
			if err := j.store.TransitionSection(ctx, section.ID, domain.SectionStatusFailed, "", "generation stalled"); err != nil {
				logger.Error("failed to settle stalled section",
					"error", err, "section_id", section.ID)
			}
		}

		msg := fmt.Sprintf("generation stalled: no progress for %s", j.maxAge)
		if err := j.store.UpdateJobStatus(ctx, job.ID, domain.JobStatusFailed, msg); err != nil {
			logger.Error("failed to fail stalled job", "error", err)
			continue
		}

		logger.Warn("failed stalled job", "last_update", job.UpdatedAt)
	}

	return nil
}
