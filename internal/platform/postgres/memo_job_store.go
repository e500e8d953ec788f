package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/platform/logger"
	"github.com/cdandre/dealmemo-api/internal/store"
	"github.com/google/uuid"
)

// activeJobConstraint is the partial unique index that allows at most one
// pending or generating job per deal. A violation means a concurrent launch
// lost the race, not a storage fault.
const activeJobConstraint = "one_active_job_per_deal"

// PostgresMemoJobStore implements the store.MemoJobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMemoJobStore struct {
	db     store.DBTX
	pool   *sql.DB // nil when running inside a caller-managed transaction
	logger *slog.Logger
}

// NewPostgresMemoJobStore creates a new PostgreSQL implementation of the
// MemoJobStore interface. The *sql.DB is retained so multi-statement
// operations can open their own transactions.
// If logger is nil, a default logger will be used.
func NewPostgresMemoJobStore(db *sql.DB, logger *slog.Logger) *PostgresMemoJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMemoJobStore{
		db:     db,
		pool:   db,
		logger: logger.With(slog.String("component", "memo_job_store")),
	}
}

// Ensure PostgresMemoJobStore implements store.MemoJobStore interface
var _ store.MemoJobStore = (*PostgresMemoJobStore)(nil)

// CreateWithSections implements store.MemoJobStore.CreateWithSections
// The job and all of its pending sections are inserted in one transaction
// so a poller never observes a job without its section skeleton. Returns
// store.ErrActiveJobExists when the deal already has a non-terminal job.
func (s *PostgresMemoJobStore) CreateWithSections(
	ctx context.Context,
	job *domain.MemoJob,
	sections []*domain.MemoSection,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}
	for _, section := range sections {
		if err := section.Validate(); err != nil {
			log.Warn("section validation failed during create",
				slog.String("error", err.Error()),
				slog.String("section_id", section.ID.String()))
			return err
		}
	}

	insert := func(ctx context.Context, db store.DBTX) error {
		contentJSON, err := json.Marshal(job.Content)
		if err != nil {
			return fmt.Errorf("failed to marshal job content: %w", err)
		}

		jobQuery := `
			INSERT INTO memo_jobs (id, deal_id, status, content, total_sections, error, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		if _, err := db.ExecContext(
			ctx,
			jobQuery,
			job.ID,
			job.DealID,
			job.Status,
			contentJSON,
			job.TotalSections,
			job.Error,
			job.CreatedAt,
			job.UpdatedAt,
		); err != nil {
			return err
		}

		sectionQuery := `
			INSERT INTO memo_sections (id, job_id, section_type, display_order, status, content, error, started_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		for _, section := range sections {
			if _, err := db.ExecContext(
				ctx,
				sectionQuery,
				section.ID,
				section.JobID,
				section.SectionType,
				section.Order,
				section.Status,
				nullableString(section.Content),
				nullableString(section.Error),
				section.StartedAt,
				section.CompletedAt,
			); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if s.pool != nil {
		err = store.RunInTransaction(ctx, s.pool, func(ctx context.Context, tx *sql.Tx) error {
			return insert(ctx, tx)
		})
	} else {
		// Already inside a caller-managed transaction.
		err = insert(ctx, s.db)
	}

	if err != nil {
		if IsUniqueViolation(err) {
			log.Info("deal already has an active memo job",
				slog.String("deal_id", job.DealID.String()),
				slog.String("constraint", activeJobConstraint))
			return store.ErrActiveJobExists
		}
		log.Error("failed to create memo job with sections",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()),
			slog.String("deal_id", job.DealID.String()))
		return MapError(err)
	}

	log.Info("memo job created",
		slog.String("job_id", job.ID.String()),
		slog.String("deal_id", job.DealID.String()),
		slog.Int("total_sections", job.TotalSections))
	return nil
}

// GetByID implements store.MemoJobStore.GetByID
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresMemoJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MemoJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, deal_id, status, content, total_sections, error, created_at, updated_at
		FROM memo_jobs
		WHERE id = $1
	`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("memo job not found", slog.String("job_id", id.String()))
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get memo job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, MapError(err)
	}

	return job, nil
}

// GetWithSections implements store.MemoJobStore.GetWithSections
// Sections come back sorted by display order ascending; the ordering is a
// presentation contract, sections may complete in any order.
func (s *PostgresMemoJobStore) GetWithSections(
	ctx context.Context,
	id uuid.UUID,
) (*domain.MemoJob, []*domain.MemoSection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	job, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	query := `
		SELECT id, job_id, section_type, display_order, status, content, error, started_at, completed_at
		FROM memo_sections
		WHERE job_id = $1
		ORDER BY display_order ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		log.Error("failed to query memo sections",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var sections []*domain.MemoSection
	for rows.Next() {
		var section domain.MemoSection
		var content, errorMsg sql.NullString

		err := rows.Scan(
			&section.ID,
			&section.JobID,
			&section.SectionType,
			&section.Order,
			&section.Status,
			&content,
			&errorMsg,
			&section.StartedAt,
			&section.CompletedAt,
		)
		if err != nil {
			log.Error("failed to scan section row", slog.String("error", err.Error()))
			return nil, nil, err
		}

		section.Content = content.String
		section.Error = errorMsg.String
		sections = append(sections, &section)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, nil, err
	}

	if sections == nil {
		sections = []*domain.MemoSection{}
	}

	return job, sections, nil
}

// UpdateJobStatus implements store.MemoJobStore.UpdateJobStatus
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresMemoJobStore) UpdateJobStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE memo_jobs
		SET status = $2,
		    error = CASE WHEN $2 = 'failed' THEN $3 ELSE error END,
		    updated_at = $4
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id, status, errorMsg, time.Now().UTC())
	if err != nil {
		log.Error("failed to update memo job status",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "memo job"); err != nil {
		return store.ErrJobNotFound
	}

	log.Info("memo job status updated",
		slog.String("job_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// TransitionSection implements store.MemoJobStore.TransitionSection
// The WHERE clause only matches the legal predecessor of the target status,
// so an illegal edge affects zero rows and is reported as
// store.ErrInvalidTransition. A section can therefore never be observed
// moving backward, regardless of writer bugs.
func (s *PostgresMemoJobStore) TransitionSection(
	ctx context.Context,
	sectionID uuid.UUID,
	target domain.SectionStatus,
	content, errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var required domain.SectionStatus
	switch target {
	case domain.SectionStatusGenerating:
		required = domain.SectionStatusPending
	case domain.SectionStatusCompleted, domain.SectionStatusFailed:
		required = domain.SectionStatusGenerating
	default:
		return domain.ErrInvalidSectionStatus
	}

	query := `
		UPDATE memo_sections
		SET status = $2,
		    content = CASE WHEN $2 = 'completed' THEN $4 ELSE content END,
		    error = CASE WHEN $2 = 'failed' THEN $5 ELSE error END,
		    started_at = CASE WHEN $2 = 'generating' THEN $6 ELSE started_at END,
		    completed_at = CASE WHEN $2 IN ('completed', 'failed') THEN $6 ELSE completed_at END
		WHERE id = $1 AND status = $3
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		sectionID,
		target,
		required,
		nullableString(content),
		nullableString(errorMsg),
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to transition memo section",
			slog.String("error", err.Error()),
			slog.String("section_id", sectionID.String()),
			slog.String("target", string(target)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing section from an illegal edge.
		var current string
		err := s.db.QueryRowContext(
			ctx, `SELECT status FROM memo_sections WHERE id = $1`, sectionID,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrSectionNotFound
		}
		if err != nil {
			return MapError(err)
		}

		log.Warn("rejected illegal section transition",
			slog.String("section_id", sectionID.String()),
			slog.String("current", current),
			slog.String("target", string(target)))
		return fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, current, target)
	}

	log.Debug("memo section transitioned",
		slog.String("section_id", sectionID.String()),
		slog.String("target", string(target)))
	return nil
}

// MergeContent implements store.MemoJobStore.MergeContent
// The jsonb concatenation keeps the fold atomic per row; concurrent reads
// see either the old or the new map, never a partial one.
func (s *PostgresMemoJobStore) MergeContent(
	ctx context.Context,
	jobID uuid.UUID,
	sectionType domain.SectionType,
	content string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE memo_jobs
		SET content = content || jsonb_build_object($2::text, $3::text),
		    updated_at = $4
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, jobID, string(sectionType), content, time.Now().UTC())
	if err != nil {
		log.Error("failed to merge section content into job",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID.String()),
			slog.String("section_type", string(sectionType)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "memo job"); err != nil {
		return store.ErrJobNotFound
	}

	return nil
}

// FindJobsByStatus implements store.MemoJobStore.FindJobsByStatus
func (s *PostgresMemoJobStore) FindJobsByStatus(
	ctx context.Context,
	status domain.JobStatus,
	limit int,
) ([]*domain.MemoJob, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, deal_id, status, content, total_sections, error, created_at, updated_at
		FROM memo_jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	return s.queryJobs(ctx, query, status, limit)
}

// FindStalled implements store.MemoJobStore.FindStalled
func (s *PostgresMemoJobStore) FindStalled(
	ctx context.Context,
	olderThan time.Duration,
) ([]*domain.MemoJob, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	query := `
		SELECT id, deal_id, status, content, total_sections, error, created_at, updated_at
		FROM memo_jobs
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
	`

	return s.queryJobs(ctx, query, domain.JobStatusGenerating, cutoff)
}

// WithTx implements store.MemoJobStore.WithTx
func (s *PostgresMemoJobStore) WithTx(tx *sql.Tx) store.MemoJobStore {
	return &PostgresMemoJobStore{
		db:     tx,
		pool:   nil,
		logger: s.logger,
	}
}

// queryJobs runs a multi-row job query and scans the results.
func (s *PostgresMemoJobStore) queryJobs(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.MemoJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query memo jobs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var jobs []*domain.MemoJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Error("failed to scan job row", slog.String("error", err.Error()))
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if jobs == nil {
		jobs = []*domain.MemoJob{}
	}

	return jobs, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob reads one memo job row, decoding the jsonb content column.
func scanJob(row rowScanner) (*domain.MemoJob, error) {
	var job domain.MemoJob
	var contentJSON []byte
	var errorMsg sql.NullString

	err := row.Scan(
		&job.ID,
		&job.DealID,
		&job.Status,
		&contentJSON,
		&job.TotalSections,
		&errorMsg,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Content = make(map[domain.SectionType]string)
	if len(contentJSON) > 0 {
		if err := json.Unmarshal(contentJSON, &job.Content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job content: %w", err)
		}
	}
	job.Error = errorMsg.String

	return &job, nil
}

// nullableString maps empty strings to SQL NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
