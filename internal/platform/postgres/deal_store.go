package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/platform/logger"
	"github.com/cdandre/dealmemo-api/internal/store"
	"github.com/google/uuid"
)

// PostgresDealStore implements the store.DealStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDealStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDealStore creates a new PostgreSQL implementation of the
// DealStore interface. The database handle must be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresDealStore(db store.DBTX, logger *slog.Logger) *PostgresDealStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDealStore{
		db:     db,
		logger: logger.With(slog.String("component", "deal_store")),
	}
}

// Ensure PostgresDealStore implements store.DealStore interface
var _ store.DealStore = (*PostgresDealStore)(nil)

// Create implements store.DealStore.Create
func (s *PostgresDealStore) Create(ctx context.Context, deal *domain.Deal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deal.Validate(); err != nil {
		log.Warn("deal validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deal_id", deal.ID.String()))
		return err
	}

	query := `
		INSERT INTO deals (id, name, company, stage, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		deal.ID,
		deal.Name,
		deal.Company,
		deal.Stage,
		deal.Description,
		deal.CreatedAt,
		deal.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create deal",
			slog.String("error", err.Error()),
			slog.String("deal_id", deal.ID.String()))
		return MapError(err)
	}

	log.Info("deal created successfully",
		slog.String("deal_id", deal.ID.String()),
		slog.String("name", deal.Name))
	return nil
}

// GetByID implements store.DealStore.GetByID
// Returns store.ErrDealNotFound if the deal does not exist.
func (s *PostgresDealStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, company, stage, description, created_at, updated_at
		FROM deals
		WHERE id = $1
	`

	var deal domain.Deal
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&deal.ID,
		&deal.Name,
		&deal.Company,
		&deal.Stage,
		&deal.Description,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deal not found", slog.String("deal_id", id.String()))
			return nil, store.ErrDealNotFound
		}
		log.Error("failed to get deal by ID",
			slog.String("error", err.Error()),
			slog.String("deal_id", id.String()))
		return nil, MapError(err)
	}

	return &deal, nil
}

// List implements store.DealStore.List
func (s *PostgresDealStore) List(ctx context.Context, limit, offset int) ([]*domain.Deal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, name, company, stage, description, created_at, updated_at
		FROM deals
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to list deals", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var deals []*domain.Deal
	for rows.Next() {
		var deal domain.Deal
		err := rows.Scan(
			&deal.ID,
			&deal.Name,
			&deal.Company,
			&deal.Stage,
			&deal.Description,
			&deal.CreatedAt,
			&deal.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan deal row", slog.String("error", err.Error()))
			return nil, err
		}
		deals = append(deals, &deal)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if deals == nil {
		deals = []*domain.Deal{}
	}

	return deals, nil
}

// WithTx implements store.DealStore.WithTx
func (s *PostgresDealStore) WithTx(tx *sql.Tx) store.DealStore {
	return &PostgresDealStore{
		db:     tx,
		logger: s.logger,
	}
}
