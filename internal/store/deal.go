package store

import (
	"context"
	"database/sql"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/google/uuid"
)

// DealStore defines the interface for deal data persistence.
type DealStore interface {
	// Create saves a new deal to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, deal *domain.Deal) error

	// GetByID retrieves a deal by its unique ID.
	// Returns ErrDealNotFound if the deal does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error)

	// List retrieves deals ordered by creation time descending.
	// Returns an empty slice if no deals exist.
	List(ctx context.Context, limit, offset int) ([]*domain.Deal, error)

	// WithTx returns a new DealStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) DealStore
}
