package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/store"
	"github.com/google/uuid"
)

// DealService provides deal management operations
type DealService interface {
	// CreateDeal validates and saves a new deal
	CreateDeal(ctx context.Context, name, company, stage, description string) (*domain.Deal, error)

	// GetDeal retrieves a deal by its ID
	GetDeal(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error)

	// ListDeals retrieves deals ordered by most recently created
	ListDeals(ctx context.Context, limit, offset int) ([]*domain.Deal, error)
}

// dealServiceImpl implements the DealService interface
type dealServiceImpl struct {
	deals  store.DealStore
	logger *slog.Logger
}

// NewDealService creates a new DealService.
func NewDealService(deals store.DealStore, logger *slog.Logger) (DealService, error) {
	if deals == nil {
		return nil, &MemoServiceError{Operation: "create_service", Message: "deal store cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &dealServiceImpl{
		deals:  deals,
		logger: logger.With("component", "deal_service"),
	}, nil
}

// CreateDeal validates and saves a new deal
func (s *dealServiceImpl) CreateDeal(
	ctx context.Context,
	name, company, stage, description string,
) (*domain.Deal, error) {
	deal, err := domain.NewDeal(name, company, stage, description)
	if err != nil {
		s.logger.Warn("deal validation failed", "error", err)
		return nil, err
	}

	if err := s.deals.Create(ctx, deal); err != nil {
		s.logger.Error("failed to save deal", "error", err, "deal_id", deal.ID)
		return nil, NewMemoServiceError("create_deal", "failed to save deal", err)
	}

	s.logger.Info("deal created", "deal_id", deal.ID, "company", deal.Company)
	return deal, nil
}

// GetDeal retrieves a deal by its ID
func (s *dealServiceImpl) GetDeal(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error) {
	deal, err := s.deals.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, store.ErrDealNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, NewMemoServiceError("get_deal", "failed to retrieve deal", err)
	}
	return deal, nil
}

// ListDeals retrieves deals ordered by most recently created
func (s *dealServiceImpl) ListDeals(ctx context.Context, limit, offset int) ([]*domain.Deal, error) {
	deals, err := s.deals.List(ctx, limit, offset)
	if err != nil {
		return nil, NewMemoServiceError("list_deals", "failed to list deals", err)
	}
	return deals, nil
}
