package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Deal
var (
	ErrEmptyDealID   = errors.New("deal ID cannot be empty")
	ErrEmptyDealName = errors.New("deal name cannot be empty")
)

// Deal represents a venture investment opportunity under evaluation.
// It carries the descriptive fields the memo generator reads when
// producing section content.
type Deal struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Stage       string    `json:"stage"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeal creates a new Deal with the given name, company, stage, and
// description. It generates a new UUID and sets the timestamps.
// Returns an error if validation fails.
func NewDeal(name, company, stage, description string) (*Deal, error) {
	deal := &Deal{
		ID:          uuid.New(),
		Name:        name,
		Company:     company,
		Stage:       stage,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := deal.Validate(); err != nil {
		return nil, err
	}

	return deal, nil
}

// Validate checks if the Deal has valid data.
// Returns an error if any field fails validation.
func (d *Deal) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDealID
	}

	if d.Name == "" {
		return ErrEmptyDealName
	}

	return nil
}
