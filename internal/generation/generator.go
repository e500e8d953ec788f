package generation

import (
	"context"

	"github.com/cdandre/dealmemo-api/internal/domain"
)

// SectionGenerator defines the interface for generating a single deal memo
// section from deal context. This interface serves as a boundary between the
// application core and external AI/LLM services, following the hexagonal
// architecture pattern.
type SectionGenerator interface {
	// GenerateSection produces the prose for one memo section of the given
	// type, using the deal as source material.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - deal: The deal the memo is being written about
	//   - sectionType: Which of the fixed memo sections to generate
	//
	// Returns:
	//   - The generated section text
	//   - An error if the generation fails for any reason (see errors.go for specific types)
	GenerateSection(ctx context.Context, deal *domain.Deal, sectionType domain.SectionType) (string, error)
}
