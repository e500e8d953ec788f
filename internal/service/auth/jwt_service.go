package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for verifying bearer tokens presented by
// analysts and internal services. Tokens are minted by the external auth
// collaborator; this service only validates them, plus generates tokens for
// the development helper.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the subject.
	// Returns the token string or an error if token generation fails.
	GenerateToken(ctx context.Context, subjectID uuid.UUID) (string, error)

	// ValidateToken validates the provided token string and extracts the
	// claims. Returns an error if validation fails (expired, invalid
	// signature, malformed).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// SubjectID is the unique identifier of the analyst or service the token
	// was issued for.
	SubjectID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
