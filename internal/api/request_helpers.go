package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cdandre/dealmemo-api/internal/api/shared"
	"github.com/cdandre/dealmemo-api/internal/domain"
)

// getSubjectIDFromContext extracts the authenticated subject's UUID from the
// request context. The subject ID is placed in the context by the
// authentication middleware.
//
// Returns:
//   - (uuid.UUID, true): The subject's UUID if successfully extracted
//   - (uuid.UUID{}, false): A zero UUID and false if not found or invalid
func getSubjectIDFromContext(r *http.Request) (uuid.UUID, bool) {
	subjectID, ok := r.Context().Value(shared.SubjectIDContextKey).(uuid.UUID)
	if !ok || subjectID == uuid.Nil {
		return uuid.Nil, false
	}
	return subjectID, true
}

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
//
// Returns:
//   - (uuid.UUID, nil): The parsed UUID if valid
//   - (uuid.UUID{}, error): A zero UUID and an error if the parameter is
//     missing or malformed
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}
