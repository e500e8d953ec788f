package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cdandre/dealmemo-api/internal/api/shared"
	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/service"
	"github.com/cdandre/dealmemo-api/internal/service/auth"
	"github.com/cdandre/dealmemo-api/internal/store"
)

// HandleAPIError writes a sanitized error response derived from err.
// The status code and client-facing message come from MapErrorToStatusCode
// and GetSafeErrorMessage; the full error is logged, never exposed.
// An optional userMessage overrides the derived safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrDealNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrDealNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound

	// Conflict: a memo job is already running for this deal
	case errors.Is(err, service.ErrGenerationInProgress):
		return http.StatusConflict

	// The launch wait window expired while generation kept running
	case errors.Is(err, service.ErrGenerationTimeout):
		return http.StatusGatewayTimeout

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrMissingToken):
		return "Authentication required"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Not authorized"

	// Not found errors
	case errors.Is(err, service.ErrDealNotFound),
		errors.Is(err, store.ErrDealNotFound):
		return "Deal not found"

	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return "Memo job not found"

	// Conflict errors
	case errors.Is(err, service.ErrGenerationInProgress):
		return "Memo generation already in progress for this deal"

	// Timeout errors
	case errors.Is(err, service.ErrGenerationTimeout):
		return "Memo generation is still running; poll the job status for updates"

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"

	case errors.Is(err, service.ErrWorkerFailure):
		return "Memo generation could not be started"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'CreateDealRequest.Name' Error:Field validation for 'Name' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			// Further split to get just the field validation part
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				// Create a cleaner error message
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier format"
	default:
		return "validation failed"
	}
}
