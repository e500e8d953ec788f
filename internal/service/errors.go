// Package service provides application-level services for managing deals and
// memo generation jobs.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrDealNotFound indicates that the deal does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrDealNotFound = errors.New("deal not found")

	// ErrJobNotFound indicates that the memo job does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrJobNotFound = errors.New("memo job not found")

	// ErrGenerationInProgress indicates the deal already has an active memo
	// job, so a second launch is refused rather than queued.
	// API layer should map this to HTTP 409 Conflict.
	ErrGenerationInProgress = errors.New("memo generation already in progress for this deal")

	// ErrGenerationTimeout indicates the launch wait window elapsed before
	// the worker finished. The job keeps running in the background; only the
	// synchronous wait gave up.
	// API layer should map this to HTTP 504 Gateway Timeout.
	ErrGenerationTimeout = errors.New("memo generation did not finish within the wait window")

	// ErrWorkerFailure indicates the worker could not be invoked at all, as
	// opposed to individual sections failing during generation.
	// API layer should map this to HTTP 500 Internal Server Error.
	ErrWorkerFailure = errors.New("memo generation worker invocation failed")
)
