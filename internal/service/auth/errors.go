package auth

import "errors"

// Sentinel errors for bearer token verification. The API layer maps all of
// them to 401; the distinction matters only for the client-facing message.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")
)
