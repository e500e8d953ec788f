package generation

import "errors"

// Sentinel errors for section generation. The task layer retries
// ErrTransientFailure and treats everything else as a permanent section
// failure.
var (
	ErrGenerationFailed = errors.New("failed to generate memo section")
	ErrInvalidResponse  = errors.New("invalid response from language model")
	ErrContentBlocked   = errors.New("content blocked by language model safety filters")
	ErrTransientFailure = errors.New("transient error during section generation")
	ErrInvalidConfig    = errors.New("invalid generator configuration")
)
