package ai

import "errors"

var (
	// ErrMalformedResponse indicates a provider returned a structurally
	// unusable result, such as an empty embedding vector. Not retryable.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrInvalidMaxAttempts is returned for a retry policy with no attempts.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
