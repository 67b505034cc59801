package llm

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured     = errors.New("provider not configured")
	ErrProviderNotFound  = errors.New("provider not found")
	ErrTimeout           = errors.New("upstream request timed out")
	ErrEmptyResponse     = errors.New("upstream returned no text")
	ErrMalformedResponse = errors.New("upstream returned a malformed payload")
)

// StatusError reports a non-success HTTP status from an upstream API.
// Body is kept for server-side logging and must not be relayed to callers.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}
