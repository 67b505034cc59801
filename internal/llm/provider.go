package llm

import "context"

// Request carries a single-turn prompt; no conversation history is sent
type Request struct {
	Message string
}

// Response contains the LLM generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate sends the message upstream and returns the reply text.
	// An unusable payload yields ErrEmptyResponse or ErrMalformedResponse.
	Generate(ctx context.Context, req Request, model string) (*Response, error)
}
