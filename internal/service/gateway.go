package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/llm"
)

// FallbackReply stands in for an upstream payload without usable text
const FallbackReply = "No response from Gemini."

// Gateway relays one user message to the language model and returns the reply
type Gateway interface {
	Relay(ctx context.Context, message string) (string, error)
}

// GatewayService is the in-process gateway: a stateless single-turn relay
// to the configured LLM provider.
type GatewayService struct {
	llmRouter *llm.Router
	provider  string
	timeout   time.Duration
}

// NewGatewayService relays through provider (empty means the router default),
// bounding every upstream call by timeout when it is positive.
func NewGatewayService(llmRouter *llm.Router, provider string, timeout time.Duration) *GatewayService {
	return &GatewayService{
		llmRouter: llmRouter,
		provider:  provider,
		timeout:   timeout,
	}
}

// Relay forwards message as the only content of one turn.
// Errors: ErrInvalidMessage, llm.ErrTimeout, *llm.StatusError, or a wrapped transport error.
func (s *GatewayService) Relay(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrInvalidMessage
	}

	provider, err := s.llmRouter.GetProvider(s.provider)
	if err != nil {
		return "", fmt.Errorf("failed to get LLM provider: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := provider.Generate(ctx, llm.Request{Message: message}, "")
	if err != nil {
		var statusErr *llm.StatusError
		switch {
		case errors.Is(err, llm.ErrEmptyResponse), errors.Is(err, llm.ErrMalformedResponse):
			log.Warn().Err(err).Str("provider", provider.Name()).Msg("Unusable upstream payload, using fallback reply")
			return FallbackReply, nil
		case errors.As(err, &statusErr):
			log.Error().
				Str("provider", statusErr.Provider).
				Int("status", statusErr.StatusCode).
				Str("body", statusErr.Body).
				Msg("Upstream API error")
			return "", err
		case errors.Is(err, context.DeadlineExceeded):
			log.Error().Err(err).Str("provider", provider.Name()).Dur("timeout", s.timeout).Msg("Upstream request timed out")
			return "", fmt.Errorf("%w: %v", llm.ErrTimeout, err)
		default:
			log.Error().Err(err).Str("provider", provider.Name()).Msg("Upstream request failed")
			return "", err
		}
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Gateway reply")

	return resp.Text, nil
}
