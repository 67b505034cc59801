package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/studymate/internal/config"
	"github.com/Rrens/studymate/internal/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"

	// upstream error bodies are truncated before logging
	maxErrorBody = 4 << 10
)

// Provider implements llm.Provider against the Gemini generateContent REST endpoint
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewProvider creates a new Gemini REST provider
func NewProvider(cfg config.GeminiConfig) *Provider {
	return NewProviderWithClient(cfg, &http.Client{})
}

// NewProviderWithClient lets callers supply the HTTP client
func NewProviderWithClient(cfg config.GeminiConfig, client *http.Client) *Provider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURL,
		client:  client,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-2.0-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return defaultModel
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (p *Provider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini: %w (missing API key)", llm.ErrNotConfigured)
	}

	if model == "" {
		model = p.DefaultModel()
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Message}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}
	latency := time.Since(start).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return nil, &llm.StatusError{Provider: p.Name(), StatusCode: resp.StatusCode, Body: string(raw)}
	}

	text, tokens, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	return &llm.Response{
		Text:       text,
		Model:      model,
		TokensUsed: tokens,
		LatencyMs:  latency,
	}, nil
}

// parseResponse extracts candidates[0].content.parts[0].text
func parseResponse(raw []byte) (string, int, error) {
	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", 0, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}

	tokens := 0
	if parsed.UsageMetadata != nil {
		tokens = parsed.UsageMetadata.TotalTokenCount
	}

	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil ||
		len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", tokens, llm.ErrEmptyResponse
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", tokens, llm.ErrEmptyResponse
	}
	return text, tokens, nil
}
