package geminisdk

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/studymate/internal/config"
	"github.com/Rrens/studymate/internal/llm"
)

func TestExtractText(t *testing.T) {
	withParts := func(parts ...genai.Part) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
		}
	}

	text, err := extractText(withParts(genai.Text("first"), genai.Text("second")))
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	_, err = extractText(withParts(genai.Text("")))
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	_, err = extractText(withParts())
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	_, err = extractText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	_, err = extractText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	_, err = extractText(withParts(genai.Blob{MIMEType: "image/png"}))
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)

	_, err = extractText(nil)
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestProvider_Defaults(t *testing.T) {
	p := NewProvider(config.GeminiConfig{})
	assert.Equal(t, "gemini", p.Name())
	assert.Equal(t, "gemini-2.5-flash", p.DefaultModel())
	assert.False(t, p.IsConfigured())

	_, err := p.Generate(context.Background(), llm.Request{Message: "hi"}, "")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}
