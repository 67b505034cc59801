package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/studymate/internal/llm"
)

type stubProvider struct {
	name       string
	configured bool
}

func (s stubProvider) Name() string              { return s.name }
func (s stubProvider) AvailableModels() []string { return []string{s.name + "-model"} }
func (s stubProvider) DefaultModel() string      { return s.name + "-model" }
func (s stubProvider) IsConfigured() bool        { return s.configured }
func (s stubProvider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	return &llm.Response{Text: "echo: " + req.Message, Model: model}, nil
}

func TestRouter_GetProvider(t *testing.T) {
	r := llm.NewRouter("gemini")
	r.RegisterProvider(stubProvider{name: "gemini", configured: true})
	r.RegisterProvider(stubProvider{name: "ollama", configured: false})

	p, err := r.GetProvider("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	_, err = r.GetProvider("ollama")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	_, err = r.GetProvider("openai")
	assert.ErrorIs(t, err, llm.ErrProviderNotFound)
}

func TestRouter_ListAndInfo(t *testing.T) {
	r := llm.NewRouter("gemini")
	r.RegisterProvider(stubProvider{name: "ollama", configured: true})
	r.RegisterProvider(stubProvider{name: "gemini", configured: true})
	r.RegisterProvider(stubProvider{name: "offline", configured: false})

	assert.Equal(t, []string{"gemini", "ollama"}, r.ListProviders())

	infos := r.GetProvidersInfo()
	require.Len(t, infos, 3)
	assert.Equal(t, "gemini", infos[0].Name)
	assert.True(t, infos[0].Default)
	assert.Equal(t, "offline", infos[1].Name)
	assert.False(t, infos[1].Configured)
	assert.Equal(t, []string{"ollama-model"}, infos[2].Models)
}

func TestStatusError(t *testing.T) {
	err := &llm.StatusError{Provider: "gemini", StatusCode: 503, Body: "overloaded"}
	assert.Equal(t, "gemini returned status 503", err.Error())
	assert.NotContains(t, err.Error(), "overloaded")
}
