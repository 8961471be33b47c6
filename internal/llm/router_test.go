package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name       string
	configured bool
}

func (s *stubProvider) Name() string              { return s.name }
func (s *stubProvider) AvailableModels() []string { return []string{s.name + "-model"} }
func (s *stubProvider) DefaultModel() string      { return s.name + "-model" }
func (s *stubProvider) IsConfigured() bool        { return s.configured }
func (s *stubProvider) GenerateReply(ctx context.Context, req Request, model string) (*Response, error) {
	return &Response{Text: "ok", Model: model}, nil
}

func TestRouter_GetProvider(t *testing.T) {
	router := NewRouter("groq")
	router.RegisterProvider(&stubProvider{name: "groq", configured: true})
	router.RegisterProvider(&stubProvider{name: "gemini", configured: false})

	p, err := router.GetProvider("groq")
	require.NoError(t, err)
	assert.Equal(t, "groq", p.Name())

	// Empty name routes to the default
	p, err = router.GetProvider("")
	require.NoError(t, err)
	assert.Equal(t, "groq", p.Name())

	_, err = router.GetProvider("gemini")
	assert.EqualError(t, err, "provider not configured: gemini")

	_, err = router.GetProvider("anthropic")
	assert.EqualError(t, err, "provider not found: anthropic")
}

func TestRouter_ListProviders(t *testing.T) {
	router := NewRouter("groq")
	router.RegisterProvider(&stubProvider{name: "groq", configured: true})
	router.RegisterProvider(&stubProvider{name: "gemini", configured: false})

	assert.Equal(t, []string{"groq"}, router.ListProviders())
}

func TestRouter_GetProvidersInfo(t *testing.T) {
	router := NewRouter("groq")
	router.RegisterProvider(&stubProvider{name: "groq", configured: true})

	infos := router.GetProvidersInfo()
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Default)
	assert.True(t, infos[0].Configured)
	assert.Equal(t, []string{"groq-model"}, infos[0].Models)
}
