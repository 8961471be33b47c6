package llm

import (
	"context"

	"github.com/kango-hamed/musia-guide/internal/domain"
)

// Request contains reply generation parameters for one conversation turn.
type Request struct {
	Question string
	Intent   string
	Artwork  *domain.Artwork
	BestFAQ  *domain.FAQ
	History  []domain.Turn
}

// Response contains an LLM generation result.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// GenerateReply produces the guide's answer to a visitor question
	GenerateReply(ctx context.Context, req Request, model string) (*Response, error)
}
