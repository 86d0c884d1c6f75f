package ai

import (
	"context"
	"fmt"
)

// Provider is the interface every generation backend implements.
type Provider interface {
	// Generate sends prompt (with an optional system message) and returns
	// the trimmed completion. Failures are *Error values.
	Generate(ctx context.Context, prompt, systemMessage string) (*Completion, error)

	// GenerateImage requests one image for prompt and returns its URL.
	GenerateImage(ctx context.Context, prompt, size string) (string, error)

	// TestConnection reports whether the configured credential can list
	// models. It never returns an error.
	TestConnection(ctx context.Context) bool

	// Model is the configured model name.
	Model() string
}

// NewProvider creates the appropriate provider based on config. A missing
// API key is not an error here; calls fail with ErrConfiguration instead.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

func missingKey(op string) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: "API key is not configured"}
}
