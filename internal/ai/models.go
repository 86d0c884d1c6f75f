package ai

import (
	"net/http"
	"time"
)

// ProviderConfig holds the configuration needed to create a Provider.
type ProviderConfig struct {
	Provider    string // "openai" | "anthropic"
	APIKey      string
	Model       string
	BaseURL     string // empty selects the provider's public endpoint
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int

	// HTTPClient overrides the client built from Timeout. Tests point it at
	// an httptest server.
	HTTPClient *http.Client
	// Sleeper replaces time.Sleep between retries.
	Sleeper func(time.Duration)
}

// Completion is the text produced by one chat call.
type Completion struct {
	Content    string `json:"content"`
	TokensUsed int    `json:"tokens_used"`
	Model      string `json:"model"`
}

func (c ProviderConfig) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (c ProviderConfig) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 1500
	}
	return c.MaxTokens
}
