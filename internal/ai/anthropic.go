package ai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Compile-time interface check.
var _ Provider = (*AnthropicProvider)(nil)

const anthropicBaseURL = "https://api.anthropic.com/v1"

// AnthropicProvider implements Provider using the Anthropic Messages API.
// It has no image endpoint.
type AnthropicProvider struct {
	cfg     ProviderConfig
	baseURL string
	client  *http.Client
	retry   retrier
}

// NewAnthropicProvider creates an AnthropicProvider from cfg.
func NewAnthropicProvider(cfg ProviderConfig) *AnthropicProvider {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = anthropicBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5"
	}
	return &AnthropicProvider{
		cfg:     cfg,
		baseURL: base,
		client:  cfg.httpClient(),
		retry:   newRetrier(cfg),
	}
}

// Model returns the configured model name.
func (p *AnthropicProvider) Model() string { return p.cfg.Model }

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicModelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p *AnthropicProvider) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": "2023-06-01",
		"content-type":      "application/json",
	}
}

// Generate sends prompt as the single user message. Token usage is input
// plus output tokens.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt, systemMessage string) (*Completion, error) {
	const op = "anthropic generate"
	if p.cfg.APIKey == "" {
		return nil, missingKey(op)
	}

	reqBody := anthropicRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.maxTokens(),
		Temperature: min(p.cfg.Temperature, 1),
		System:      systemMessage,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}

	slog.Debug("calling Anthropic API", "model", p.cfg.Model)

	var resp anthropicResponse
	err := p.retry.do(ctx, func() error {
		resp = anthropicResponse{}
		return doJSON(ctx, p.client, op, http.MethodPost, p.baseURL+"/messages", p.headers(), reqBody, &resp)
	})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
			found = true
		}
	}
	if !found {
		return nil, &Error{Kind: KindProtocol, Op: op, StatusCode: http.StatusOK, Message: "invalid response from API: no text content"}
	}

	model := resp.Model
	if model == "" {
		model = p.cfg.Model
	}
	return &Completion{
		Content:    strings.TrimSpace(text.String()),
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
		Model:      model,
	}, nil
}

// GenerateImage is not offered by the Messages API.
func (p *AnthropicProvider) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	return "", &Error{Kind: KindConfiguration, Op: "anthropic image", Message: "image generation is not supported by the anthropic provider"}
}

// TestConnection lists models and reports whether any came back.
func (p *AnthropicProvider) TestConnection(ctx context.Context) bool {
	if p.cfg.APIKey == "" {
		return false
	}
	var resp anthropicModelsResponse
	if err := doJSON(ctx, p.client, "anthropic models", http.MethodGet, p.baseURL+"/models", p.headers(), nil, &resp); err != nil {
		slog.Warn("API connection test failed", "provider", "anthropic", "error", err)
		return false
	}
	return len(resp.Data) > 0
}
