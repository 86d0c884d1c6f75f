package ai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Compile-time interface check.
var _ Provider = (*OpenAIProvider)(nil)

const openaiBaseURL = "https://api.openai.com/v1"

// OpenAIProvider implements Provider using the OpenAI REST API.
type OpenAIProvider struct {
	cfg     ProviderConfig
	baseURL string
	client  *http.Client
	retry   retrier
}

// NewOpenAIProvider creates an OpenAIProvider from cfg.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = openaiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	return &OpenAIProvider{
		cfg:     cfg,
		baseURL: base,
		client:  cfg.httpClient(),
		retry:   newRetrier(cfg),
	}
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string { return p.cfg.Model }

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatRequest struct {
	Model            string          `json:"model"`
	Messages         []openaiMessage `json:"messages"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	TopP             float64         `json:"top_p"`
	FrequencyPenalty float64         `json:"frequency_penalty"`
	PresencePenalty  float64         `json:"presence_penalty"`
}

type openaiChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type openaiImageRequest struct {
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type openaiImageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

type openaiModelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p *OpenAIProvider) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
		"Content-Type":  "application/json",
	}
}

// Generate calls chat/completions with the system message (when non-empty)
// followed by the user prompt.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt, systemMessage string) (*Completion, error) {
	const op = "openai generate"
	if p.cfg.APIKey == "" {
		return nil, missingKey(op)
	}

	var messages []openaiMessage
	if systemMessage != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: systemMessage})
	}
	messages = append(messages, openaiMessage{Role: "user", Content: prompt})

	reqBody := openaiChatRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		MaxTokens:   p.cfg.maxTokens(),
		Temperature: p.cfg.Temperature,
		TopP:        1,
	}

	slog.Debug("calling OpenAI API", "model", p.cfg.Model)

	var resp openaiChatResponse
	err := p.retry.do(ctx, func() error {
		resp = openaiChatResponse{}
		return doJSON(ctx, p.client, op, http.MethodPost, p.baseURL+"/chat/completions", p.headers(), reqBody, &resp)
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, &Error{Kind: KindProtocol, Op: op, StatusCode: http.StatusOK, Message: "invalid response from API: no message content"}
	}

	model := resp.Model
	if model == "" {
		model = p.cfg.Model
	}
	return &Completion{
		Content:    strings.TrimSpace(*resp.Choices[0].Message.Content),
		TokensUsed: resp.Usage.TotalTokens,
		Model:      model,
	}, nil
}

// GenerateImage calls images/generations and returns the first image URL.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	const op = "openai image"
	if p.cfg.APIKey == "" {
		return "", missingKey(op)
	}
	if size == "" {
		size = "1024x1024"
	}

	reqBody := openaiImageRequest{Prompt: prompt, N: 1, Size: size, ResponseFormat: "url"}

	var resp openaiImageResponse
	err := p.retry.do(ctx, func() error {
		resp = openaiImageResponse{}
		return doJSON(ctx, p.client, op, http.MethodPost, p.baseURL+"/images/generations", p.headers(), reqBody, &resp)
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", &Error{Kind: KindProtocol, Op: op, StatusCode: http.StatusOK, Message: "failed to generate image: no url in response"}
	}
	return resp.Data[0].URL, nil
}

// TestConnection lists models; it succeeds only when at least one model is
// returned.
func (p *OpenAIProvider) TestConnection(ctx context.Context) bool {
	if p.cfg.APIKey == "" {
		return false
	}
	var resp openaiModelsResponse
	if err := doJSON(ctx, p.client, "openai models", http.MethodGet, p.baseURL+"/models", p.headers(), nil, &resp); err != nil {
		slog.Warn("API connection test failed", "provider", "openai", "error", err)
		return false
	}
	return len(resp.Data) > 0
}
