// Package generator runs one article generation: it builds the prompt, calls
// the AI provider, parses and scores the response, persists the article and
// appends a generation log entry for the attempt.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/analyzer"
	"github.com/hoanghai1803/autoscribe/internal/config"
	"github.com/hoanghai1803/autoscribe/internal/models"
)

// Store persists generated articles and the generation log.
type Store interface {
	InsertArticle(ctx context.Context, a *models.Article) error
	InsertLog(ctx context.Context, l *models.GenerationLog) error
}

// SEOMetadataWriter attaches search metadata to a stored article. A Store
// that also implements it receives metadata when seo_metadata is enabled.
type SEOMetadataWriter interface {
	WriteSEOMetadata(ctx context.Context, articleID int64, meta models.SEOMeta) error
}

// Request describes one article to generate. Empty Tone, Length and
// Language fall back to the configured defaults.
type Request struct {
	Topic       string   `json:"topic"`
	Keyword     string   `json:"keyword"`
	Tone        string   `json:"tone"`
	Length      string   `json:"length"`
	Language    string   `json:"language"`
	AutoPublish bool     `json:"auto_publish"`
	ScheduleID  *int64   `json:"schedule_id,omitempty"`
	Headlines   []string `json:"headlines,omitempty"`
}

// Result is a successfully generated and stored article.
type Result struct {
	ArticleID       int64           `json:"post_id"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Excerpt         string          `json:"excerpt"`
	MetaDescription string          `json:"meta_description"`
	TokensUsed      int             `json:"tokens_used"`
	Model           string          `json:"model"`
	Cost            float64         `json:"cost"`
	ImageURL        string          `json:"featured_image_url,omitempty"`
	Analysis        analyzer.Result `json:"analysis"`
}

// ErrTopicRequired is returned when a request has a blank topic. No log
// entry is written for it.
var ErrTopicRequired = errors.New("topic is required")

// Generator produces articles. It is safe for concurrent use when its
// provider and store are.
type Generator struct {
	provider ai.Provider
	store    Store
	seo      SEOMetadataWriter
	analyzer *analyzer.Analyzer
	cfg      config.GenerationConfig
	now      func() time.Time
}

// New creates a Generator. If store implements SEOMetadataWriter it is used
// for search metadata.
func New(provider ai.Provider, store Store, a *analyzer.Analyzer, cfg config.GenerationConfig) *Generator {
	g := &Generator{
		provider: provider,
		store:    store,
		analyzer: a,
		cfg:      cfg,
		now:      time.Now,
	}
	if w, ok := store.(SEOMetadataWriter); ok {
		g.seo = w
	}
	if g.analyzer == nil {
		g.analyzer = analyzer.New(analyzer.Options{SiteURL: cfg.SiteURL})
	}
	return g
}

// WithClock replaces the time source used for stored timestamps.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate writes one article for req. Every call appends exactly one
// generation log entry: completed with the article ID on success, failed
// with the error text otherwise. Provider errors are returned wrapped so
// callers can classify them with errors.Is.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return nil, ErrTopicRequired
	}
	req = g.withDefaults(req)

	prompt := ai.PostPrompt{
		Topic:        req.Topic,
		FocusKeyword: req.Keyword,
		Tone:         req.Tone,
		Length:       req.Length,
		Language:     req.Language,
		Headlines:    req.Headlines,
	}.Prompt()

	entry := &models.GenerationLog{
		ScheduleID: req.ScheduleID,
		Prompt:     prompt,
		Model:      g.provider.Model(),
	}

	completion, err := g.provider.Generate(ctx, prompt, ai.SystemMessage(req.Tone, req.Language))
	if err != nil {
		g.logFailure(ctx, entry, err)
		return nil, fmt.Errorf("generating %q: %w", req.Topic, err)
	}

	entry.Response = completion.Content
	entry.Model = completion.Model
	entry.TokensUsed = completion.TokensUsed
	entry.Cost = ai.CalculateCost(completion.TokensUsed, completion.Model)

	parsed := ai.ParseContent(completion.Content)
	analysis := g.analyzer.Analyze(parsed.Content, parsed.Title, req.Keyword)

	var imageURL string
	if g.cfg.IncludeImages {
		imageURL, err = g.provider.GenerateImage(ctx, ai.ImagePrompt(req.Topic), g.cfg.ImageSize)
		if err != nil {
			slog.Warn("featured image generation failed", "topic", req.Topic, "error", err)
			imageURL = ""
		}
	}

	article := &models.Article{
		ScheduleID:       req.ScheduleID,
		Topic:            req.Topic,
		Title:            parsed.Title,
		Content:          parsed.Content,
		Excerpt:          parsed.Excerpt,
		MetaDescription:  parsed.MetaDescription,
		FocusKeyword:     req.Keyword,
		Status:           g.postStatus(req.AutoPublish),
		Model:            completion.Model,
		TokensUsed:       completion.TokensUsed,
		Cost:             entry.Cost,
		OverallScore:     analysis.OverallScore,
		FeaturedImageURL: imageURL,
		CreatedAt:        g.now().UTC(),
	}
	if err := g.store.InsertArticle(ctx, article); err != nil {
		g.logFailure(ctx, entry, err)
		return nil, fmt.Errorf("storing article: %w", err)
	}

	if g.cfg.SEOMetadata && g.seo != nil {
		meta := models.SEOMeta{
			Title:        parsed.Title,
			Description:  parsed.MetaDescription,
			FocusKeyword: req.Keyword,
		}
		if err := g.seo.WriteSEOMetadata(ctx, article.ID, meta); err != nil {
			slog.Warn("writing seo metadata failed", "article_id", article.ID, "error", err)
		}
	}

	entry.PostID = &article.ID
	entry.Status = models.LogCompleted
	entry.CreatedAt = g.now().UTC()
	if err := g.store.InsertLog(ctx, entry); err != nil {
		slog.Error("appending generation log", "article_id", article.ID, "error", err)
	}

	slog.Info("article generated",
		"article_id", article.ID,
		"topic", req.Topic,
		"model", completion.Model,
		"tokens", completion.TokensUsed,
		"score", analysis.OverallScore,
	)

	return &Result{
		ArticleID:       article.ID,
		Title:           parsed.Title,
		Content:         parsed.Content,
		Excerpt:         parsed.Excerpt,
		MetaDescription: parsed.MetaDescription,
		TokensUsed:      completion.TokensUsed,
		Model:           completion.Model,
		Cost:            entry.Cost,
		ImageURL:        imageURL,
		Analysis:        analysis,
	}, nil
}

func (g *Generator) logFailure(ctx context.Context, entry *models.GenerationLog, cause error) {
	entry.Status = models.LogFailed
	entry.Error = cause.Error()
	entry.CreatedAt = g.now().UTC()
	// The log must land even when ctx was the reason the call failed.
	if err := g.store.InsertLog(context.WithoutCancel(ctx), entry); err != nil {
		slog.Error("appending generation log", "error", err)
	}
}

func (g *Generator) withDefaults(req Request) Request {
	if req.Tone == "" {
		req.Tone = g.cfg.DefaultTone
	}
	if req.Length == "" {
		req.Length = g.cfg.DefaultLength
	}
	if req.Language == "" {
		req.Language = g.cfg.Language
	}
	return req
}

func (g *Generator) postStatus(autoPublish bool) string {
	if autoPublish {
		return models.ArticlePublish
	}
	if g.cfg.DefaultPostStatus != "" {
		return g.cfg.DefaultPostStatus
	}
	return models.ArticleDraft
}
