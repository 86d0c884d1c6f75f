// Package optimizer runs the one-shot AI editing tools on an existing
// draft: alt text, rewrites, suggestions, gap and competitor analysis, and
// translation. Every call goes through the configured (rate limited)
// provider.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/ai"
)

// MaxAltTextImages caps how many images one AltText call describes.
const MaxAltTextImages = 5

var (
	// ErrInvalidInput is returned when a required field is blank.
	ErrInvalidInput = errors.New("optimizer: invalid input")

	// ErrNoImagesNeedAlt is returned when AltText finds nothing to describe.
	ErrNoImagesNeedAlt = errors.New("optimizer: no images need alt text")
)

var (
	imgSrcRe = regexp.MustCompile(`(?i)<img[^>]*src=["']([^"']*)["'][^>]*>`)
	hasAltRe = regexp.MustCompile(`(?i)\salt\s*=`)
	imgOpen  = regexp.MustCompile(`(?i)^<img`)
)

// Optimizer wraps a provider with the content tools.
type Optimizer struct {
	provider ai.Provider
	now      func() time.Time
}

// New returns an Optimizer that calls p.
func New(p ai.Provider) *Optimizer {
	return &Optimizer{provider: p, now: time.Now}
}

// WithClock replaces the clock used for year-sensitive prompts.
func (o *Optimizer) WithClock(now func() time.Time) *Optimizer {
	o.now = now
	return o
}

// Input is the draft the tools operate on.
type Input struct {
	Content  string `json:"content"`
	Title    string `json:"title"`
	Keyword  string `json:"keyword"`
	Language string `json:"language,omitempty"`
}

// AltTextResult is the content with alt attributes added.
type AltTextResult struct {
	Content    string `json:"content"`
	Generated  int    `json:"generated"`
	TokensUsed int    `json:"tokens_used"`
}

// TextResult is the output of the free-form tools.
type TextResult struct {
	Content    string `json:"content"`
	TokensUsed int    `json:"tokens_used"`
}

// SuggestionsResult holds suggestions grouped by category.
type SuggestionsResult struct {
	Groups     []ai.SuggestionGroup `json:"suggestions"`
	Raw        string               `json:"raw"`
	TokensUsed int                  `json:"tokens_used"`
}

// TranslateResult is a translated draft.
type TranslateResult struct {
	Title      string `json:"title,omitempty"`
	Content    string `json:"content"`
	Language   string `json:"language"`
	TokensUsed int    `json:"tokens_used"`
}

// AltText generates alt attributes for up to MaxAltTextImages images that
// have none. A failure for one image is logged and that image skipped,
// except rate limit, configuration and context errors, which abort.
func (o *Optimizer) AltText(ctx context.Context, in Input) (*AltTextResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	res := &AltTextResult{Content: in.Content}
	seen := make(map[string]bool)
	for _, m := range imgSrcRe.FindAllStringSubmatch(in.Content, -1) {
		tag, src := m[0], m[1]
		if hasAltRe.MatchString(tag) || seen[tag] {
			continue
		}
		seen[tag] = true
		if len(seen) > MaxAltTextImages {
			break
		}

		c, err := o.provider.Generate(ctx, ai.AltTextPrompt(in.Title, in.Keyword, src), "")
		if err != nil {
			if fatal(err) {
				return nil, err
			}
			slog.Warn("alt text generation failed, skipping image", "src", src, "error", err)
			continue
		}
		res.TokensUsed += c.TokensUsed

		alt := cleanAltText(c.Content)
		if alt == "" {
			continue
		}
		withAlt := imgOpen.ReplaceAllLiteralString(tag, `<img alt="`+html.EscapeString(alt)+`"`)
		res.Content = strings.ReplaceAll(res.Content, tag, withAlt)
		res.Generated++
	}

	if res.Generated == 0 {
		return nil, ErrNoImagesNeedAlt
	}
	return res, nil
}

func fatal(err error) bool {
	return errors.Is(err, ai.ErrRateLimit) ||
		errors.Is(err, ai.ErrConfiguration) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func cleanAltText(s string) string {
	s = strings.NewReplacer(`"`, "", "'", "", "\n", " ", "\r", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > ai.MaxAltTextLength {
		s = strings.TrimSpace(string(r[:ai.MaxAltTextLength]))
	}
	return s
}

// Optimize rewrites the draft for search and readability.
func (o *Optimizer) Optimize(ctx context.Context, in Input) (*TextResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	return o.text(ctx, ai.OptimizeContentPrompt(in.Content, in.Title, in.Keyword))
}

// Suggestions asks for categorized improvement ideas.
func (o *Optimizer) Suggestions(ctx context.Context, in Input) (*SuggestionsResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	c, err := o.provider.Generate(ctx, ai.SuggestionsPrompt(in.Content, in.Title, in.Keyword), "")
	if err != nil {
		return nil, err
	}
	return &SuggestionsResult{
		Groups:     ai.ParseSuggestions(c.Content),
		Raw:        c.Content,
		TokensUsed: c.TokensUsed,
	}, nil
}

// ContentGaps lists what the draft is missing for its keyword.
func (o *Optimizer) ContentGaps(ctx context.Context, in Input) (*TextResult, error) {
	if strings.TrimSpace(in.Content) == "" || strings.TrimSpace(in.Keyword) == "" {
		return nil, fmt.Errorf("%w: content and keyword are required", ErrInvalidInput)
	}
	return o.text(ctx, ai.ContentGapsPrompt(in.Content, in.Keyword, o.now().Year()))
}

// Competitors describes what ranking content for keyword looks like.
func (o *Optimizer) Competitors(ctx context.Context, keyword string) (*TextResult, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}
	return o.text(ctx, ai.CompetitorPrompt(keyword))
}

// Translate translates the content and, when present, the title.
func (o *Optimizer) Translate(ctx context.Context, in Input) (*TranslateResult, error) {
	if strings.TrimSpace(in.Content) == "" || strings.TrimSpace(in.Language) == "" {
		return nil, fmt.Errorf("%w: content and language are required", ErrInvalidInput)
	}

	res := &TranslateResult{Language: in.Language}
	if strings.TrimSpace(in.Title) != "" {
		c, err := o.provider.Generate(ctx, ai.TranslateTitlePrompt(in.Title, in.Language), "")
		if err != nil {
			return nil, err
		}
		res.Title = c.Content
		res.TokensUsed += c.TokensUsed
	}

	c, err := o.provider.Generate(ctx, ai.TranslateContentPrompt(in.Content, in.Language), "")
	if err != nil {
		return nil, err
	}
	res.Content = c.Content
	res.TokensUsed += c.TokensUsed
	return res, nil
}

func (o *Optimizer) text(ctx context.Context, prompt string) (*TextResult, error) {
	c, err := o.provider.Generate(ctx, prompt, "")
	if err != nil {
		return nil, err
	}
	return &TextResult{Content: c.Content, TokensUsed: c.TokensUsed}, nil
}
