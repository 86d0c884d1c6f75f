package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hoanghai1803/autoscribe/internal/analyzer"
	"github.com/hoanghai1803/autoscribe/internal/feeds"
)

// ArticleExtractor fetches the readable part of a published page.
type ArticleExtractor interface {
	ExtractArticle(ctx context.Context, articleURL string) (*feeds.Article, error)
}

// AnalyzeContent handles POST /api/analyze. It scores HTML content for
// readability, SEO and AI-overview compliance without storing anything.
func AnalyzeContent(a *analyzer.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Content string `json:"content"`
			Title   string `json:"title"`
			Keyword string `json:"keyword"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if strings.TrimSpace(body.Content) == "" {
			writeError(w, http.StatusBadRequest, "Content is required")
			return
		}

		writeJSON(w, http.StatusOK, a.Analyze(body.Content, body.Title, body.Keyword))
	}
}

// AnalyzeURL handles POST /api/analyze/url. It extracts the article at the
// given URL and scores it like AnalyzeContent.
func AnalyzeURL(a *analyzer.Analyzer, extractor ArticleExtractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URL     string `json:"url"`
			Keyword string `json:"keyword"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		u, err := url.Parse(strings.TrimSpace(body.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			writeError(w, http.StatusBadRequest, "A valid http(s) URL is required")
			return
		}

		article, err := extractor.ExtractArticle(r.Context(), u.String())
		if err != nil {
			slog.Warn("article extraction failed", "url", u.String(), "error", err)
			writeError(w, http.StatusBadGateway, "Failed to extract article")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"article":  article,
			"analysis": a.Analyze(article.Content, article.Title, body.Keyword),
		})
	}
}
