package feeds

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const userAgent = "Mozilla/5.0 (compatible; Autoscribe/1.0; +https://github.com/hoanghai1803/autoscribe)"

// browserHeaders sets browser-like request headers so sites that check Accept
// or User-Agent don't reject the request with 406.
func browserHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", userAgent)
}

// Article is the readable part of a web page.
type Article struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	SiteName    string     `json:"site_name,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"-"`
	TextContent string     `json:"-"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// extractArticle fetches the web page at the given URL and returns its main
// content, as cleaned HTML and as plain text, using go-readability.
func extractArticle(url string, timeout time.Duration) (*Article, error) {
	article, err := readability.FromURL(url, timeout, browserHeaders)
	if err != nil {
		return nil, fmt.Errorf("readability extraction: %w", err)
	}

	return &Article{
		URL:         url,
		Title:       article.Title,
		SiteName:    article.SiteName,
		Excerpt:     article.Excerpt,
		Content:     article.Content,
		TextContent: article.TextContent,
		PublishedAt: article.PublishedTime,
	}, nil
}

// truncateWords returns the first maxWords whitespace-delimited words from s.
// If s contains fewer than maxWords words, it is returned unchanged.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ")
}
