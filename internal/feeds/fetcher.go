// Package feeds reads recent headlines from RSS/Atom feeds and extracts the
// readable body of published articles.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	httpTimeout    = 30 * time.Second
	rateLimitDelay = 1 * time.Second
	maxWords       = 5000
)

// Fetcher retrieves feeds and pages with per-domain politeness delays. It is
// safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
}

// NewFetcher creates a Fetcher with a 30-second timeout and the Autoscribe
// user agent.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: httpTimeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		rateLimiter: make(map[string]time.Time),
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/html;q=0.8,*/*;q=0.5")
	return t.base.RoundTrip(req)
}

// Headlines returns up to limit item titles from the feed at feedURL,
// newest first. A scrape:// URL is read as an HTML listing page instead.
func (f *Fetcher) Headlines(ctx context.Context, feedURL string, limit int) ([]string, error) {
	if IsScrapeURL(feedURL) {
		pageURL := ScrapeURLToHTTPS(feedURL)
		if err := f.waitForRateLimit(ctx, extractDomain(pageURL)); err != nil {
			return nil, err
		}
		return f.scrapeHeadlines(ctx, pageURL, limit)
	}

	if err := f.waitForRateLimit(ctx, extractDomain(feedURL)); err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", feedURL, err)
	}
	return headlinesFromFeed(feed, limit), nil
}

// ExtractArticle fetches the page at articleURL and returns its readable
// content. The plain text is truncated to 5000 words.
func (f *Fetcher) ExtractArticle(ctx context.Context, articleURL string) (*Article, error) {
	if err := f.waitForRateLimit(ctx, extractDomain(articleURL)); err != nil {
		return nil, err
	}

	article, err := extractArticle(articleURL, httpTimeout)
	if err != nil {
		return nil, fmt.Errorf("extracting article from %q: %w", articleURL, err)
	}
	article.TextContent = truncateWords(article.TextContent, maxWords)
	return article, nil
}

// waitForRateLimit enforces a minimum delay of 1 second between requests to
// the same domain. It blocks until the delay has elapsed or ctx is done.
func (f *Fetcher) waitForRateLimit(ctx context.Context, domain string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	var wait time.Duration
	if lastReq, ok := f.rateLimiter[domain]; ok {
		if elapsed := time.Since(lastReq); elapsed < rateLimitDelay {
			wait = rateLimitDelay - elapsed
		}
	}
	f.rateLimiter[domain] = time.Now().Add(wait)
	f.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
