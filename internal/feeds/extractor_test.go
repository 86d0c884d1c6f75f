package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWords int
		want     string
	}{
		{"under limit returns original", "hello world", 5, "hello world"},
		{"exactly at limit returns original", "one two three", 3, "one two three"},
		{"over limit is truncated", "one two three four five six", 3, "one two three"},
		{"empty string", "", 5, ""},
		{"collapses whitespace when truncating", "  one\ttwo\nthree  ", 2, "one two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateWords(tt.input, tt.maxWords)
			if got != tt.want {
				t.Errorf("truncateWords(%q, %d) = %q, want %q", tt.input, tt.maxWords, got, tt.want)
			}
		})
	}
}

func TestBrowserHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	browserHeaders(req)
	if req.Header.Get("User-Agent") != userAgent {
		t.Errorf("User-Agent = %q", req.Header.Get("User-Agent"))
	}
	if !strings.Contains(req.Header.Get("Accept"), "text/html") {
		t.Errorf("Accept = %q", req.Header.Get("Accept"))
	}
}

const samplePage = `<!DOCTYPE html>
<html><head><title>Scheduling Articles With Cron</title></head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Scheduling Articles With Cron</h1>
<p>Publishing on a predictable cadence keeps readers coming back. A scheduler that wakes up
every few minutes, looks for due work, and hands each item to a writer is simple to build and
easy to reason about when something goes wrong.</p>
<p>Each schedule remembers when it last ran and when it should run next. After a successful
run the next run moves forward by one period, and after a failure a counter goes up until the
schedule is paused for a human to look at.</p>
<p>Keeping the state in a small database means the process can restart at any time without
losing track of which articles were already written.</p>
</article>
</body></html>`

func TestExtractArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	article, err := NewFetcher().ExtractArticle(context.Background(), srv.URL+"/post")
	if err != nil {
		t.Fatalf("ExtractArticle error: %v", err)
	}
	if article.Title != "Scheduling Articles With Cron" {
		t.Errorf("Title = %q", article.Title)
	}
	if !strings.Contains(article.TextContent, "predictable cadence") {
		t.Errorf("TextContent missing body text: %q", article.TextContent)
	}
	if article.URL != srv.URL+"/post" {
		t.Errorf("URL = %q", article.URL)
	}
}

func TestExtractArticle_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFetcher().ExtractArticle(ctx, "http://example.invalid/a"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
