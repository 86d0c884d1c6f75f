package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestIsScrapeURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"scrape://blog.example.com/engineering", true},
		{"https://example.com/feed", false},
		{"scrape://", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsScrapeURL(tt.url); got != tt.want {
			t.Errorf("IsScrapeURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestScrapeURLToHTTPS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"scrape://blog.example.com/engineering", "https://blog.example.com/engineering"},
		{"scrape://example.com", "https://example.com"},
	}
	for _, tt := range tests {
		if got := ScrapeURLToHTTPS(tt.input); got != tt.want {
			t.Errorf("ScrapeURLToHTTPS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

const listingPage = `
<html><body>
	<header><h2>Site Name</h2></header>
	<nav><h3>Categories</h3></nav>
	<main>
		<article><h2><a href="/posts/one">First   Post</a></h2><time>Feb 10, 2026</time></article>
		<article><h2><a href="/posts/two">Second Post</a></h2></article>
		<article><h3>First Post</h3></article>
		<article><h3>Third <em>Post</em></h3></article>
	</main>
	<footer><h2>Contact</h2></footer>
</body></html>`

func TestParseListingHTML(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"First Post", "Second Post", "Third Post"}},
		{"limited", 2, []string{"First Post", "Second Post"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseListingHTML(listingPage, tt.limit)
			if err != nil {
				t.Fatalf("parseListingHTML error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("headlines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseListingHTML_NoHeadings(t *testing.T) {
	got, err := parseListingHTML("<p>nothing here</p>", 5)
	if err != nil {
		t.Fatalf("parseListingHTML error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("headlines = %q, want none", got)
	}
}

func TestScrapeHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/blog" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	f := NewFetcher()
	got, err := f.scrapeHeadlines(context.Background(), srv.URL+"/blog", 1)
	if err != nil {
		t.Fatalf("scrapeHeadlines error: %v", err)
	}
	if len(got) != 1 || got[0] != "First Post" {
		t.Errorf("headlines = %q", got)
	}

	if _, err := f.scrapeHeadlines(context.Background(), srv.URL+"/missing", 1); err == nil {
		t.Error("expected error for 404 page")
	}
}
