package ai

import (
	"strings"
	"testing"
)

func TestParseContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ParsedContent
	}{
		{
			name: "all markers",
			raw:  "[TITLE]A[/TITLE][META]M[/META][EXCERPT]E[/EXCERPT][CONTENT]<p>C</p>[/CONTENT]",
			want: ParsedContent{Title: "A", MetaDescription: "M", Excerpt: "E", Content: "<p>C</p>"},
		},
		{
			name: "markers span lines and are trimmed",
			raw:  "[TITLE]\n  Go Tips \n[/TITLE]\n[CONTENT]\n<h2>One</h2>\n<p>Two</p>\n[/CONTENT]",
			want: ParsedContent{Title: "Go Tips", Excerpt: "One Two", Content: "<h2>One</h2>\n<p>Two</p>"},
		},
		{
			name: "no markers",
			raw:  "Hello world\nSecond line",
			want: ParsedContent{Title: "Hello world", Excerpt: "Hello world Second line", Content: "Hello world\nSecond line"},
		},
		{
			name: "title from first non-empty line",
			raw:  "\n\n  First real line  \nrest",
			want: ParsedContent{Title: "First real line", Excerpt: "First real line rest", Content: "\n\n  First real line  \nrest"},
		},
		{
			name: "empty response",
			raw:  "",
			want: ParsedContent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContent(tt.raw)
			if got != tt.want {
				t.Errorf("ParseContent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseContent_ExcerptTruncatedToThirtyWords(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "word"
	}
	raw := "[TITLE]T[/TITLE][CONTENT]<p>" + strings.Join(words, " ") + "</p>[/CONTENT]"

	got := ParseContent(raw)
	if !strings.HasSuffix(got.Excerpt, "...") {
		t.Errorf("Excerpt = %q, want trailing ellipsis", got.Excerpt)
	}
	if n := len(strings.Fields(strings.TrimSuffix(got.Excerpt, "..."))); n != 30 {
		t.Errorf("excerpt has %d words, want 30", n)
	}
}
