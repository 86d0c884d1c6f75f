package analyzer

import (
	"strings"
	"testing"
)

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		density float64
		want    float64
	}{
		{0, 0},
		{0.25, 8},
		{0.5, 25},
		{1.5, 25},
		{2.5, 25},
		{3.25, 20},
		{4, 15},
		{4.1, 0},
	}
	for _, tt := range tests {
		if got := keywordScore(tt.density); got != tt.want {
			t.Errorf("keywordScore(%v) = %v, want %v", tt.density, got, tt.want)
		}
	}
}

func TestSEOScore_ContentLengthRamp(t *testing.T) {
	a := New(Options{})
	content := "<div>" + strings.Repeat("word ", 150) + "</div>"
	s := a.seoScore(content, stripTags(content), "", "")
	if got := s.Factors["content_length"]; got != 8 {
		t.Errorf("content_length = %d, want 8", got)
	}

	long := strings.Repeat("word ", 900)
	s = a.seoScore(long, long, "", "")
	if got := s.Factors["content_length"]; got != 15 {
		t.Errorf("content_length = %d, want 15 (capped)", got)
	}
}

func TestSEOScore_Links(t *testing.T) {
	a := New(Options{SiteURL: "https://example.com"})
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"none", `<p>x</p>`, 0},
		{"relative", `<a href="/about">a</a>`, 5},
		{"same host", `<a href="https://EXAMPLE.com/post">a</a>`, 5},
		{"external", `<a href="https://other.org">a</a>`, 5},
		{"both", `<a href="/about">a</a> <a href='http://other.org/x'>b</a>`, 10},
		{"ignored", `<a href="#top">a</a><a href="mailto:x@y.z">m</a><a href="javascript:void(0)">j</a>`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.linkScore(tt.content); got != tt.want {
				t.Errorf("linkScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSEOScore_LinksWithoutSiteURL(t *testing.T) {
	a := New(Options{})
	if got := a.linkScore(`<a href="https://example.com">x</a>`); got != 5 {
		t.Errorf("absolute link without site url = %d, want 5 (external)", got)
	}
}

func TestSEOScore_Images(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{`<p>none</p>`, 0},
		{`<img src="a.png">`, 5},
		{`<img src="a.png" alt="A chart">`, 10},
	}
	for _, tt := range tests {
		if got := imageScore(tt.content); got != tt.want {
			t.Errorf("imageScore(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestSEOScore_CappedAt100(t *testing.T) {
	a := New(Options{SiteURL: "https://example.com"})
	body := strings.Repeat("Content marketing helps brands grow steadily. ", 60)
	content := `<h2>Guide</h2><p>` + body + `</p><ul><li>x</li></ul>` +
		`<a href="/a">in</a><a href="https://other.org">out</a><img src="x.png" alt="x">`
	text := stripTags(content)
	s := a.seoScore(content, text, "Content Marketing Guide for Growing Brands", "marketing")
	if s.Score > 100 {
		t.Errorf("score = %d, exceeds 100", s.Score)
	}
	if s.Factors["links"] != 10 || s.Factors["images"] != 10 || s.Factors["content_structure"] != 20 {
		t.Errorf("factors = %v", s.Factors)
	}
}

func TestReadabilityLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "Very Easy"},
		{85, "Easy"},
		{75, "Fairly Easy"},
		{65, "Standard"},
		{55, "Fairly Difficult"},
		{35, "Difficult"},
		{10, "Very Difficult"},
	}
	for _, tt := range tests {
		if got := readabilityLevel(tt.score); got != tt.want {
			t.Errorf("readabilityLevel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
