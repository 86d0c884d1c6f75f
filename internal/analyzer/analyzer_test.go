package analyzer

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func fixedYear(year int) func() time.Time {
	return func() time.Time { return time.Date(year, 6, 1, 12, 0, 0, 0, time.UTC) }
}

func TestAnalyze_ShortArticle(t *testing.T) {
	a := New(Options{Now: fixedYear(2025)})
	content := `<h2>What is SEO?</h2><p>SEO is the practice of optimizing content.</p>`

	r := a.Analyze(content, "SEO Guide for 2025", "SEO")

	if got := r.SEO.Factors["title"]; got != 10 {
		t.Errorf("title factor = %d, want 10", got)
	}
	if r.Keyword.Density <= 0 {
		t.Errorf("keyword density = %v, want > 0", r.Keyword.Density)
	}
	if got := r.SEO.Factors["content_structure"]; got < 10 {
		t.Errorf("content_structure factor = %d, want >= 10", got)
	}
	if r.Readability.Words != 10 {
		t.Errorf("words = %d, want 10", r.Readability.Words)
	}
	if r.Readability.Sentences != 2 {
		t.Errorf("sentences = %d, want 2", r.Readability.Sentences)
	}
	if r.Readability.Score != 74.9 {
		t.Errorf("readability score = %v, want 74.9", r.Readability.Score)
	}
	if r.Readability.Level != "Fairly Easy" {
		t.Errorf("level = %q, want Fairly Easy", r.Readability.Level)
	}
	if r.Keyword.Count != 2 {
		t.Errorf("keyword count = %d, want 2", r.Keyword.Count)
	}
	if !r.Meta.KeywordInTitle || r.Meta.TitleOptimal {
		t.Errorf("meta = %+v, want keyword in title and title not optimal", r.Meta)
	}
	if r.ReadingTime != 1 {
		t.Errorf("reading time = %d, want 1", r.ReadingTime)
	}
	if r.OverallScore != OverallScore(r) || r.BasicOverallScore != BasicOverallScore(r) {
		t.Error("stored overall scores do not match the named formulas")
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := New(Options{Now: fixedYear(2025)})
	r := a.Analyze("", "", "")

	if r.Readability.Level != "Unknown" || r.Readability.Score != 0 {
		t.Errorf("readability = %+v, want Unknown/0", r.Readability)
	}
	if r.SEO.Score != 0 {
		t.Errorf("seo score = %d, want 0", r.SEO.Score)
	}
	if _, ok := r.SEO.Factors["title"]; ok {
		t.Error("title factor present for empty title")
	}
	if _, ok := r.SEO.Factors["keyword_usage"]; ok {
		t.Error("keyword_usage factor present for empty keyword")
	}
	// only the fluff check (15) and the performance base (50) score
	if r.AIO.OverallScore != 8 {
		t.Errorf("aio overall = %d, want 8", r.AIO.OverallScore)
	}
	if r.OverallScore != 3 {
		t.Errorf("overall = %d, want 3", r.OverallScore)
	}
}

func TestAnalyze_MalformedHTML(t *testing.T) {
	a := New(Options{})
	inputs := []string{
		"<p>unclosed <b>tags <h2>and stray </i> closers",
		"<<<>>>",
		"<a href=>x</a><img src",
		"plain text without markup. Another sentence!",
	}
	for _, in := range inputs {
		r := a.Analyze(in, "t", "k")
		if r.SEO.Score < 0 || r.SEO.Score > 100 {
			t.Errorf("Analyze(%q) seo score = %d out of range", in, r.SEO.Score)
		}
	}
}

func TestAnalyze_ResultJSONKeys(t *testing.T) {
	r := New(Options{}).Analyze("<p>Hello world.</p>", "", "")
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"readability"`, `"seo_score"`, `"aio_compliance"`, `"overall_aio_score"`, `"overall_score"`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("json missing %s", key)
		}
	}
}

func TestOverallScoreVariants(t *testing.T) {
	r := Result{
		Readability: Readability{Score: 80},
		SEO:         SEOScore{Score: 60},
		AIO:         AIO{OverallScore: 50},
	}
	if got := OverallScore(r); got != 61 {
		t.Errorf("OverallScore = %d, want 61", got)
	}
	if got := BasicOverallScore(r); got != 66 {
		t.Errorf("BasicOverallScore = %d, want 66", got)
	}
}

func TestStructureCounts(t *testing.T) {
	content := `<h1>A</h1><h2>B</h2><h2 class="x">C</h2><p>one</p><p class="y">two</p>` +
		`<ul><li>x</li></ul><ol><li>y</li></ol><img src="a.png"><a href="/x">x</a><pre>code</pre>`
	s := structure(content)

	if s.Headings["h1"] != 1 || s.Headings["h2"] != 2 || s.Headings["h3"] != 0 {
		t.Errorf("headings = %v", s.Headings)
	}
	if s.Paragraphs != 2 {
		t.Errorf("paragraphs = %d, want 2 (pre must not count)", s.Paragraphs)
	}
	if s.Lists != 2 || s.Images != 1 || s.Links != 1 {
		t.Errorf("structure = %+v", s)
	}
}
