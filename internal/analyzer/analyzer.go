// Package analyzer scores HTML article content for readability, search
// optimization and answer-engine friendliness. Every function here is pure:
// no I/O, no panics on malformed markup, and absent inputs degrade to zero
// scores.
package analyzer

import (
	"math"
	"net/url"
	"strings"
	"time"
)

// Options carries the environment the scores depend on.
type Options struct {
	// SiteURL identifies same-origin links. Relative links are always
	// same-origin.
	SiteURL string
	// Now supplies the current year for the freshness check.
	Now func() time.Time
}

// Analyzer scores content. Create one with New.
type Analyzer struct {
	siteHost string
	now      func() time.Time
}

// New creates an Analyzer from opts.
func New(opts Options) *Analyzer {
	a := &Analyzer{now: opts.Now}
	if a.now == nil {
		a.now = time.Now
	}
	if opts.SiteURL != "" {
		if u, err := url.Parse(opts.SiteURL); err == nil {
			a.siteHost = strings.ToLower(u.Hostname())
		}
	}
	return a
}

// Result is the full analysis of one piece of content.
type Result struct {
	Readability       Readability `json:"readability"`
	SEO               SEOScore    `json:"seo_score"`
	Structure         Structure   `json:"content_structure"`
	Keyword           KeywordInfo `json:"keyword_analysis"`
	Meta              MetaInfo    `json:"meta_analysis"`
	AIO               AIO         `json:"aio_compliance"`
	ReadingTime       int         `json:"reading_time_minutes"`
	OverallScore      int         `json:"overall_score"`
	BasicOverallScore int         `json:"basic_overall_score"`
}

// Structure counts the main HTML building blocks.
type Structure struct {
	Headings   map[string]int `json:"headings"`
	Paragraphs int            `json:"paragraphs"`
	Lists      int            `json:"lists"`
	Images     int            `json:"images"`
	Links      int            `json:"links"`
}

// KeywordInfo describes how the focus keyword is used.
type KeywordInfo struct {
	Count     int     `json:"count"`
	Density   float64 `json:"density"`
	Positions []int   `json:"positions"`
	Optimal   bool    `json:"optimal"`
}

// MetaInfo describes the title.
type MetaInfo struct {
	TitleLength    int  `json:"title_length"`
	TitleOptimal   bool `json:"title_optimal"`
	KeywordInTitle bool `json:"keyword_in_title"`
}

// Analyze runs every check over content (HTML), title and keyword.
func (a *Analyzer) Analyze(content, title, keyword string) Result {
	keyword = strings.TrimSpace(keyword)
	text := stripTags(content)
	wc := wordCount(text)

	r := Result{
		Readability: readability(text),
		SEO:         a.seoScore(content, text, title, keyword),
		Structure:   structure(content),
		Keyword:     keywordInfo(text, keyword),
		Meta:        metaInfo(title, keyword),
		AIO:         a.aio(content, text, title, keyword),
		ReadingTime: int(math.Ceil(float64(wc) / 200)),
	}
	r.OverallScore = OverallScore(r)
	r.BasicOverallScore = BasicOverallScore(r)
	return r
}

// OverallScore weighs readability, SEO and AIO compliance 25/35/40.
func OverallScore(r Result) int {
	return int(math.Round(r.Readability.Score*0.25 + float64(r.SEO.Score)*0.35 + float64(r.AIO.OverallScore)*0.40))
}

// BasicOverallScore weighs readability and SEO 30/70 for callers without
// AIO data.
func BasicOverallScore(r Result) int {
	return int(math.Round(r.Readability.Score*0.3 + float64(r.SEO.Score)*0.7))
}

func structure(content string) Structure {
	s := Structure{Headings: make(map[string]int, 6)}
	for i, re := range headingLevelRes {
		s.Headings["h"+string(rune('1'+i))] = len(re.FindAllStringIndex(content, -1))
	}
	s.Paragraphs = len(paragraphTagRe.FindAllStringIndex(content, -1))
	s.Lists = len(listTagRe.FindAllStringIndex(content, -1))
	s.Images = len(imgTagRe.FindAllStringIndex(content, -1))
	s.Links = len(anchorTagRe.FindAllStringIndex(content, -1))
	return s
}

func keywordInfo(text, keyword string) KeywordInfo {
	if keyword == "" {
		return KeywordInfo{Positions: []int{}}
	}
	count := countKeyword(text, keyword)
	density := density(count, wordCount(text))
	return KeywordInfo{
		Count:     count,
		Density:   roundTo(density, 2),
		Positions: keywordPositions(text, keyword),
		Optimal:   density >= 0.5 && density <= 2.5,
	}
}

func metaInfo(title, keyword string) MetaInfo {
	n := titleLength(title)
	return MetaInfo{
		TitleLength:    n,
		TitleOptimal:   n >= 30 && n <= 60,
		KeywordInTitle: containsFold(title, keyword),
	}
}

func density(count, words int) float64 {
	if words == 0 {
		return 0
	}
	return float64(count) / float64(words) * 100
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
