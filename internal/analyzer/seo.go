package analyzer

import (
	"math"
	"net/url"
	"regexp"
	"strings"
)

var (
	headingTagRe   = regexp.MustCompile(`(?i)<h[1-6](\s[^>]*)?>`)
	paragraphTagRe = regexp.MustCompile(`(?i)<p(\s[^>]*)?>`)
	listTagRe      = regexp.MustCompile(`(?i)<(ul|ol)(\s[^>]*)?>`)
	imgTagRe       = regexp.MustCompile(`(?i)<img[^>]*>`)
	imgAltRe       = regexp.MustCompile(`(?i)<img[^>]*\salt=["'][^"']*["'][^>]*>`)
	anchorTagRe    = regexp.MustCompile(`(?i)<a(\s[^>]*)?>`)
	hrefRe         = regexp.MustCompile(`(?i)<a\s[^>]*href=["']([^"']*)["']`)

	headingLevelRes = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, 6)
		for i := range out {
			out[i] = regexp.MustCompile(`(?i)<h` + string(rune('1'+i)) + `(\s[^>]*)?>`)
		}
		return out
	}()
)

// SEOScore is the additive search optimization score. Factors holds each
// contribution, rounded; title and keyword_usage are omitted when their
// input is empty.
type SEOScore struct {
	Score   int            `json:"score"`
	Factors map[string]int `json:"factors"`
}

func (a *Analyzer) seoScore(content, text, title, keyword string) SEOScore {
	factors := make(map[string]int, 6)
	total := 0.0

	if title != "" {
		ts := 0.0
		if n := titleLength(title); n >= 30 && n <= 60 {
			ts += 10
		}
		if containsFold(title, keyword) {
			ts += 10
		}
		factors["title"] = int(ts)
		total += ts
	}

	wc := wordCount(text)
	length := min(15, float64(wc)/300*15)
	factors["content_length"] = int(math.Round(length))
	total += length

	if keyword != "" {
		ks := keywordScore(density(countKeyword(text, keyword), wc))
		factors["keyword_usage"] = int(math.Round(ks))
		total += ks
	}

	ss := structureScore(content)
	factors["content_structure"] = ss
	total += float64(ss)

	ls := a.linkScore(content)
	factors["links"] = ls
	total += float64(ls)

	is := imageScore(content)
	factors["images"] = is
	total += float64(is)

	return SEOScore{Score: int(min(100, math.Round(total))), Factors: factors}
}

// keywordScore is 25 inside the 0.5-2.5% density band, ramps up to 15 below
// it, decays from 25 to 15 up to 4%, and is 0 beyond.
func keywordScore(d float64) float64 {
	switch {
	case d >= 0.5 && d <= 2.5:
		return 25
	case d > 0 && d < 0.5:
		return math.Round(d / 0.5 * 15)
	case d > 2.5 && d <= 4:
		return math.Round(25 - (d-2.5)/1.5*10)
	default:
		return 0
	}
}

func structureScore(content string) int {
	score := 0
	if headingTagRe.MatchString(content) {
		score += 10
	}
	if paragraphTagRe.MatchString(content) {
		score += 5
	}
	if listTagRe.MatchString(content) {
		score += 5
	}
	return score
}

func (a *Analyzer) linkScore(content string) int {
	internal, external := false, false
	for _, m := range hrefRe.FindAllStringSubmatch(content, -1) {
		switch a.classifyLink(strings.TrimSpace(m[1])) {
		case linkInternal:
			internal = true
		case linkExternal:
			external = true
		}
	}
	score := 0
	if internal {
		score += 5
	}
	if external {
		score += 5
	}
	return score
}

type linkKind int

const (
	linkIgnored linkKind = iota
	linkInternal
	linkExternal
)

func (a *Analyzer) classifyLink(href string) linkKind {
	if href == "" || strings.HasPrefix(href, "#") {
		return linkIgnored
	}
	u, err := url.Parse(href)
	if err != nil {
		return linkIgnored
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if a.siteHost != "" && strings.EqualFold(u.Hostname(), a.siteHost) {
			return linkInternal
		}
		return linkExternal
	case "":
		if u.Host != "" {
			// protocol-relative
			if a.siteHost != "" && strings.EqualFold(u.Hostname(), a.siteHost) {
				return linkInternal
			}
			return linkExternal
		}
		return linkInternal
	default:
		return linkIgnored
	}
}

func imageScore(content string) int {
	score := 0
	if imgTagRe.MatchString(content) {
		score += 5
	}
	if imgAltRe.MatchString(content) {
		score += 5
	}
	return score
}
