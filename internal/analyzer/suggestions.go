package analyzer

import (
	"fmt"
	"strings"
)

// Suggestion is one rule-based editing hint.
type Suggestion struct {
	Type     string `json:"type"` // error, warning or info
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SEOSuggestions lists quick fixes for a draft: title length, keyword use,
// length, subheadings and images. It never calls out to a model.
func SEOSuggestions(content, title, keyword string) []Suggestion {
	out := []Suggestion{}
	add := func(typ, category, msg string) {
		out = append(out, Suggestion{Type: typ, Category: category, Message: msg})
	}

	switch n := titleLength(title); {
	case n < 30:
		add("warning", "Title", "Title is too short. Aim for 30-60 characters.")
	case n > 60:
		add("warning", "Title", "Title is too long. Keep it under 60 characters.")
	}

	text := stripTags(content)
	wc := wordCount(text)

	if keyword = strings.TrimSpace(keyword); keyword != "" {
		if !containsFold(title, keyword) {
			add("error", "Keyword", "Focus keyword not found in title.")
		}
		switch d := density(countKeyword(text, keyword), wc); {
		case d < 0.5:
			add("warning", "Keyword", "Keyword density is too low. Consider adding the keyword more naturally.")
		case d > 2.5:
			add("error", "Keyword", "Keyword density is too high. This may be seen as keyword stuffing.")
		}
	}

	if wc < 300 {
		add("warning", "Content", fmt.Sprintf("Content is too short (%d words). Aim for at least 300 words.", wc))
	}
	if !subheadingRe.MatchString(content) {
		add("warning", "Structure", "Add subheadings (H2, H3) to improve content structure.")
	}
	if !imgTagRe.MatchString(content) {
		add("info", "Images", "Consider adding images to make content more engaging.")
	}
	return out
}
