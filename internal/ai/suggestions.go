package ai

import (
	"regexp"
	"strings"
)

// SuggestionCategories are the headings SuggestionsPrompt asks for, in
// output order.
var SuggestionCategories = []string{
	"SEO Improvements",
	"Content Structure",
	"Readability Enhancements",
	"Keyword Optimization",
	"User Experience",
}

// SuggestionGroup is one category of parsed suggestions.
type SuggestionGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

var (
	bulletRe   = regexp.MustCompile(`^[-*•]\s*(.+)`)
	numberedRe = regexp.MustCompile(`^\d+\.\s*(.+)`)
)

// ParseSuggestions files the bullet and numbered lines of text under the
// most recent category heading. A line mentioning a category name (with or
// without spaces, any case) switches category. Lines before the first
// heading and non-list lines are dropped, as are empty categories.
func ParseSuggestions(text string) []SuggestionGroup {
	items := make(map[string][]string, len(SuggestionCategories))
	current := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if c := suggestionCategory(line); c != "" {
			current = c
			continue
		}
		if current == "" {
			continue
		}
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			m = numberedRe.FindStringSubmatch(line)
		}
		if m != nil {
			items[current] = append(items[current], strings.TrimSpace(m[1]))
		}
	}

	groups := []SuggestionGroup{}
	for _, c := range SuggestionCategories {
		if len(items[c]) > 0 {
			groups = append(groups, SuggestionGroup{Category: c, Items: items[c]})
		}
	}
	return groups
}

func suggestionCategory(line string) string {
	lower := strings.ToLower(line)
	for _, c := range SuggestionCategories {
		name := strings.ToLower(c)
		if strings.Contains(lower, name) || strings.Contains(lower, strings.ReplaceAll(name, " ", "")) {
			return c
		}
	}
	return ""
}
