package ai

import (
	"html"
	"regexp"
	"strings"
)

// ParsedContent is the structured form of a generation response.
type ParsedContent struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Excerpt         string `json:"excerpt"`
	Content         string `json:"content"`
}

var (
	titleRe   = regexp.MustCompile(`(?s)\[TITLE\](.*?)\[/TITLE\]`)
	metaRe    = regexp.MustCompile(`(?s)\[META\](.*?)\[/META\]`)
	excerptRe = regexp.MustCompile(`(?s)\[EXCERPT\](.*?)\[/EXCERPT\]`)
	contentRe = regexp.MustCompile(`(?s)\[CONTENT\](.*?)\[/CONTENT\]`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
)

// excerptWords is the length of a derived excerpt.
const excerptWords = 30

// ParseContent extracts the marked sections from raw. It never fails:
// without a [CONTENT] section the whole response is the content, a missing
// title is taken from the first non-empty line, and a missing excerpt is
// the first words of the content.
func ParseContent(raw string) ParsedContent {
	var p ParsedContent

	if m := titleRe.FindStringSubmatch(raw); m != nil {
		p.Title = strings.TrimSpace(m[1])
	}
	if m := metaRe.FindStringSubmatch(raw); m != nil {
		p.MetaDescription = strings.TrimSpace(m[1])
	}
	if m := excerptRe.FindStringSubmatch(raw); m != nil {
		p.Excerpt = strings.TrimSpace(m[1])
	}
	if m := contentRe.FindStringSubmatch(raw); m != nil {
		p.Content = strings.TrimSpace(m[1])
	} else {
		p.Content = raw
	}

	if p.Title == "" {
		p.Title = firstLine(raw)
	}
	if p.Excerpt == "" {
		p.Excerpt = trimWords(p.Content, excerptWords)
	}
	return p
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// trimWords strips markup and keeps the first n words, appending "..." when
// anything was cut.
func trimWords(s string, n int) string {
	text := html.UnescapeString(tagRe.ReplaceAllString(s, " "))
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
