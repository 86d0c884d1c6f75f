package analyzer

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	sentenceSep  = regexp.MustCompile(`[.!?]+`)
	paragraphEnd = regexp.MustCompile(`(?i)</p\s*>`)
)

// stripTags replaces markup with spaces so adjacent blocks do not fuse into
// one word, then decodes entities.
func stripTags(s string) string {
	return html.UnescapeString(tagRe.ReplaceAllString(s, " "))
}

// words returns the maximal runs of letters, apostrophes and hyphens that
// contain at least one letter.
func words(text string) []string {
	var out []string
	start := -1
	hasLetter := false
	flush := func(end int) {
		if start >= 0 && hasLetter {
			out = append(out, strings.Trim(text[start:end], "'-"))
		}
		start = -1
		hasLetter = false
	}
	for i, r := range text {
		isLetter := unicode.IsLetter(r)
		if isLetter || r == '\'' || r == '-' || r == '’' {
			if start < 0 {
				start = i
			}
			if isLetter {
				hasLetter = true
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return out
}

func wordCount(text string) int {
	return len(words(text))
}

// sentences splits on runs of terminal punctuation and keeps non-blank spans.
func sentences(text string) []string {
	var out []string
	for _, s := range sentenceSep.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// syllables counts vowel groups, dropping a silent trailing "e" from words
// that already have more than one group. Every word counts at least once.
func syllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	return max(count, 1)
}

func totalSyllables(ws []string) int {
	n := 0
	for _, w := range ws {
		n += syllables(w)
	}
	return max(n, 1)
}

// countKeyword counts case-insensitive, non-overlapping occurrences.
func countKeyword(text, keyword string) int {
	return len(keywordPositions(text, keyword))
}

// keywordPositions returns the byte offsets in text of each
// case-insensitive, non-overlapping occurrence of keyword.
func keywordPositions(text, keyword string) []int {
	positions := []int{}
	if keyword == "" {
		return positions
	}
	for i := 0; i < len(text); {
		if n, ok := matchFoldAt(text[i:], keyword); ok {
			positions = append(positions, i)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return positions
}

// matchFoldAt reports whether s starts with keyword under simple case
// folding, and how many bytes of s the match spans.
func matchFoldAt(s, keyword string) (int, bool) {
	n := 0
	for _, kr := range keyword {
		if n >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[n:])
		if sr != kr && unicode.ToLower(sr) != unicode.ToLower(kr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// containsWord reports whether word occurs in s with no ASCII word
// character on either side.
func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		from = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func containsFold(s, sub string) bool {
	return sub != "" && strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// paragraphs splits content on closing paragraph tags and drops pieces
// with no text.
func paragraphs(content string) []string {
	var out []string
	for _, p := range paragraphEnd.Split(content, -1) {
		if strings.TrimSpace(stripTags(p)) != "" {
			out = append(out, p)
		}
	}
	return out
}

// prefixRunes returns the first n characters of s.
func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func titleLength(title string) int {
	return utf8.RuneCountInString(title)
}

func round1(v float64) float64 {
	return roundTo(v, 1)
}
