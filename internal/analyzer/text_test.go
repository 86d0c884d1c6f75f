package analyzer

import (
	"reflect"
	"strings"
	"testing"
)

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, world!", []string{"Hello", "world"}},
		{"don't stop well-known", []string{"don't", "stop", "well-known"}},
		{"123 -- 4.5", nil},
		{"café naïve", []string{"café", "naïve"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := words(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("words(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags("<p>one</p><p>two &amp; three</p>")
	if wordCount(got) != 3 {
		t.Errorf("stripTags fused or lost words: %q", got)
	}
}

func TestSentences(t *testing.T) {
	got := sentences("One. Two!! Three?  ")
	if len(got) != 3 {
		t.Errorf("sentences = %q, want 3 spans", got)
	}
	if len(sentences("   ")) != 0 {
		t.Error("blank text produced sentences")
	}
}

func TestSyllables(t *testing.T) {
	tests := map[string]int{
		"the":        1,
		"cake":       1,
		"practice":   2,
		"optimizing": 4,
		"rhythm":     1,
		"b":          1,
		"SEO":        1,
	}
	for word, want := range tests {
		if got := syllables(word); got != want {
			t.Errorf("syllables(%q) = %d, want %d", word, got, want)
		}
	}
}

func TestKeywordPositions(t *testing.T) {
	text := "Go is fun. go go."
	got := keywordPositions(text, "go")
	want := []int{0, 11, 14}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
	if countKeyword(text, "GO") != 3 {
		t.Error("countKeyword is not case-insensitive")
	}
	if len(keywordPositions(text, "")) != 0 {
		t.Error("empty keyword produced positions")
	}
}

func TestParagraphs(t *testing.T) {
	got := paragraphs("<p>one</p>  <p> </p><P>two</P>")
	if len(got) != 2 {
		t.Errorf("paragraphs = %q, want 2", got)
	}
}

func TestPrefixRunes(t *testing.T) {
	if got := prefixRunes("héllo", 2); got != "hé" {
		t.Errorf("prefixRunes = %q", got)
	}
	if got := prefixRunes("hi", 5); got != "hi" {
		t.Errorf("prefixRunes = %q", got)
	}
}

func TestKeywordPositions_CaseFoldingChangesByteLength(t *testing.T) {
	// İ lowercases to a one-byte 'i', so offsets taken from a lowercased
	// copy would drift.
	text := " İİİİ seo here. SEO again. "
	got := keywordPositions(text, "seo")
	want := []int{10, 20}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("positions = %v, want %v", got, want)
	}
	for _, p := range got {
		if !strings.EqualFold(text[p:p+3], "seo") {
			t.Errorf("offset %d points at %q", p, text[p:p+3])
		}
	}
	if n := countKeyword(text, "Seo"); n != 2 {
		t.Errorf("countKeyword = %d, want 2", n)
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		s, word string
		want    bool
	}{
		{"Updated for 2025.", "2025", true},
		{"2025", "2025", true},
		{"id 120254 only", "2025", false},
		{"v2025 then 2025x", "2025", false},
		{"x2025 and (2025)", "2025", true},
		{"anything", "", false},
	}
	for _, tt := range tests {
		if got := containsWord(tt.s, tt.word); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.s, tt.word, got, tt.want)
		}
	}
}
