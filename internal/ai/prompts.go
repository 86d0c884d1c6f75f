package ai

import (
	"fmt"
	"strings"
)

// PostPrompt describes one post to be written.
type PostPrompt struct {
	Topic        string
	FocusKeyword string
	Tone         string
	Length       string
	Language     string
	// Headlines are recent titles from a related feed, offered as context.
	Headlines []string
}

var wordCounts = map[string]int{
	"short":  400,
	"medium": 800,
	"long":   1500,
}

var languageNames = map[string]string{
	"en": "English",
	"bg": "Bulgarian",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
}

const (
	professionalSystemTmpl = "You are a professional content writer who creates authoritative, well-researched blog posts in %s. Write in a clear, professional tone that establishes expertise and trust. Follow SEO best practices and ensure content is optimized for search engines."
	casualSystemTmpl       = "You are a friendly blogger who writes in a conversational, approachable style in %s. Use a warm, personal tone that connects with readers while maintaining SEO optimization."
	technicalSystemTmpl    = "You are a technical writer who creates detailed, accurate content in %s for knowledgeable audiences. Use precise terminology and provide in-depth explanations while ensuring SEO optimization."
	friendlySystemTmpl     = "You are an enthusiastic content creator who writes engaging, upbeat content in %s. Use an encouraging, positive tone that motivates readers while following SEO best practices."
)

// WordCount maps a length setting to a target word count. Unknown lengths
// are treated as medium.
func WordCount(length string) int {
	if n, ok := wordCounts[length]; ok {
		return n
	}
	return wordCounts["medium"]
}

// LanguageName maps a language code to its English name, defaulting to
// English.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}

// SupportedLanguages returns the known language codes.
func SupportedLanguages() map[string]string {
	out := make(map[string]string, len(languageNames))
	for k, v := range languageNames {
		out[k] = v
	}
	return out
}

// SystemMessage returns the persona for tone, written in language.
// Unknown tones use the professional persona.
func SystemMessage(tone, language string) string {
	name := LanguageName(language)
	switch tone {
	case "casual":
		return fmt.Sprintf(casualSystemTmpl, name)
	case "technical":
		return fmt.Sprintf(technicalSystemTmpl, name)
	case "friendly":
		return fmt.Sprintf(friendlySystemTmpl, name)
	default:
		return fmt.Sprintf(professionalSystemTmpl, name)
	}
}

// Prompt builds the user prompt. The response format section asks for the
// [TITLE], [META], [EXCERPT] and [CONTENT] markers ParseContent reads.
func (p PostPrompt) Prompt() string {
	words := WordCount(p.Length)
	lang := LanguageName(p.Language)
	tone := p.Tone
	if tone == "" {
		tone = "professional"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a comprehensive blog post in %s about '%s'", lang, p.Topic)
	if p.FocusKeyword != "" {
		fmt.Fprintf(&b, " optimized for the focus keyword: '%s'", p.FocusKeyword)
	}

	b.WriteString("\n\nRequirements:")
	fmt.Fprintf(&b, "\n- Write approximately %d words", words)
	fmt.Fprintf(&b, "\n- Write in %s", lang)
	fmt.Fprintf(&b, "\n- Use a %s tone", tone)
	b.WriteString("\n- Format the entire post using clean, valid HTML (not Markdown)")
	b.WriteString("\n- Include proper headings (H2, H3)")
	b.WriteString("\n- Write an engaging introduction")
	b.WriteString("\n- Provide valuable, actionable content")
	b.WriteString("\n- Include a strong conclusion")
	b.WriteString("\n- Optimize for SEO")
	b.WriteString("\n- Optimize for AIO - AI Overviews, ChatGPT")
	if p.FocusKeyword != "" {
		fmt.Fprintf(&b, "\n- Use the focus keyword '%s' naturally throughout the content", p.FocusKeyword)
		b.WriteString("\n- Include the focus keyword in the title and first paragraph")
		b.WriteString("\n- Maintain optimal keyword density (0.5-2.5%)")
	}

	if len(p.Headlines) > 0 {
		b.WriteString("\n\nRecent headlines on this subject, for context only (do not copy them):")
		for _, h := range p.Headlines {
			fmt.Fprintf(&b, "\n- %s", h)
		}
	}

	b.WriteString("\n\nFormat the response as follows:")
	b.WriteString("\n[TITLE]Your compelling title here[/TITLE]")
	b.WriteString("\n[META]Write a meta description (150-160 characters)[/META]")
	b.WriteString("\n[EXCERPT]Write a brief excerpt (150-200 words)[/EXCERPT]")
	b.WriteString("\n[CONTENT]Your full blog post content here[/CONTENT]")
	return b.String()
}

// ImagePrompt is the featured image request for topic.
func ImagePrompt(topic string) string {
	return fmt.Sprintf("Create a professional, high-quality featured image for a blog post about: %s. Style: modern, clean, professional.", topic)
}

// AltTextPrompt asks for alt text for the image at src inside a post.
func AltTextPrompt(title, keyword, src string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a descriptive alt text for an image in a blog post titled '%s'", title)
	if keyword != "" {
		fmt.Fprintf(&b, " about '%s'", keyword)
	}
	fmt.Fprintf(&b, ". The image URL is: %s. ", src)
	fmt.Fprintf(&b, "Create a concise, descriptive alt text (max %d characters) that describes what the image likely shows based on the context. ", MaxAltTextLength)
	b.WriteString("Focus on accessibility and SEO. Return only the alt text, no quotes or extra text.")
	return b.String()
}

// MaxAltTextLength caps generated alt text, in characters.
const MaxAltTextLength = 125

// OptimizeContentPrompt asks for a restructured version of content that
// keeps its meaning and HTML.
func OptimizeContentPrompt(content, title, keyword string) string {
	var b strings.Builder
	b.WriteString("Optimize the following HTML content for SEO and readability while maintaining the original meaning and structure:\n\n")
	fmt.Fprintf(&b, "Title: %s\nFocus Keyword: %s\nContent: %s\n\n", title, keyword, content)
	b.WriteString("Optimization requirements:\n")
	for i, req := range []string{
		"Improve heading structure (H2, H3 hierarchy)",
		"Add bullet points or numbered lists where appropriate",
		"Optimize keyword placement naturally",
		"Improve paragraph structure (2-4 sentences each)",
		"Add internal linking opportunities (use placeholder links)",
		"Ensure content is scannable and well-structured",
		"Maintain all existing HTML formatting",
		"Keep the same content length and meaning",
	} {
		fmt.Fprintf(&b, "%d. %s\n", i+1, req)
	}
	b.WriteString("\nReturn only the optimized HTML content, no explanations.")
	return b.String()
}

// SuggestionsPrompt asks for bullet-point suggestions grouped under the
// SuggestionCategories headings ParseSuggestions understands.
func SuggestionsPrompt(content, title, keyword string) string {
	var b strings.Builder
	b.WriteString("Analyze the following content and provide specific, actionable SEO and content optimization suggestions:\n\n")
	fmt.Fprintf(&b, "Title: %s\nFocus Keyword: %s\nContent: %s\n\n", title, keyword, content)
	b.WriteString("Provide suggestions in these categories:\n")
	for i, c := range SuggestionCategories {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	b.WriteString("\nFormat each suggestion as a clear, actionable bullet point. Focus on specific, implementable recommendations.")
	return b.String()
}

// CompetitorPrompt asks for a competitive landscape of keyword.
func CompetitorPrompt(keyword string) string {
	return fmt.Sprintf("Provide a competitive analysis for the keyword '%s'. Include:\n\n", keyword) +
		"1. Common content themes and topics\n" +
		"2. Typical content length and structure\n" +
		"3. Key points that top-ranking content covers\n" +
		"4. Content gaps and opportunities\n" +
		"5. Recommended content strategy\n\n" +
		"Format as structured text with clear headings."
}

// ContentGapsPrompt asks what content is missing for keyword, judged by
// the search standards of year.
func ContentGapsPrompt(content, keyword string, year int) string {
	return fmt.Sprintf("Analyze the following content for the keyword '%s' and identify content gaps for %d AI search optimization:\n\n", keyword, year) +
		fmt.Sprintf("Content: %s\n\n", content) +
		"Identify:\n" +
		"1. Missing subtopics that should be covered\n" +
		"2. Questions readers might have that aren't answered\n" +
		"3. Related keywords and topics to include\n" +
		"4. Additional sections that would improve comprehensiveness\n" +
		"5. AI search engine optimization opportunities\n" +
		"6. Answer Engine Optimization (AEO) improvements\n\n" +
		fmt.Sprintf("Focus on %d AI search standards and provide actionable recommendations.", year)
}

// TranslateTitlePrompt takes a language code or name; known codes are
// expanded to the language name.
func TranslateTitlePrompt(title, language string) string {
	return fmt.Sprintf("Translate the following title to %s, maintaining SEO best practices: %s", targetLanguage(language), title)
}

// TranslateContentPrompt asks for a translation that keeps the HTML.
func TranslateContentPrompt(content, language string) string {
	return fmt.Sprintf("Translate the following content to %s, maintaining the HTML structure, SEO optimization, and readability: %s", targetLanguage(language), content)
}

func targetLanguage(language string) string {
	if name, ok := languageNames[strings.ToLower(language)]; ok {
		return name
	}
	return language
}
