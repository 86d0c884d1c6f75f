package analyzer

import (
	"math"
	"regexp"
	"strconv"
)

var (
	questionH23Re  = regexp.MustCompile(`(?i)<h[23][^>]*>[^<]*\?[^<]*</h[23]>`)
	questionHRe    = regexp.MustCompile(`(?i)<h[2-6][^>]*>[^<]*\?[^<]*</h[2-6]>`)
	questionPairRe = regexp.MustCompile(`(?i)<h[2-6][^>]*>[^<]*\?[^<]*</h[2-6]>\s*<p[^>]*>[^<]{20,100}[.!]`)
	subheadingRe   = regexp.MustCompile(`(?i)<h[2-6][^>]*>`)
	stepRe         = regexp.MustCompile(`(?i)\bstep\s+\d+`)
	sequenceRe     = regexp.MustCompile(`(?i)\b(step\s+\d+|first|second|third|next|then|finally)\b`)
	fluffRe        = regexp.MustCompile(`(?i)\b(amazing|incredible|revolutionary|game-changing|cutting-edge)\b`)
	definitionRe   = regexp.MustCompile(`(?i)\b(is|are|means|refers to|defined as)\b`)
	benefitRe      = regexp.MustCompile(`(?i)\b(benefits?|advantages?|pros?|positive|good)\b`)
	exampleRe      = regexp.MustCompile(`(?i)\b(examples?|instance|case|such as|for example)\b`)
	statisticRe    = regexp.MustCompile(`(?i)\b\d+\s*(?:%|(?:percent|million|billion|thousand)\b)`)
	citationRe     = regexp.MustCompile(`(?i)\b(according to|source|study|research|report)\b`)
	shortSentRe    = regexp.MustCompile(`[.!?]\s+[A-Z][^.!?]{10,80}[.!?]`)
)

// Category is one AIO compliance check.
type Category struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

func (c *Category) add(points int) { c.Score += points }

func (c *Category) issue(issue, suggestion string) {
	if issue != "" {
		c.Issues = append(c.Issues, issue)
	}
	if suggestion != "" {
		c.Suggestions = append(c.Suggestions, suggestion)
	}
}

// AIO is the answer-engine compliance breakdown.
type AIO struct {
	StructureReadability     Category `json:"structure_readability"`
	SemanticKeywords         Category `json:"semantic_keywords"`
	TechnicalElements        Category `json:"technical_elements"`
	TopicCoverage            Category `json:"topic_coverage"`
	AIAgentOptimization      Category `json:"ai_agent_optimization"`
	PerformanceStandards     Category `json:"performance_standards"`
	AuthorityFreshness       Category `json:"authority_freshness"`
	AnswerEngineOptimization Category `json:"answer_engine_optimization"`
	OverallScore             int      `json:"overall_aio_score"`
}

// Categories returns the eight categories in a fixed order.
func (a AIO) Categories() []Category {
	return []Category{
		a.StructureReadability,
		a.SemanticKeywords,
		a.TechnicalElements,
		a.TopicCoverage,
		a.AIAgentOptimization,
		a.PerformanceStandards,
		a.AuthorityFreshness,
		a.AnswerEngineOptimization,
	}
}

func (a *Analyzer) aio(content, text, title, keyword string) AIO {
	r := AIO{
		StructureReadability:     structureCompliance(content),
		SemanticKeywords:         semanticCompliance(text, keyword),
		TechnicalElements:        technicalCompliance(content, title),
		TopicCoverage:            topicCoverage(text),
		AIAgentOptimization:      agentOptimization(content, text),
		PerformanceStandards:     performanceStandards(content, text),
		AuthorityFreshness:       a.authority(text),
		AnswerEngineOptimization: answerEngine(content, text),
	}
	total := 0
	cats := r.Categories()
	for _, c := range cats {
		total += min(c.Score, 100)
	}
	r.OverallScore = int(math.Round(float64(total) / float64(len(cats))))
	return r
}

func structureCompliance(content string) Category {
	var c Category
	if questionH23Re.MatchString(content) {
		c.add(20)
	} else {
		c.issue("No question-based headings found", "Add H2/H3 headings that pose questions readers might ask")
	}

	paras := paragraphs(content)
	long := 0
	for _, p := range paras {
		if len(sentences(stripTags(p))) > 5 {
			long++
		}
	}
	if len(paras) > 0 && float64(long) < float64(len(paras))*0.3 {
		c.add(20)
	} else {
		c.issue("Paragraphs are too long", "Keep paragraphs to 2-4 sentences for better readability")
	}

	if listTagRe.MatchString(content) {
		c.add(15)
	} else {
		c.issue("No bullet points or numbered lists found", "Add bullet points or numbered lists to break up content")
	}
	return c
}

func semanticCompliance(text, keyword string) Category {
	var c Category
	if keyword == "" {
		c.issue("No focus keyword provided", "Add a focus keyword for semantic analysis")
		return c
	}
	if containsFold(prefixRunes(text, 300), keyword) {
		c.add(25)
	} else {
		c.issue("Focus keyword not found in opening paragraph", "Include the focus keyword in the first paragraph")
	}
	count := countKeyword(text, keyword)
	if count >= 4 && count <= 8 && density(count, wordCount(text)) <= 2.5 {
		c.add(25)
	} else {
		c.issue("Keyword frequency not optimal", "Use the focus keyword 4-5 times naturally throughout the content")
	}
	return c
}

func technicalCompliance(content, title string) Category {
	var c Category
	if n := titleLength(title); n >= 30 && n <= 60 {
		c.add(20)
	} else {
		c.issue("Title length not optimal", "Keep title between 30-60 characters")
	}
	if imgTagRe.MatchString(content) {
		c.add(15)
		c.issue("", "Ensure all images have descriptive alt text")
	} else {
		c.issue("", "Consider adding relevant images with descriptive alt text")
	}
	if questionHRe.MatchString(content) || stepRe.MatchString(content) {
		c.add(15)
		c.issue("", "Content structure supports FAQ or HowTo schema markup")
	}
	return c
}

func topicCoverage(text string) Category {
	var c Category
	checks := []struct {
		re         *regexp.Regexp
		points     int
		suggestion string
	}{
		{definitionRe, 15, "Include clear definitions of key concepts"},
		{benefitRe, 15, "Discuss benefits and advantages"},
		{exampleRe, 15, "Add concrete examples to illustrate points"},
		{statisticRe, 10, "Include relevant statistics or data points"},
	}
	for _, check := range checks {
		if check.re.MatchString(text) {
			c.add(check.points)
		} else {
			c.issue("", check.suggestion)
		}
	}
	return c
}

func agentOptimization(content, text string) Category {
	var c Category
	if len(sequenceRe.FindAllStringIndex(text, -1)) >= 3 {
		c.add(25)
	} else {
		c.issue("", "Structure content with clear step-by-step instructions where applicable")
	}
	if len(subheadingRe.FindAllStringIndex(content, -1)) >= 3 {
		c.add(20)
	} else {
		c.issue("", "Use more subheadings to create clear content sections")
	}
	if len(fluffRe.FindAllStringIndex(text, -1)) < 3 {
		c.add(15)
	} else {
		c.issue("Too much marketing language detected", "Use precise, factual language instead of marketing terms")
	}
	return c
}

func performanceStandards(content, text string) Category {
	c := Category{Score: 50}
	wc := wordCount(text)
	switch {
	case wc >= 300 && wc <= 2000:
		c.add(25)
	case wc > 2000:
		c.issue("Content might be too long for optimal performance", "Consider breaking long content into multiple pages")
	}

	paras := paragraphs(content)
	short := 0
	for _, p := range paras {
		if wordCount(stripTags(p)) <= 50 {
			short++
		}
	}
	if len(paras) > 0 && float64(short) >= float64(len(paras))*0.7 {
		c.add(25)
	} else {
		c.issue("", "Keep paragraphs short for better mobile readability")
	}
	return c
}

func (a *Analyzer) authority(text string) Category {
	var c Category
	if citationRe.MatchString(text) {
		c.add(30)
	} else {
		c.issue("", "Include authoritative sources and citations")
	}
	if containsWord(text, strconv.Itoa(a.now().Year())) {
		c.add(20)
	} else {
		c.issue("", "Include current year information to show freshness")
	}
	return c
}

func answerEngine(content, text string) Category {
	var c Category
	if len(questionHRe.FindAllStringIndex(content, -1)) >= 2 {
		c.add(30)
	} else {
		c.issue("", "Add FAQ section with common questions and concise answers")
	}
	if questionPairRe.MatchString(content) {
		c.add(25)
	} else {
		c.issue("", "Provide direct, concise answers immediately after question headings")
	}
	if len(shortSentRe.FindAllStringIndex(text, -1)) >= 5 {
		c.add(20)
	} else {
		c.issue("", "Include more short, quotable sentences that AI can extract")
	}
	return c
}
