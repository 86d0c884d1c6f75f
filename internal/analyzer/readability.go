package analyzer

// Readability is the Flesch Reading Ease result.
type Readability struct {
	Score             float64 `json:"score"`
	Level             string  `json:"level"`
	Sentences         int     `json:"sentences"`
	Words             int     `json:"words"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

// readability scores plain text. Text without words or sentences is
// "Unknown" with a zero score.
func readability(text string) Readability {
	ws := words(text)
	ss := sentences(text)
	if len(ws) == 0 || len(ss) == 0 {
		return Readability{Score: 0, Level: "Unknown"}
	}

	wps := float64(len(ws)) / float64(len(ss))
	spw := float64(totalSyllables(ws)) / float64(len(ws))
	score := 206.835 - 1.015*wps - 84.6*spw
	score = min(max(score, 0), 100)

	return Readability{
		Score:             round1(score),
		Level:             readabilityLevel(score),
		Sentences:         len(ss),
		Words:             len(ws),
		AvgSentenceLength: round1(wps),
	}
}

func readabilityLevel(score float64) string {
	switch {
	case score >= 90:
		return "Very Easy"
	case score >= 80:
		return "Easy"
	case score >= 70:
		return "Fairly Easy"
	case score >= 60:
		return "Standard"
	case score >= 50:
		return "Fairly Difficult"
	case score >= 30:
		return "Difficult"
	default:
		return "Very Difficult"
	}
}
