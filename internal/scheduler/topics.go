package scheduler

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// TopicVariations returns the de-duplicated candidate topics for a
// schedule: the title itself, four keyword phrasings per keyword, and three
// freshness phrasings for year.
func TopicVariations(title string, keywords []string, year int) []string {
	candidates := []string{title}
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		candidates = append(candidates,
			fmt.Sprintf("%s: %s Guide", title, k),
			fmt.Sprintf("How to Use %s for %s", k, title),
			fmt.Sprintf("%s Tips for %s", k, title),
			fmt.Sprintf("Best %s Practices in %s", k, title),
		)
	}
	candidates = append(candidates,
		fmt.Sprintf("%s in %d", title, year),
		fmt.Sprintf("%s: %d Update", title, year),
		fmt.Sprintf("Latest %s Trends", title),
	)

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// PickTopic chooses one variation uniformly at random using rng.
func PickTopic(rng *rand.Rand, title string, keywords []string, year int) string {
	variations := TopicVariations(title, keywords, year)
	return variations[rng.IntN(len(variations))]
}
