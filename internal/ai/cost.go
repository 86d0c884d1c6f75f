package ai

import "strings"

// defaultRate is charged per 1K tokens for models missing from the table.
const defaultRate = 0.002

// pricing is USD per 1K tokens.
var pricing = map[string]float64{
	"gpt-3.5-turbo":     0.002,
	"gpt-4":             0.03,
	"gpt-4-turbo":       0.01,
	"gpt-4o":            0.005,
	"gpt-4o-mini":       0.0006,
	"claude-haiku-4-5":  0.004,
	"claude-sonnet-4-5": 0.015,
}

// CalculateCost returns the estimated USD cost of tokens on model. Dated
// snapshots such as "gpt-4o-2024-08-06" are priced as their family (the
// longest table entry that prefixes the name followed by '-').
func CalculateCost(tokens int, model string) float64 {
	return float64(tokens) / 1000 * rateFor(model)
}

func rateFor(model string) float64 {
	if rate, ok := pricing[model]; ok {
		return rate
	}
	best := ""
	for name := range pricing {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return pricing[best]
	}
	return defaultRate
}
