package llm

import (
	"unicode/utf8"
)

// TruncationMarker is appended to text cut to fit a token budget.
const TruncationMarker = "\n\n[Text truncated due to length]"

// EstimateTokens approximates token count at four characters per token.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Truncate cuts text to 90% of maxTokens worth of characters when it is over
// budget, appending TruncationMarker.
func Truncate(text string, maxTokens int) (truncated string) {
	if EstimateTokens(text) <= maxTokens {
		truncated = text
		return truncated
	}

	limit := int(float64(maxTokens*4) * 0.9)
	if limit < 0 {
		limit = 0
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}

	truncated = text[:limit] + TruncationMarker
	return truncated
}
