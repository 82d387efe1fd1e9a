package finnhub

import "strings"

// Sentiment is a coarse keyword-derived tag, not a model output.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

var positiveWords = []string{
	"beat", "beats", "surge", "rally", "upgrade", "upgraded", "record",
	"strong", "growth", "outperform", "raised", "bullish", "soar", "tops",
}

var negativeWords = []string{
	"miss", "misses", "plunge", "drop", "downgrade", "downgraded", "weak",
	"decline", "lawsuit", "probe", "cut", "bearish", "fall", "warns", "slump",
}

// TagSentiment scores a headline by keyword counts. Ties, including
// zero/zero, read as neutral.
func TagSentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	var pos, neg int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
