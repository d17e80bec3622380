// Package sentiment scores review text with VADER and applies the hybrid
// text-plus-rating classification policy.
package sentiment

import (
	"strconv"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
)

// DefaultRating is assumed when a review's rating cannot be parsed.
const DefaultRating = 3.0

// Scorer produces a compound sentiment score in [-1, 1] for free text.
// Implementations must be safe for concurrent use.
type Scorer interface {
	Compound(text string) float64
}

// VADERScorer is the govader backed Scorer. VADER is lexicon-based and
// needs no model files or warmup.
type VADERScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVADERScorer creates a scorer with the default VADER lexicon.
func NewVADERScorer() *VADERScorer {
	return &VADERScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the overall sentiment score for the text.
func (s *VADERScorer) Compound(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}

// CombineText joins the canonicalized summary and review text the way the
// scorer expects them: trimmed and separated by a single space. When either
// part is empty the result is the other part alone, and two empty parts
// yield the empty string.
func CombineText(summary, reviewText string) string {
	return strings.TrimSpace(strings.TrimSpace(summary) + " " + strings.TrimSpace(reviewText))
}

// ParseRating parses a rating carried as a string. Unparsable input falls
// back to the neutral DefaultRating.
func ParseRating(raw string) float64 {
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return DefaultRating
	}
	return rating
}

// Classify applies the hybrid policy combining the compound text score with
// the numerical rating. Rules are checked in order:
//
//	compound >= 0.5, or compound > 0 with rating >= 4  -> positive
//	compound <= -0.5, or compound < 0 with rating <= 2 -> negative
//	otherwise                                          -> neutral
func Classify(compound, rating float64) string {
	switch {
	case compound >= 0.5 || (compound > 0 && rating >= 4):
		return domain.SentimentPositive
	case compound <= -0.5 || (compound < 0 && rating <= 2):
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
