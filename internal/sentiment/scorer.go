// Package sentiment scores comment text with a lexicon/intensity analyzer and
// rolls per-comment scores into per-post summaries.
package sentiment

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Scorer produces a compound polarity in [-1, 1] for one text unit.
type Scorer interface {
	Score(text string) (float64, error)
}

const (
	// capsEmphasis is added to a word's valence magnitude when the word is
	// written in all caps inside mixed-case text.
	capsEmphasis = 0.733
	// negationScalar flips and dampens a valence within the negation window.
	negationScalar = -0.74
	// exclamationEmphasis is added per trailing "!", capped at four.
	exclamationEmphasis = 0.292
	// normalizationAlpha is the denominator constant of the compound
	// normalization sum / sqrt(sum² + alpha).
	normalizationAlpha = 15.0

	negationWindow  = 3
	maxExclamations = 4
)

// LexiconScorer is a deterministic VADER-style analyzer: word valences from a
// fixed lexicon, adjusted for boosters, negation, all-caps emphasis and
// exclamation marks, normalized into [-1, 1].
type LexiconScorer struct{}

// NewLexiconScorer returns the default scorer.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

func (s *LexiconScorer) Score(text string) (float64, error) {
	raw := tokenize(text)
	if len(raw) == 0 {
		return 0, nil
	}

	mixedCase := !allCaps(raw)

	var sum float64
	for i, tok := range raw {
		word := strings.ToLower(tok)
		valence, ok := lexicon[word]
		if !ok {
			continue
		}

		if mixedCase && isCapsWord(tok) {
			if valence > 0 {
				valence += capsEmphasis
			} else {
				valence -= capsEmphasis
			}
		}

		for back := 1; back <= negationWindow && i-back >= 0; back++ {
			prev := strings.ToLower(raw[i-back])
			if boost, ok := boosters[prev]; ok && back == 1 {
				if valence > 0 {
					valence += boost
				} else {
					valence -= boost
				}
				continue
			}
			if _, ok := negations[prev]; ok {
				valence *= negationScalar
				break
			}
		}

		sum += valence
	}

	if bangs := countExclamations(text); bangs > 0 && sum != 0 {
		emphasis := float64(bangs) * exclamationEmphasis
		if sum > 0 {
			sum += emphasis
		} else {
			sum -= emphasis
		}
	}

	return normalize(sum), nil
}

// normalize maps an unbounded valence sum into [-1, 1].
func normalize(sum float64) float64 {
	c := sum / math.Sqrt(sum*sum+normalizationAlpha)
	if c > 1 {
		return 1
	}
	if c < -1 {
		return -1
	}
	return c
}

// tokenize splits NFC-normalized text on whitespace and strips surrounding
// punctuation, keeping intra-word apostrophes so contractions survive for the
// negation check.
func tokenize(text string) []string {
	fields := strings.Fields(norm.NFC.String(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		trimmed := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) && r != '\''
		})
		if trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

func countExclamations(text string) int {
	n := strings.Count(text, "!")
	if n > maxExclamations {
		return maxExclamations
	}
	return n
}

func isCapsWord(tok string) bool {
	hasLetter := false
	for _, r := range tok {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter && len([]rune(tok)) > 1
}

func allCaps(tokens []string) bool {
	for _, tok := range tokens {
		if !isCapsWord(tok) {
			return false
		}
	}
	return true
}
