// Package heuristics produces the advisory quality signals of a
// submission: a fluency estimate from Spanish readability, a coarse
// sentiment label from a polarity lexicon, and a difficulty band.
// Signals never generate issues; on failure the pipeline substitutes
// neutral defaults and records a warning.
package heuristics

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// SourceName identifies this analyzer in warnings.
const SourceName = "heuristics"

// Scorer computes the Signals of a normalized submission. stats are the
// text statistics the normalizer already derived.
type Scorer interface {
	Score(ctx context.Context, text string, stats analysis.TextStats) (analysis.Signals, error)
}

// HeuristicScorer is stateless and safe for concurrent use.
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score derives fluency from the Fernández-Huerta adaptation of the
// Flesch formula, sentiment from polarity word counts, and a difficulty
// band from the readability score.
func (s *HeuristicScorer) Score(ctx context.Context, text string, stats analysis.TextStats) (analysis.Signals, error) {
	if err := ctx.Err(); err != nil {
		return analysis.NeutralSignals(), errors.Wrap(err, errors.ErrCodeAnalyzerUnavailable, "heuristic scoring aborted")
	}
	if stats.WordCount == 0 || stats.SentenceCount == 0 {
		return analysis.NeutralSignals(), errors.New(errors.ErrCodeAnalyzerDegraded, "no words to score")
	}

	readability := readabilityScore(text, stats)
	sig := analysis.Signals{
		Fluency:    clamp01(readability / 100),
		Sentiment:  sentiment(text),
		Difficulty: difficultyBand(readability),
	}
	return sig, nil
}

// readabilityScore computes the Fernández-Huerta readability of Spanish
// text: 206.84 - 60*P - 1.02*F, where P is syllables per word and F is
// words per sentence. Higher is easier, nominally in [0, 100] but not
// clamped here so bands at the extremes stay distinguishable.
func readabilityScore(text string, stats analysis.TextStats) float64 {
	syllables := 0
	words := 0
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		words++
		syllables += CountSyllables(w)
	}
	if words == 0 {
		return 0
	}
	p := float64(syllables) / float64(words)
	f := float64(stats.WordCount) / float64(stats.SentenceCount)
	return 206.84 - 60*p - 1.02*f
}

// CountSyllables estimates the syllables of one Spanish word by
// counting vowel groups, splitting hiatuses between two strong vowels.
// Every word has at least one syllable.
func CountSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	var prev rune
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		} else if v && prevVowel && isStrong(prev) && isStrong(r) {
			// hiatus: "le-er", "ca-os"
			count++
		}
		prevVowel = v
		prev = r
	}
	if count == 0 {
		return 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'á', 'é', 'í', 'ó', 'ú', 'ü':
		return true
	}
	return false
}

// isStrong reports an open vowel; accented weak vowels break diphthongs
// and count as strong.
func isStrong(r rune) bool {
	switch r {
	case 'a', 'e', 'o', 'á', 'é', 'ó', 'í', 'ú':
		return true
	}
	return false
}

// difficultyBand maps a readability score to the band shown to the
// learner.
func difficultyBand(score float64) string {
	switch {
	case score >= 90:
		return "muy_facil"
	case score >= 70:
		return "facil"
	case score >= 50:
		return "normal"
	case score >= 30:
		return "dificil"
	default:
		return "muy_dificil"
	}
}

// positiveWords and negativeWords form the polarity lexicon. Lowercase,
// unaccented variants included where learners commonly omit the tilde.
var positiveWords = map[string]struct{}{
	"bien": {}, "bueno": {}, "buena": {}, "buenos": {}, "buenas": {}, "excelente": {},
	"feliz": {}, "alegre": {}, "contento": {}, "contenta": {}, "genial": {}, "bonito": {},
	"bonita": {}, "hermoso": {}, "hermosa": {}, "perfecto": {}, "perfecta": {}, "gracias": {},
	"amor": {}, "amable": {}, "divertido": {}, "divertida": {}, "fácil": {}, "facil": {},
	"mejor": {}, "maravilloso": {}, "maravillosa": {}, "fantástico": {}, "fantastico": {},
	"gusta": {}, "gustan": {}, "encanta": {}, "encantan": {}, "interesante": {},
}

var negativeWords = map[string]struct{}{
	"mal": {}, "malo": {}, "mala": {}, "malos": {}, "malas": {}, "terrible": {},
	"triste": {}, "enojado": {}, "enojada": {}, "feo": {}, "fea": {}, "horrible": {},
	"difícil": {}, "dificil": {}, "peor": {}, "odio": {}, "odia": {}, "miedo": {},
	"problema": {}, "problemas": {}, "cansado": {}, "cansada": {}, "aburrido": {},
	"aburrida": {}, "enfermo": {}, "enferma": {}, "nunca": {}, "dolor": {},
}

// sentiment labels the text by comparing polarity word counts. Ties and
// polarity-free text are neutral.
func sentiment(text string) analysis.SentimentLabel {
	pos, neg := 0, 0
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return analysis.SentimentPositive
	case neg > pos:
		return analysis.SentimentNegative
	default:
		return analysis.SentimentNeutral
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
