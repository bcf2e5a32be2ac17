package heuristics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvalencee/alfaia/internal/nlp/normalizer"
	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

func scoreText(t *testing.T, text string) analysis.Signals {
	t.Helper()
	res, err := normalizer.New().Normalize(context.Background(), text)
	require.NoError(t, err)
	sig, err := NewHeuristicScorer().Score(context.Background(), res.Text, res.Stats)
	require.NoError(t, err)
	return sig
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"casa", 2},
		{"sol", 1},
		{"libro", 2},
		{"escuela", 3}, // es-cue-la: "ue" is a diphthong
		{"leer", 2},    // le-er: strong-strong hiatus
		{"caos", 2},    // ca-os
		{"país", 2},    // pa-ís: accented weak vowel breaks the diphthong
		{"ciudad", 2},  // ciu-dad
		{"murciélago", 4},
		{"y", 1}, // no vowel, floor of one
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, CountSyllables(tt.word))
		})
	}
}

func TestScoreFluencyRange(t *testing.T) {
	texts := []string{
		"El sol es rojo. La casa es grande.",
		"Me gusta mucho la comida de mi madre porque siempre es deliciosa.",
		"La incomprensibilidad administrativa gubernamental contemporánea dificulta extraordinariamente cualquier procedimiento.",
	}
	var scores []float64
	for _, text := range texts {
		sig := scoreText(t, text)
		assert.GreaterOrEqual(t, sig.Fluency, 0.0)
		assert.LessOrEqual(t, sig.Fluency, 1.0)
		assert.NotEmpty(t, sig.Difficulty)
		scores = append(scores, sig.Fluency)
	}
	// Short simple sentences read easier than long derivational words.
	assert.Greater(t, scores[0], scores[2])
}

func TestScoreDeterministic(t *testing.T) {
	a := scoreText(t, "Me gusta la escuela. Es muy bonita.")
	b := scoreText(t, "Me gusta la escuela. Es muy bonita.")
	assert.Equal(t, a, b)
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want analysis.SentimentLabel
	}{
		{"positive", "Estoy muy feliz y contento con mi trabajo.", analysis.SentimentPositive},
		{"negative", "Es horrible y triste, tengo muchos problemas.", analysis.SentimentNegative},
		{"neutral", "El libro está sobre la mesa.", analysis.SentimentNeutral},
		{"balanced", "El día fue bueno y malo.", analysis.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := scoreText(t, tt.text)
			assert.Equal(t, tt.want, sig.Sentiment)
		})
	}
}

func TestDifficultyBands(t *testing.T) {
	assert.Equal(t, "muy_facil", difficultyBand(95))
	assert.Equal(t, "facil", difficultyBand(75))
	assert.Equal(t, "normal", difficultyBand(55))
	assert.Equal(t, "dificil", difficultyBand(35))
	assert.Equal(t, "muy_dificil", difficultyBand(10))
}

func TestScoreDegradedOnEmptyStats(t *testing.T) {
	sig, err := NewHeuristicScorer().Score(context.Background(), "", analysis.TextStats{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAnalyzerDegraded, errors.GetCode(err))
	assert.Equal(t, analysis.NeutralSignals(), sig)
}

func TestScoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sig, err := NewHeuristicScorer().Score(ctx, "hola", analysis.TextStats{WordCount: 1, SentenceCount: 1})
	require.Error(t, err)
	assert.Equal(t, analysis.NeutralSignals(), sig)
}
