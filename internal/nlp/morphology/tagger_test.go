package morphology

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvalencee/alfaia/internal/nlp/normalizer"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

func tagSentence(t *testing.T, text string) []analysis.Token {
	t.Helper()
	res, err := normalizer.New().Normalize(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, res.Sentences, 1)

	tokens, err := NewLexiconTagger().Tag(context.Background(), res.Sentences[0])
	require.NoError(t, err)
	return tokens
}

func TestTagPronounVerbAgreementFeatures(t *testing.T) {
	tokens := tagSentence(t, "Yo tengo un libro.")
	require.Len(t, tokens, 5)

	yo := tokens[0]
	assert.Equal(t, analysis.POSPronoun, yo.POS)
	assert.Equal(t, "1", Feature(yo.Morph, "Person"))
	assert.Equal(t, "Sing", Feature(yo.Morph, "Number"))
	assert.Equal(t, "nsubj", yo.DepRel)

	tengo := tokens[1]
	assert.Equal(t, analysis.POSVerb, tengo.POS)
	assert.Equal(t, "tener", tengo.Lemma)
	assert.Equal(t, "1", Feature(tengo.Morph, "Person"))
	assert.Equal(t, "root", tengo.DepRel)
	assert.Equal(t, analysis.NoHead, tengo.Head)

	un := tokens[2]
	assert.Equal(t, analysis.POSDeterminer, un.POS)
	assert.Equal(t, "det", un.DepRel)
	assert.Equal(t, 3, un.Head)

	libro := tokens[3]
	assert.Equal(t, analysis.POSNoun, libro.POS)
	assert.Equal(t, "Masc", Feature(libro.Morph, "Gender"))

	assert.Equal(t, analysis.POSPunctuation, tokens[4].POS)
	assert.Equal(t, "punct", tokens[4].DepRel)
}

func TestTagDisagreeingSubject(t *testing.T) {
	tokens := tagSentence(t, "Yo tiene un libro.")

	tiene := tokens[1]
	assert.Equal(t, analysis.POSVerb, tiene.POS)
	assert.Equal(t, "tener", tiene.Lemma)
	assert.Equal(t, "3", Feature(tiene.Morph, "Person"))
	assert.Equal(t, "Sing", Feature(tiene.Morph, "Number"))
}

func TestTagClosedClasses(t *testing.T) {
	tests := []struct {
		word string
		pos  analysis.PartOfSpeech
	}{
		{"de", analysis.POSPreposition},
		{"pero", analysis.POSConjunction},
		{"siempre", analysis.POSAdverb},
		{"nosotros", analysis.POSPronoun},
		{"las", analysis.POSDeterminer},
		{"rápidamente", analysis.POSAdverb},
		{"12", analysis.POSNumeral},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			tokens := tagSentence(t, "hola "+tt.word+" casa")
			assert.Equal(t, tt.pos, tokens[1].POS)
		})
	}
}

func TestTagPluralNounLemma(t *testing.T) {
	tokens := tagSentence(t, "Tengo dos libros.")
	var libros *analysis.Token
	for i := range tokens {
		if tokens[i].Text == "libros" {
			libros = &tokens[i]
		}
	}
	require.NotNil(t, libros)
	assert.Equal(t, analysis.POSNoun, libros.POS)
	assert.Equal(t, "libro", libros.Lemma)
	assert.Equal(t, "Plur", Feature(libros.Morph, "Number"))
}

func TestTagRegularVerbs(t *testing.T) {
	tests := []struct {
		form   string
		lemma  string
		person string
		number string
	}{
		{"hablamos", "hablar", "1", "Plur"},
		{"comen", "comer", "3", "Plur"},
		{"hablas", "hablar", "2", "Sing"},
	}
	for _, tt := range tests {
		t.Run(tt.form, func(t *testing.T) {
			tokens := tagSentence(t, "nosotros "+tt.form+" mucho")
			verb := tokens[1]
			assert.Equal(t, analysis.POSVerb, verb.POS)
			assert.Equal(t, tt.lemma, verb.Lemma)
			assert.Equal(t, tt.person, Feature(verb.Morph, "Person"))
			assert.Equal(t, tt.number, Feature(verb.Morph, "Number"))
		})
	}
}

func TestTagDoesNotMutateInput(t *testing.T) {
	res, err := normalizer.New().Normalize(context.Background(), "Yo tengo un libro.")
	require.NoError(t, err)
	before := make([]analysis.Token, len(res.Sentences[0].Tokens))
	copy(before, res.Sentences[0].Tokens)

	_, err = NewLexiconTagger().Tag(context.Background(), res.Sentences[0])
	require.NoError(t, err)
	assert.Equal(t, before, res.Sentences[0].Tokens)
}

func TestTagCancelledContext(t *testing.T) {
	res, err := normalizer.New().Normalize(context.Background(), "hola mundo")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLexiconTagger().Tag(ctx, res.Sentences[0])
	assert.Error(t, err)
}

func TestConjugate(t *testing.T) {
	tests := []struct {
		lemma  string
		person int
		number Number
		want   string
	}{
		{"tener", 1, NumberSingular, "tengo"},
		{"tener", 3, NumberPlural, "tienen"},
		{"ser", 3, NumberSingular, "es"},
		{"hablar", 1, NumberPlural, "hablamos"},
		{"comer", 3, NumberSingular, "come"},
		{"vivir", 2, NumberSingular, "vives"},
	}
	for _, tt := range tests {
		got, ok := Conjugate(tt.lemma, tt.person, tt.number)
		require.True(t, ok, tt.lemma)
		assert.Equal(t, tt.want, got)
	}

	_, ok := Conjugate("xy", 1, NumberSingular)
	assert.False(t, ok)
}

func TestFeature(t *testing.T) {
	assert.Equal(t, "1", Feature("Person=1|Number=Sing", "Person"))
	assert.Equal(t, "Sing", Feature("Person=1|Number=Sing", "Number"))
	assert.Equal(t, "", Feature("Person=1", "Gender"))
	assert.Equal(t, "", Feature("", "Person"))
}
