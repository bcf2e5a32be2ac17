// Package morphology assigns part-of-speech tags, lemmas, agreement
// features and a shallow dependency structure to tokenized sentences.
// Tagging is lexicon-driven with suffix heuristics as fallback, which
// keeps it deterministic and dependency-free at runtime.
package morphology

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// Tagger annotates the tokens of one sentence. Implementations must be
// safe for concurrent use and must not mutate the input sentence.
type Tagger interface {
	Tag(ctx context.Context, sent analysis.Sentence) ([]analysis.Token, error)
}

// LexiconTagger tags Spanish text using closed-class word lists, an
// irregular-verb table and suffix heuristics.
type LexiconTagger struct{}

func NewLexiconTagger() *LexiconTagger {
	return &LexiconTagger{}
}

// Tag returns a copy of the sentence tokens annotated with POS, lemma,
// morphological features, and dependency heads. The head structure is
// shallow: the finite verb (or, failing that, the first content word)
// is the root and other tokens attach to it or to a local head.
func (t *LexiconTagger) Tag(ctx context.Context, sent analysis.Sentence) ([]analysis.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAnalyzerUnavailable, "tagging aborted")
	}
	if len(sent.Tokens) == 0 {
		return nil, nil
	}

	tokens := make([]analysis.Token, len(sent.Tokens))
	copy(tokens, sent.Tokens)

	for i := range tokens {
		classify(&tokens[i])
	}
	attachHeads(tokens)
	return tokens, nil
}

func classify(tok *analysis.Token) {
	word := strings.ToLower(tok.Text)
	first, _ := utf8.DecodeRuneInString(tok.Text)

	switch {
	case !unicode.IsLetter(first) && !unicode.IsDigit(first):
		tok.POS = analysis.POSPunctuation
		tok.Lemma = tok.Text
		return
	case unicode.IsDigit(first):
		tok.POS = analysis.POSNumeral
		tok.Lemma = tok.Text
		return
	}

	if e, ok := subjectPronouns[word]; ok {
		tok.POS = analysis.POSPronoun
		tok.Lemma = word
		tok.Morph = featureString(e.person, e.number)
		return
	}
	if _, ok := otherPronouns[word]; ok {
		// "la", "los", "las" double as determiners; prefer DET so the
		// noun-phrase agreement checks see them.
		if e, isDet := determiners[word]; isDet {
			tok.POS = analysis.POSDeterminer
			tok.Lemma = word
			tok.Morph = genderNumberString(e.gender, e.number)
			return
		}
		tok.POS = analysis.POSPronoun
		tok.Lemma = word
		return
	}
	if e, ok := determiners[word]; ok {
		tok.POS = analysis.POSDeterminer
		tok.Lemma = word
		tok.Morph = genderNumberString(e.gender, e.number)
		return
	}
	if _, ok := prepositions[word]; ok {
		tok.POS = analysis.POSPreposition
		tok.Lemma = word
		return
	}
	if _, ok := conjunctions[word]; ok {
		tok.POS = analysis.POSConjunction
		tok.Lemma = word
		return
	}
	if _, ok := adverbs[word]; ok {
		tok.POS = analysis.POSAdverb
		tok.Lemma = word
		return
	}
	if _, ok := interjections[word]; ok {
		tok.POS = analysis.POSInterjection
		tok.Lemma = word
		return
	}
	if vf, ok := irregularVerbs[word]; ok {
		tok.POS = analysis.POSVerb
		tok.Lemma = vf.lemma
		tok.Morph = featureString(vf.person, vf.number)
		return
	}
	if lemma, number, ok := lookupNoun(word); ok {
		tok.POS = analysis.POSNoun
		tok.Lemma = lemma
		tok.Morph = genderNumberString(nounGender(lemma), number)
		return
	}
	if lemma, person, number, ok := regularVerb(word); ok {
		tok.POS = analysis.POSVerb
		tok.Lemma = lemma
		tok.Morph = featureString(person, number)
		return
	}
	classifyBySuffix(tok, word)
}

// lookupNoun resolves a surface form against the noun lexicon, trying
// the singular after stripping a plural ending.
func lookupNoun(word string) (lemma string, number Number, ok bool) {
	if _, ok := commonNouns[word]; ok {
		return word, NumberSingular, true
	}
	if strings.HasSuffix(word, "es") {
		if base := word[:len(word)-2]; len(base) > 0 {
			if _, ok := commonNouns[base]; ok {
				return base, NumberPlural, true
			}
		}
	}
	if strings.HasSuffix(word, "s") {
		if base := word[:len(word)-1]; len(base) > 0 {
			if _, ok := commonNouns[base]; ok {
				return base, NumberPlural, true
			}
		}
	}
	return "", "", false
}

// regularVerb recognizes regular present indicative conjugations and
// reconstructs the infinitive. Ambiguous short forms are skipped so
// frequent nouns do not get misread as verbs.
func regularVerb(word string) (lemma string, person int, number Number, ok bool) {
	type pattern struct {
		suffix string
		theme  string
		person int
		number Number
	}
	patterns := []pattern{
		{"amos", "ar", 1, NumberPlural},
		{"emos", "er", 1, NumberPlural},
		{"imos", "ir", 1, NumberPlural},
		{"áis", "ar", 2, NumberPlural},
		{"éis", "er", 2, NumberPlural},
		{"ís", "ir", 2, NumberPlural},
		{"an", "ar", 3, NumberPlural},
		{"en", "er", 3, NumberPlural},
		{"as", "ar", 2, NumberSingular},
		{"es", "er", 2, NumberSingular},
	}
	for _, p := range patterns {
		if strings.HasSuffix(word, p.suffix) {
			stem := word[:len(word)-len(p.suffix)]
			if len(stem) < 3 {
				continue
			}
			return stem + p.theme, p.person, p.number, true
		}
	}
	return "", 0, "", false
}

// classifyBySuffix is the open-class fallback when no lexicon entry
// matched.
func classifyBySuffix(tok *analysis.Token, word string) {
	switch {
	case strings.HasSuffix(word, "mente"):
		tok.POS = analysis.POSAdverb
		tok.Lemma = word
	case hasAnySuffix(word, "ar", "er", "ir") && len(word) > 3:
		tok.POS = analysis.POSVerb
		tok.Lemma = word // infinitive
		tok.Morph = "VerbForm=Inf"
	case hasAnySuffix(word, "ando", "iendo"):
		tok.POS = analysis.POSVerb
		tok.Lemma = gerundLemma(word)
		tok.Morph = "VerbForm=Ger"
	case hasAnySuffix(word, "oso", "osa", "osos", "osas", "able", "ables", "ible", "ibles",
		"ivo", "iva", "ivos", "ivas", "ado", "ada", "ados", "adas", "ido", "ida", "idos", "idas"):
		tok.POS = analysis.POSAdjective
		tok.Lemma = adjectiveLemma(word)
		tok.Morph = genderNumberString(wordGender(word), wordNumber(word))
	case hasAnySuffix(word, "ción", "sión", "dad", "tad", "tud", "umbre", "miento", "aje", "ciones", "siones", "dades", "mientos"):
		tok.POS = analysis.POSNoun
		tok.Lemma = singularLemma(word)
		tok.Morph = genderNumberString(nounGender(singularLemma(word)), wordNumber(word))
	default:
		// Unknown open-class words default to NOUN, the most common
		// class in learner text.
		tok.POS = analysis.POSNoun
		tok.Lemma = singularLemma(word)
		tok.Morph = genderNumberString(nounGender(singularLemma(word)), wordNumber(word))
	}
}

func gerundLemma(word string) string {
	if strings.HasSuffix(word, "ando") {
		return word[:len(word)-4] + "ar"
	}
	if strings.HasSuffix(word, "iendo") {
		return word[:len(word)-5] + "er"
	}
	return word
}

func adjectiveLemma(word string) string {
	w := singularLemma(word)
	if strings.HasSuffix(w, "a") && len(w) > 1 {
		return w[:len(w)-1] + "o"
	}
	return w
}

func singularLemma(word string) string {
	if strings.HasSuffix(word, "es") && len(word) > 4 {
		base := word[:len(word)-2]
		if !strings.HasSuffix(base, "a") && !strings.HasSuffix(base, "e") && !strings.HasSuffix(base, "o") {
			return base
		}
	}
	if strings.HasSuffix(word, "s") && len(word) > 3 {
		return word[:len(word)-1]
	}
	return word
}

func wordNumber(word string) Number {
	if strings.HasSuffix(word, "s") && len(word) > 3 {
		return NumberPlural
	}
	return NumberSingular
}

func wordGender(word string) Gender {
	w := singularLemma(word)
	if strings.HasSuffix(w, "a") {
		return GenderFem
	}
	return GenderMasc
}

// attachHeads builds the shallow dependency structure: the first finite
// verb is the root; pronoun and noun subjects before it attach as nsubj,
// determiners attach to the next noun, adjectives to the previous noun,
// everything else to the root.
func attachHeads(tokens []analysis.Token) {
	root := -1
	for i, tok := range tokens {
		if tok.POS == analysis.POSVerb && strings.Contains(tok.Morph, "Person=") {
			root = i
			break
		}
	}
	if root == -1 {
		for i, tok := range tokens {
			if tok.POS == analysis.POSVerb || tok.POS == analysis.POSNoun {
				root = i
				break
			}
		}
	}
	if root == -1 {
		root = 0
	}
	tokens[root].Head = analysis.NoHead
	tokens[root].DepRel = "root"

	for i := range tokens {
		if i == root {
			continue
		}
		switch tokens[i].POS {
		case analysis.POSDeterminer:
			if j := nextOfPOS(tokens, i+1, analysis.POSNoun); j != -1 {
				tokens[i].Head = j
				tokens[i].DepRel = "det"
				continue
			}
		case analysis.POSAdjective:
			if j := prevOfPOS(tokens, i-1, analysis.POSNoun); j != -1 {
				tokens[i].Head = j
				tokens[i].DepRel = "amod"
				continue
			}
		case analysis.POSPronoun, analysis.POSNoun:
			if i < root {
				tokens[i].Head = root
				tokens[i].DepRel = "nsubj"
				continue
			}
		case analysis.POSPunctuation:
			tokens[i].Head = root
			tokens[i].DepRel = "punct"
			continue
		}
		tokens[i].Head = root
		tokens[i].DepRel = "dep"
	}
}

func nextOfPOS(tokens []analysis.Token, from int, pos analysis.PartOfSpeech) int {
	for j := from; j < len(tokens); j++ {
		if tokens[j].POS == pos {
			return j
		}
	}
	return -1
}

func prevOfPOS(tokens []analysis.Token, from int, pos analysis.PartOfSpeech) int {
	for j := from; j >= 0; j-- {
		if tokens[j].POS == pos {
			return j
		}
	}
	return -1
}

func featureString(person int, number Number) string {
	return fmt.Sprintf("Person=%d|Number=%s", person, number)
}

func genderNumberString(gender Gender, number Number) string {
	if gender == "" {
		return fmt.Sprintf("Number=%s", number)
	}
	return fmt.Sprintf("Gender=%s|Number=%s", gender, number)
}

// Feature extracts the value of one key from a compact feature string
// like "Person=1|Number=Sing". Empty when absent.
func Feature(morph, key string) string {
	for _, kv := range strings.Split(morph, "|") {
		if k, v, found := strings.Cut(kv, "="); found && k == key {
			return v
		}
	}
	return ""
}
