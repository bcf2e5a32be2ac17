package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// accentCorrections maps frequent unaccented spellings to the accented
// form. High-frequency beginner vocabulary; context-dependent pairs
// like tu/tú are deliberately absent.
var accentCorrections = map[string]string{
	"aqui":      "aquí",
	"asi":       "así",
	"tambien":   "también",
	"despues":   "después",
	"facil":     "fácil",
	"dificil":   "difícil",
	"rapido":    "rápido",
	"ultimo":    "último",
	"numero":    "número",
	"telefono":  "teléfono",
	"musica":    "música",
	"medico":    "médico",
	"proximo":   "próximo",
	"sabado":    "sábado",
	"miercoles": "miércoles",
	"adios":     "adiós",
	"dias":      "días",
	"ingles":    "inglés",
	"frances":   "francés",
	"cafe":      "café",
	"mama":      "mamá",
	"papa":      "papá",
	"esta":      "está",
	"estan":     "están",
	"corazon":   "corazón",
	"cancion":   "canción",
	"leccion":   "lección",
	"estacion":  "estación",
	"jovenes":   "jóvenes",
	"arbol":     "árbol",
	"lapiz":     "lápiz",
	"azucar":    "azúcar",
}

// ambiguousAccents are forms that are valid words on their own but are
// usually the accented homophone in learner text. Flagged at lower
// confidence than accentCorrections.
var ambiguousAccents = map[string]struct{}{
	"esta": {}, "estan": {}, "papa": {}, "mama": {},
}

// misspellingCorrections maps outright misspellings to the standard
// form.
var misspellingCorrections = map[string]string{
	"haiga":     "haya",
	"nesesito":  "necesito",
	"nesecito":  "necesito",
	"dise":      "dice",
	"ise":       "hice",
	"aser":      "hacer",
	"ablar":     "hablar",
	"escuchame": "escúchame",
	"vamonos":   "vámonos",
	"aver":      "a ver",
	"osea":      "o sea",
	"apesar":    "a pesar",
	"enserio":   "en serio",
	"sercano":   "cercano",
	"empesar":   "empezar",
	"entonses":  "entonces",
}

// chatAbbreviations maps texting shorthand to the full spelling.
var chatAbbreviations = map[string]string{
	"q":     "que",
	"k":     "que",
	"xq":    "porque",
	"pq":    "porque",
	"porq":  "porque",
	"tmb":   "también",
	"tb":    "también",
	"bn":    "bien",
	"dnd":   "dónde",
	"cmo":   "cómo",
	"salu2": "saludos",
	"finde": "fin de semana",
}

var (
	spaceBeforePunctRe = regexp.MustCompile(` +([,.;:!?…])`)
	doubledPunctRe     = regexp.MustCompile(`(,,+|;;+|::+|\?\?+|!!+)`)
	doubleDotRe        = regexp.MustCompile(`[^.](\.\.)[^.]|^(\.\.)[^.]|[^.](\.\.)$`)
)

// wordIssue flags one word token.
func wordIssue(tok analysis.Token, cat analysis.IssueCategory, sev analysis.Severity, ruleID, msg string, confidence float64, suggestions ...string) analysis.Issue {
	return analysis.Issue{
		Span:        tok.Span,
		Category:    cat,
		Severity:    sev,
		RuleID:      ruleID,
		Message:     msg,
		Suggestions: suggestions,
		Confidence:  confidence,
	}
}

// eachWord iterates the word tokens of a sentence, preferring the
// tagged tokens when morphology is available.
func eachWord(sent analysis.Sentence, morph []analysis.Token, fn func(i int, tok analysis.Token, lower string)) {
	tokens := sent.Tokens
	if len(morph) == len(sent.Tokens) {
		tokens = morph
	}
	for i, tok := range tokens {
		r, _ := utf8.DecodeRuneInString(tok.Text)
		if !unicode.IsLetter(r) {
			continue
		}
		fn(i, tok, strings.ToLower(tok.Text))
	}
}

func checkMissingAccents(sent analysis.Sentence, morph []analysis.Token) []analysis.Issue {
	var issues []analysis.Issue
	eachWord(sent, morph, func(i int, tok analysis.Token, lower string) {
		corrected, ok := accentCorrections[lower]
		if !ok {
			return
		}
		confidence := 0.85
		if _, ambiguous := ambiguousAccents[lower]; ambiguous {
			// "esta casa" is a valid determiner use; only the verb
			// reading lacks the tilde.
			if followedByNoun(morph, i) {
				return
			}
			confidence = 0.55
		}
		issues = append(issues, wordIssue(tok,
			analysis.CategorySpelling, analysis.SeverityImportant, ruleMissingAccent,
			fmt.Sprintf("a %q probablemente le falta la tilde", tok.Text),
			confidence, corrected))
	})
	return issues
}

func checkCommonMisspellings(sent analysis.Sentence, morph []analysis.Token) []analysis.Issue {
	var issues []analysis.Issue
	eachWord(sent, morph, func(_ int, tok analysis.Token, lower string) {
		corrected, ok := misspellingCorrections[lower]
		if !ok || corrected == lower {
			return
		}
		issues = append(issues, wordIssue(tok,
			analysis.CategorySpelling, analysis.SeverityCritical, ruleCommonMisspelling,
			fmt.Sprintf("%q no es la forma estándar", tok.Text),
			0.9, corrected))
	})
	return issues
}

func checkChatAbbreviations(sent analysis.Sentence, morph []analysis.Token) []analysis.Issue {
	var issues []analysis.Issue
	eachWord(sent, morph, func(_ int, tok analysis.Token, lower string) {
		full, ok := chatAbbreviations[lower]
		if !ok {
			return
		}
		issues = append(issues, wordIssue(tok,
			analysis.CategorySpelling, analysis.SeverityMinor, ruleChatAbbreviation,
			fmt.Sprintf("%q es una abreviatura de chat", tok.Text),
			0.75, full))
	})
	return issues
}

func checkSpaceBeforePunctuation(sent analysis.Sentence, _ []analysis.Token) []analysis.Issue {
	var issues []analysis.Issue
	for _, m := range spaceBeforePunctRe.FindAllStringSubmatchIndex(sent.Text, -1) {
		start, end := m[0], m[1]
		punct := sent.Text[m[2]:m[3]]
		issues = append(issues, analysis.Issue{
			Span:        analysis.Span{Start: sent.Span.Start + start, End: sent.Span.Start + end},
			Category:    analysis.CategoryStyle,
			Severity:    analysis.SeverityMinor,
			RuleID:      ruleSpaceBeforePunct,
			Message:     fmt.Sprintf("no se escribe espacio antes de %q", punct),
			Suggestions: []string{punct},
			Confidence:  0.95,
		})
	}
	return issues
}

func checkDoubledPunctuation(sent analysis.Sentence, _ []analysis.Token) []analysis.Issue {
	var issues []analysis.Issue
	add := func(start, end int) {
		run := sent.Text[start:end]
		issues = append(issues, analysis.Issue{
			Span:        analysis.Span{Start: sent.Span.Start + start, End: sent.Span.Start + end},
			Category:    analysis.CategoryStyle,
			Severity:    analysis.SeverityMinor,
			RuleID:      ruleDoubledPunct,
			Message:     fmt.Sprintf("signo de puntuación repetido %q", run),
			Suggestions: []string{run[:1]},
			Confidence:  0.9,
		})
	}
	for _, m := range doubledPunctRe.FindAllStringIndex(sent.Text, -1) {
		add(m[0], m[1])
	}
	// ".." is doubled, "..." is an ellipsis and legitimate.
	for _, m := range doubleDotRe.FindAllStringSubmatchIndex(sent.Text, -1) {
		for g := 1; g <= 3; g++ {
			if m[2*g] != -1 {
				add(m[2*g], m[2*g+1])
				break
			}
		}
	}
	return issues
}

// checkInvertedMarks flags questions and exclamations missing their
// opening mark.
func checkInvertedMarks(sent analysis.Sentence, _ []analysis.Token) []analysis.Issue {
	var issues []analysis.Issue
	pairs := []struct {
		closing rune
		opening rune
	}{
		{'?', '¿'},
		{'!', '¡'},
	}
	for _, p := range pairs {
		if !strings.ContainsRune(sent.Text, p.closing) || strings.ContainsRune(sent.Text, p.opening) {
			continue
		}
		issues = append(issues, analysis.Issue{
			Span:        analysis.Span{Start: sent.Span.Start, End: sent.Span.End},
			Category:    analysis.CategoryGrammar,
			Severity:    analysis.SeverityMinor,
			RuleID:      ruleInvertedMarks,
			Message:     fmt.Sprintf("falta el signo de apertura %q", p.opening),
			Suggestions: []string{string(p.opening) + sent.Text},
			Confidence:  0.8,
		})
	}
	return issues
}

func checkSentenceCapitalization(sent analysis.Sentence, _ []analysis.Token) []analysis.Issue {
	text := sent.Text
	// Skip opening inverted marks and quotes.
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '¿' || r == '¡' || r == '"' || r == '\'' || r == '«' {
			i += size
			continue
		}
		if !unicode.IsLetter(r) {
			return nil
		}
		if unicode.IsLower(r) {
			upper := string(unicode.ToUpper(r))
			return []analysis.Issue{{
				Span:        analysis.Span{Start: sent.Span.Start + i, End: sent.Span.Start + i + size},
				Category:    analysis.CategoryStyle,
				Severity:    analysis.SeveritySuggestion,
				RuleID:      ruleSentenceCapitalization,
				Message:     "la oración debería empezar con mayúscula",
				Suggestions: []string{upper},
				Confidence:  0.7,
			}}
		}
		return nil
	}
	return nil
}

func checkRepeatedWords(sent analysis.Sentence, morph []analysis.Token) []analysis.Issue {
	var issues []analysis.Issue
	var prev *analysis.Token
	var prevLower string
	eachWord(sent, morph, func(_ int, tok analysis.Token, lower string) {
		t := tok
		if prev != nil && lower == prevLower {
			issues = append(issues, analysis.Issue{
				Span:        prev.Span.Union(t.Span),
				Category:    analysis.CategoryStyle,
				Severity:    analysis.SeverityMinor,
				RuleID:      ruleRepeatedWord,
				Message:     fmt.Sprintf("palabra repetida %q", tok.Text),
				Suggestions: []string{tok.Text},
				Confidence:  0.85,
			})
		}
		prev = &t
		prevLower = lower
	})
	return issues
}
