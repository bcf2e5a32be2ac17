package rules

import (
	"fmt"

	"github.com/kvalencee/alfaia/internal/nlp/morphology"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// followedByNoun reports whether the token after index i is a noun,
// which makes the current word likely a determiner use. An adjective
// after "esta" points at the verb reading instead ("está cansada").
func followedByNoun(morph []analysis.Token, i int) bool {
	return i+1 < len(morph) && morph[i+1].POS == analysis.POSNoun
}

// checkSubjectVerbAgreement compares the person and number of a subject
// pronoun with the finite verb it attaches to.
func checkSubjectVerbAgreement(_ analysis.Sentence, morph []analysis.Token) []analysis.Issue {
	if len(morph) == 0 {
		return nil
	}
	var issues []analysis.Issue
	for _, tok := range morph {
		if tok.POS != analysis.POSPronoun || tok.DepRel != "nsubj" {
			continue
		}
		person, number, ok := morphology.SubjectFeatures(tok.Lemma)
		if !ok {
			continue
		}
		head := tok.Head
		if head < 0 || head >= len(morph) {
			continue
		}
		verb := morph[head]
		if verb.POS != analysis.POSVerb {
			continue
		}
		vPerson := morphology.Feature(verb.Morph, "Person")
		vNumber := morphology.Feature(verb.Morph, "Number")
		if vPerson == "" || vNumber == "" {
			continue
		}
		if vPerson == fmt.Sprintf("%d", person) && vNumber == string(number) {
			continue
		}
		issue := analysis.Issue{
			Span:       tok.Span.Union(verb.Span),
			Category:   analysis.CategoryGrammar,
			Severity:   analysis.SeverityImportant,
			RuleID:     ruleSubjectVerbAgreement,
			Message:    fmt.Sprintf("el verbo %q no concuerda con el sujeto %q", verb.Text, tok.Text),
			Confidence: 0.9,
		}
		if form, ok := morphology.Conjugate(verb.Lemma, person, number); ok {
			issue.Suggestions = []string{form}
		}
		issues = append(issues, issue)
	}
	return issues
}

// checkDeterminerNounAgreement compares gender and number between a
// determiner and the noun it modifies.
func checkDeterminerNounAgreement(_ analysis.Sentence, morph []analysis.Token) []analysis.Issue {
	if len(morph) == 0 {
		return nil
	}
	var issues []analysis.Issue
	for _, tok := range morph {
		if tok.POS != analysis.POSDeterminer || tok.DepRel != "det" {
			continue
		}
		head := tok.Head
		if head < 0 || head >= len(morph) {
			continue
		}
		noun := morph[head]
		if noun.POS != analysis.POSNoun {
			continue
		}
		dGender := morphology.Feature(tok.Morph, "Gender")
		dNumber := morphology.Feature(tok.Morph, "Number")
		nGender := morphology.Feature(noun.Morph, "Gender")
		nNumber := morphology.Feature(noun.Morph, "Number")

		genderMismatch := dGender != "" && nGender != "" && dGender != nGender
		numberMismatch := dNumber != "" && nNumber != "" && dNumber != nNumber
		if !genderMismatch && !numberMismatch {
			continue
		}
		what := "género"
		if numberMismatch && !genderMismatch {
			what = "número"
		} else if numberMismatch && genderMismatch {
			what = "género y número"
		}
		issues = append(issues, analysis.Issue{
			Span:       tok.Span.Union(noun.Span),
			Category:   analysis.CategoryGrammar,
			Severity:   analysis.SeverityImportant,
			RuleID:     ruleDeterminerNounAgreement,
			Message:    fmt.Sprintf("el determinante %q no concuerda en %s con %q", tok.Text, what, noun.Text),
			Confidence: 0.8,
		})
	}
	return issues
}
