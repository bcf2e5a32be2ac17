// Package rules detects spelling, grammar and style issues in tagged
// sentences. Each rule is independent: it inspects one sentence plus
// its morphology and emits zero or more candidate issues with spans
// into the normalized text. Rules never correct text, they only flag.
package rules

import (
	"context"

	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// SourceName identifies this analyzer in issue provenance and warnings.
const SourceName = "rules"

// Checker runs a rule set over one sentence. morph carries the tagged
// tokens from the morphological analyzer; it may be nil when tagging
// was degraded, in which case morphology-dependent rules are skipped.
type Checker interface {
	Check(ctx context.Context, sent analysis.Sentence, morph []analysis.Token) ([]analysis.Issue, error)
}

// rule is one independent check. Rules must be pure and must not
// retain references to the sentence.
type rule struct {
	id    string
	apply func(sent analysis.Sentence, morph []analysis.Token) []analysis.Issue
}

// RuleChecker evaluates a fixed, ordered rule set. The order only
// affects which rules still run when the deadline expires mid-sentence;
// issue output is reconciled downstream regardless of emission order.
type RuleChecker struct {
	rules          []rule
	maxSuggestions int
}

type Option func(*RuleChecker)

// WithMaxSuggestions caps the suggestions attached to each issue.
func WithMaxSuggestions(n int) Option {
	return func(c *RuleChecker) { c.maxSuggestions = n }
}

// NewRuleChecker builds the default Spanish rule set.
func NewRuleChecker(opts ...Option) *RuleChecker {
	c := &RuleChecker{maxSuggestions: 5}
	for _, opt := range opts {
		opt(c)
	}
	c.rules = []rule{
		{id: ruleSubjectVerbAgreement, apply: checkSubjectVerbAgreement},
		{id: ruleDeterminerNounAgreement, apply: checkDeterminerNounAgreement},
		{id: ruleMissingAccent, apply: checkMissingAccents},
		{id: ruleCommonMisspelling, apply: checkCommonMisspellings},
		{id: ruleChatAbbreviation, apply: checkChatAbbreviations},
		{id: ruleSpaceBeforePunct, apply: checkSpaceBeforePunctuation},
		{id: ruleDoubledPunct, apply: checkDoubledPunctuation},
		{id: ruleInvertedMarks, apply: checkInvertedMarks},
		{id: ruleSentenceCapitalization, apply: checkSentenceCapitalization},
		{id: ruleRepeatedWord, apply: checkRepeatedWords},
	}
	return c
}

// Check applies every rule to the sentence. When ctx expires mid-run
// the issues collected so far are returned together with a
// partially-checked error; the caller surfaces it as a warning and
// keeps the partial issues.
func (c *RuleChecker) Check(ctx context.Context, sent analysis.Sentence, morph []analysis.Token) ([]analysis.Issue, error) {
	var issues []analysis.Issue
	for _, r := range c.rules {
		if err := ctx.Err(); err != nil {
			return issues, errors.Wrap(err, errors.ErrCodePartiallyChecked,
				"rule evaluation stopped at "+r.id)
		}
		found := r.apply(sent, morph)
		for i := range found {
			found[i].Source = SourceName
			if len(found[i].Suggestions) > c.maxSuggestions {
				found[i].Suggestions = found[i].Suggestions[:c.maxSuggestions]
			}
		}
		issues = append(issues, found...)
	}
	return issues, nil
}

// Rule identifiers. Stable: they key reconciliation tie-breaks and
// appear in persisted score analytics.
const (
	ruleSubjectVerbAgreement    = "GRAM-001"
	ruleDeterminerNounAgreement = "GRAM-002"
	ruleMissingAccent           = "ACC-001"
	ruleCommonMisspelling       = "SPELL-001"
	ruleChatAbbreviation        = "SPELL-002"
	ruleSpaceBeforePunct        = "PUNCT-001"
	ruleDoubledPunct            = "PUNCT-002"
	ruleInvertedMarks           = "PUNCT-003"
	ruleSentenceCapitalization  = "STYLE-001"
	ruleRepeatedWord            = "STYLE-002"
)
