// Package analysis defines the data model shared by every stage of the
// text-analysis pipeline: spans, tokens, sentences, issues, reconciled
// results, and the score record handed to persistence.  No behavior beyond
// validation and ordering helpers lives here.
package analysis

import (
	"fmt"
	"time"
)

// Span is a half-open character range [Start, End) into the normalized text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate checks the Span invariant: Start < End, both within [0, textLen].
func (s Span) Validate(textLen int) error {
	if s.Start < 0 || s.End > textLen || s.Start >= s.End {
		return fmt.Errorf("span [%d,%d) out of bounds for text of length %d", s.Start, s.End, textLen)
	}
	return nil
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether two spans intersect by at least one character.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Union returns the smallest span covering both s and o.
func (s Span) Union(o Span) Span {
	u := s
	if o.Start < u.Start {
		u.Start = o.Start
	}
	if o.End > u.End {
		u.End = o.End
	}
	return u
}

// PartOfSpeech is a coarse universal POS tag.
type PartOfSpeech string

const (
	POSNoun         PartOfSpeech = "NOUN"
	POSVerb         PartOfSpeech = "VERB"
	POSAdjective    PartOfSpeech = "ADJ"
	POSAdverb       PartOfSpeech = "ADV"
	POSPronoun      PartOfSpeech = "PRON"
	POSDeterminer   PartOfSpeech = "DET"
	POSPreposition  PartOfSpeech = "ADP"
	POSConjunction  PartOfSpeech = "CONJ"
	POSInterjection PartOfSpeech = "INTJ"
	POSNumeral      PartOfSpeech = "NUM"
	POSPunctuation  PartOfSpeech = "PUNCT"
	POSUnknown      PartOfSpeech = "X"
)

// NoHead marks a token without a dependency head (the sentence root, or a
// token produced by a degraded tagger run).
const NoHead = -1

// Token is a single analyzed token.  Head is a back-reference by index into
// the owning Sentence's token slice, never an owning pointer; tokens of one
// sentence form an acyclic dependency tree keyed by index.
type Token struct {
	Text  string       `json:"text"`
	Span  Span         `json:"span"`
	Lemma string       `json:"lemma,omitempty"`
	POS   PartOfSpeech `json:"pos,omitempty"`
	// Head is the index of this token's dependency head within its sentence,
	// or NoHead for the root.
	Head   int    `json:"head"`
	DepRel string `json:"dep_rel,omitempty"`
	Morph  string `json:"morph,omitempty"` // compact feature string, e.g. "Number=Sing|Person=1"
}

// Sentence is an ordered token sequence plus its own span into the full
// normalized text.  It is owned by the analysis request that produced it.
type Sentence struct {
	Index  int     `json:"index"`
	Text   string  `json:"text"`
	Span   Span    `json:"span"`
	Tokens []Token `json:"tokens"`
}

// IssueCategory classifies a flagged problem.
type IssueCategory string

const (
	CategorySpelling IssueCategory = "spelling"
	CategoryGrammar  IssueCategory = "grammar"
	CategoryStyle    IssueCategory = "style"
)

// Priority returns the reconciliation tie-break rank of a category.
// Lower is stronger: spelling > grammar > style.
func (c IssueCategory) Priority() int {
	switch c {
	case CategorySpelling:
		return 0
	case CategoryGrammar:
		return 1
	case CategoryStyle:
		return 2
	default:
		return 3
	}
}

// Severity grades how disruptive an issue is for the learner.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityImportant  Severity = "important"
	SeverityMinor      Severity = "minor"
	SeveritySuggestion Severity = "suggestion"
)

// Factor returns the scoring multiplier applied to the category weight.
func (s Severity) Factor() float64 {
	switch s {
	case SeverityCritical:
		return 1.5
	case SeverityImportant:
		return 1.2
	case SeverityMinor:
		return 1.0
	case SeveritySuggestion:
		return 0.5
	default:
		return 1.0
	}
}

// Issue is a single flagged problem.  Issues are immutable once produced.
type Issue struct {
	Span        Span          `json:"span"`
	Category    IssueCategory `json:"category"`
	Severity    Severity      `json:"severity"`
	RuleID      string        `json:"rule_id"`
	Message     string        `json:"message"`
	Suggestions []string      `json:"suggestions,omitempty"`
	Confidence  float64       `json:"confidence"` // in [0,1]
	Source      string        `json:"source"`     // analyzer tag, e.g. "rules", "morphology"
}

// Validate checks the issue invariants against the normalized text length.
func (i Issue) Validate(textLen int) error {
	if err := i.Span.Validate(textLen); err != nil {
		return err
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("issue %s: confidence %.3f outside [0,1]", i.RuleID, i.Confidence)
	}
	if i.RuleID == "" {
		return fmt.Errorf("issue at [%d,%d): empty rule id", i.Span.Start, i.Span.End)
	}
	return nil
}

// ReconciledIssue is the representative of a cluster of overlapping Issues.
// Members carries the full cluster for audit; only the representative is
// surfaced to the learner.
type ReconciledIssue struct {
	Issue   `json:"issue"`
	Members []Issue `json:"members,omitempty"`
}

// SentimentLabel is the coarse polarity label of a submission.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Signals carries the advisory quality measurements of the heuristic scorer.
// They never produce Issues and never block reconciliation.
type Signals struct {
	Fluency    float64        `json:"fluency"` // in [0,1]
	Sentiment  SentimentLabel `json:"sentiment"`
	Difficulty string         `json:"difficulty,omitempty"` // readability band
}

// NeutralSignals is the graceful-degradation default when the heuristic
// scorer fails.
func NeutralSignals() Signals {
	return Signals{Fluency: 0.5, Sentiment: SentimentNeutral}
}

// TextStats are basic descriptive statistics of the normalized submission.
type TextStats struct {
	CharCount        int     `json:"char_count"`
	WordCount        int     `json:"word_count"`
	SentenceCount    int     `json:"sentence_count"`
	ParagraphCount   int     `json:"paragraph_count"`
	UniqueWords      int     `json:"unique_words"`
	LexicalDiversity float64 `json:"lexical_diversity"`
	AvgWordsPerSent  float64 `json:"avg_words_per_sentence"`
}

// Warning is a non-fatal condition surfaced on the AnalysisResult so the
// presentation layer can tell the learner that some checks were incomplete.
type Warning struct {
	Analyzer string `json:"analyzer"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// AnalysisResult is the per-submission aggregate returned by the analyze
// entry point.  Issues are ordered by span start, ties broken by descending
// confidence.
type AnalysisResult struct {
	SubmissionID string            `json:"submission_id"`
	Text         string            `json:"text"` // normalized text the spans index into
	Issues       []ReconciledIssue `json:"issues"`
	Signals      Signals           `json:"signals"`
	Stats        TextStats         `json:"stats"`
	Score        float64           `json:"score"`
	Warnings     []Warning         `json:"warnings,omitempty"`
	Elapsed      time.Duration     `json:"elapsed_ns"`
}

// IssueCountByCategory tallies surfaced issues per category.
func (r *AnalysisResult) IssueCountByCategory() map[IssueCategory]int {
	counts := make(map[IssueCategory]int, 3)
	for _, ri := range r.Issues {
		counts[ri.Category]++
	}
	return counts
}

// ScoreRecord is the persistence DTO emitted after scoring, handed to the
// score repository and the analytics topic.  The storage schema is owned
// outside this core.
type ScoreRecord struct {
	SubmissionID string                `json:"submission_id"`
	LearnerID    string                `json:"learner_id"`
	Score        float64               `json:"score"`
	IssueCounts  map[IssueCategory]int `json:"issue_counts"`
	Fluency      float64               `json:"fluency"`
	Sentiment    SentimentLabel        `json:"sentiment"`
	CreatedAt    time.Time             `json:"created_at"`
}
