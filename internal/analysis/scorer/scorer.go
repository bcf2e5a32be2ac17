// Package scorer turns reconciled issues into the session score shown
// to the learner and builds the score record persisted for analytics.
package scorer

import (
	"time"

	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// DefaultWeights is the per-category penalty used when configuration
// does not override it.
var DefaultWeights = map[analysis.IssueCategory]float64{
	analysis.CategorySpelling: 3,
	analysis.CategoryGrammar:  4,
	analysis.CategoryStyle:    1,
}

type Scorer struct {
	weights map[analysis.IssueCategory]float64
	now     func() time.Time
}

type Option func(*Scorer)

// WithClock overrides the timestamp source for record building.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// New builds a Scorer from string-keyed configuration weights.
// Unknown categories are ignored; missing ones fall back to defaults.
func New(configWeights map[string]float64, opts ...Option) *Scorer {
	weights := make(map[analysis.IssueCategory]float64, len(DefaultWeights))
	for cat, w := range DefaultWeights {
		weights[cat] = w
	}
	for cat, w := range configWeights {
		c := analysis.IssueCategory(cat)
		if _, known := DefaultWeights[c]; known {
			weights[c] = w
		}
	}
	s := &Scorer{weights: weights, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes 100 minus the weighted severity penalty, clamped to
// [0, 100]. Each reconciled issue counts once regardless of how many
// cluster members it absorbed, so one mistake flagged by several rules
// is not penalized repeatedly. Adding an issue never raises the score.
func (s *Scorer) Score(issues []analysis.ReconciledIssue) float64 {
	penalty := 0.0
	for _, is := range issues {
		penalty += s.weights[is.Category] * is.Severity.Factor()
	}
	score := 100 - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// BuildRecord assembles the analytics record for a finished analysis.
func (s *Scorer) BuildRecord(result *analysis.AnalysisResult, learnerID string) analysis.ScoreRecord {
	return analysis.ScoreRecord{
		SubmissionID: result.SubmissionID,
		LearnerID:    learnerID,
		Score:        result.Score,
		IssueCounts:  result.IssueCountByCategory(),
		Fluency:      result.Signals.Fluency,
		Sentiment:    result.Signals.Sentiment,
		CreatedAt:    s.now().UTC(),
	}
}
