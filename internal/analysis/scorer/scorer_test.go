package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

func reconciled(cat analysis.IssueCategory, sev analysis.Severity) analysis.ReconciledIssue {
	return analysis.ReconciledIssue{Issue: analysis.Issue{
		Category: cat,
		Severity: sev,
		RuleID:   "R",
	}}
}

func TestScorePerfectSubmission(t *testing.T) {
	s := New(nil)
	assert.Equal(t, 100.0, s.Score(nil))
}

func TestScoreWeightedPenalties(t *testing.T) {
	s := New(nil)
	tests := []struct {
		name   string
		issues []analysis.ReconciledIssue
		want   float64
	}{
		{
			"one minor grammar issue",
			[]analysis.ReconciledIssue{reconciled(analysis.CategoryGrammar, analysis.SeverityMinor)},
			100 - 4*1.0,
		},
		{
			"critical spelling weighs more",
			[]analysis.ReconciledIssue{reconciled(analysis.CategorySpelling, analysis.SeverityCritical)},
			100 - 3*1.5,
		},
		{
			"style suggestion is cheap",
			[]analysis.ReconciledIssue{reconciled(analysis.CategoryStyle, analysis.SeveritySuggestion)},
			100 - 1*0.5,
		},
		{
			"penalties add up",
			[]analysis.ReconciledIssue{
				reconciled(analysis.CategoryGrammar, analysis.SeverityImportant),
				reconciled(analysis.CategorySpelling, analysis.SeverityImportant),
			},
			100 - 4*1.2 - 3*1.2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.issues), 1e-9)
		})
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	s := New(nil)
	many := make([]analysis.ReconciledIssue, 40)
	for i := range many {
		many[i] = reconciled(analysis.CategoryGrammar, analysis.SeverityCritical)
	}
	assert.Equal(t, 0.0, s.Score(many))
}

func TestScoreMonotonic(t *testing.T) {
	s := New(nil)
	issues := []analysis.ReconciledIssue{}
	prev := s.Score(issues)
	for i := 0; i < 30; i++ {
		cat := []analysis.IssueCategory{
			analysis.CategorySpelling, analysis.CategoryGrammar, analysis.CategoryStyle,
		}[i%3]
		sev := []analysis.Severity{
			analysis.SeverityCritical, analysis.SeverityImportant,
			analysis.SeverityMinor, analysis.SeveritySuggestion,
		}[i%4]
		issues = append(issues, reconciled(cat, sev))
		got := s.Score(issues)
		assert.LessOrEqual(t, got, prev, "adding an issue must never raise the score")
		prev = got
	}
}

func TestScoreConfiguredWeights(t *testing.T) {
	s := New(map[string]float64{"grammar": 10, "unknown": 99})
	got := s.Score([]analysis.ReconciledIssue{reconciled(analysis.CategoryGrammar, analysis.SeverityMinor)})
	assert.InDelta(t, 90.0, got, 1e-9)
}

func TestBuildRecord(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New(nil, WithClock(func() time.Time { return fixed }))

	result := &analysis.AnalysisResult{
		SubmissionID: "sub-1",
		Score:        88.5,
		Signals:      analysis.Signals{Fluency: 0.7, Sentiment: analysis.SentimentPositive},
		Issues: []analysis.ReconciledIssue{
			reconciled(analysis.CategoryGrammar, analysis.SeverityImportant),
			reconciled(analysis.CategoryGrammar, analysis.SeverityMinor),
			reconciled(analysis.CategorySpelling, analysis.SeverityCritical),
		},
	}
	rec := s.BuildRecord(result, "learner-7")

	require.Equal(t, "sub-1", rec.SubmissionID)
	assert.Equal(t, "learner-7", rec.LearnerID)
	assert.Equal(t, 88.5, rec.Score)
	assert.Equal(t, 2, rec.IssueCounts[analysis.CategoryGrammar])
	assert.Equal(t, 1, rec.IssueCounts[analysis.CategorySpelling])
	assert.Equal(t, 0.7, rec.Fluency)
	assert.Equal(t, analysis.SentimentPositive, rec.Sentiment)
	assert.Equal(t, fixed, rec.CreatedAt)
}
