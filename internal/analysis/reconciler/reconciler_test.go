package reconciler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

func issue(start, end int, cat analysis.IssueCategory, ruleID string, confidence float64) analysis.Issue {
	return analysis.Issue{
		Span:       analysis.Span{Start: start, End: end},
		Category:   cat,
		Severity:   analysis.SeverityMinor,
		RuleID:     ruleID,
		Confidence: confidence,
		Source:     "rules",
	}
}

func TestReconcileFiltersLowConfidence(t *testing.T) {
	r := New(0.4)
	out := r.Reconcile([]analysis.Issue{
		issue(0, 4, analysis.CategorySpelling, "A", 0.39),
		issue(10, 14, analysis.CategoryGrammar, "B", 0.4),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].RuleID, "exactly at the threshold is kept")
}

func TestReconcileClustersOverlaps(t *testing.T) {
	r := New(0.0)
	out := r.Reconcile([]analysis.Issue{
		issue(0, 5, analysis.CategoryGrammar, "A", 0.5),
		issue(3, 8, analysis.CategorySpelling, "B", 0.7),
		issue(20, 25, analysis.CategoryStyle, "C", 0.6),
	})
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].RuleID)
	assert.Len(t, out[0].Members, 2)
	assert.Equal(t, "C", out[1].RuleID)
	assert.Len(t, out[1].Members, 1)
}

func TestReconcileTransitiveClustering(t *testing.T) {
	// A and C do not overlap each other, but the wide B bridges them.
	r := New(0.0)
	out := r.Reconcile([]analysis.Issue{
		issue(0, 3, analysis.CategoryStyle, "A", 0.5),
		issue(0, 20, analysis.CategoryGrammar, "B", 0.6),
		issue(10, 15, analysis.CategoryStyle, "C", 0.5),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].RuleID)
	assert.Len(t, out[0].Members, 3)
}

func TestReconcileAdjacentSpansDoNotCluster(t *testing.T) {
	// Half-open spans: [0,5) and [5,10) touch but do not overlap.
	r := New(0.0)
	out := r.Reconcile([]analysis.Issue{
		issue(0, 5, analysis.CategoryStyle, "A", 0.5),
		issue(5, 10, analysis.CategoryStyle, "B", 0.5),
	})
	assert.Len(t, out, 2)
}

func TestRepresentativeTieBreaks(t *testing.T) {
	t.Run("confidence wins", func(t *testing.T) {
		out := New(0.0).Reconcile([]analysis.Issue{
			issue(0, 5, analysis.CategorySpelling, "A", 0.5),
			issue(0, 5, analysis.CategoryStyle, "B", 0.9),
		})
		require.Len(t, out, 1)
		assert.Equal(t, "B", out[0].RuleID)
	})
	t.Run("category breaks confidence tie", func(t *testing.T) {
		out := New(0.0).Reconcile([]analysis.Issue{
			issue(0, 5, analysis.CategoryStyle, "A", 0.8),
			issue(0, 5, analysis.CategoryGrammar, "B", 0.8),
			issue(0, 5, analysis.CategorySpelling, "C", 0.8),
		})
		require.Len(t, out, 1)
		assert.Equal(t, "C", out[0].RuleID, "spelling outranks grammar and style")
	})
	t.Run("rule id breaks full tie", func(t *testing.T) {
		out := New(0.0).Reconcile([]analysis.Issue{
			issue(0, 5, analysis.CategoryGrammar, "B", 0.8),
			issue(0, 5, analysis.CategoryGrammar, "A", 0.8),
		})
		require.Len(t, out, 1)
		assert.Equal(t, "A", out[0].RuleID)
	})
}

func TestReconcileOrderedBySpanStart(t *testing.T) {
	out := New(0.0).Reconcile([]analysis.Issue{
		issue(30, 35, analysis.CategoryStyle, "C", 0.5),
		issue(0, 5, analysis.CategoryStyle, "A", 0.5),
		issue(10, 15, analysis.CategoryStyle, "B", 0.5),
	})
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.Less(t, out[i-1].Span.Start, out[i].Span.Start)
	}
}

func TestReconcilePermutationInvariant(t *testing.T) {
	base := []analysis.Issue{
		issue(0, 5, analysis.CategoryGrammar, "GRAM-001", 0.9),
		issue(3, 8, analysis.CategorySpelling, "ACC-001", 0.85),
		issue(3, 8, analysis.CategorySpelling, "SPELL-001", 0.85),
		issue(12, 20, analysis.CategoryStyle, "STYLE-001", 0.7),
		issue(18, 25, analysis.CategoryStyle, "STYLE-002", 0.45),
		issue(40, 42, analysis.CategorySpelling, "ACC-001", 0.3),
	}
	r := New(0.4)
	want := r.Reconcile(append([]analysis.Issue(nil), base...))

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		shuffled := append([]analysis.Issue(nil), base...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := r.Reconcile(shuffled)
		assert.Equal(t, want, got)
	}
}

func TestReconcileEmpty(t *testing.T) {
	assert.Nil(t, New(0.4).Reconcile(nil))
	assert.Nil(t, New(0.4).Reconcile([]analysis.Issue{
		issue(0, 5, analysis.CategoryStyle, "A", 0.1),
	}))
}
