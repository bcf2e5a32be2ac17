// Package reconciler merges the candidate issues of all analyzers into
// the final issue list. Candidates below the confidence threshold are
// dropped, overlapping candidates are clustered, and each cluster is
// collapsed to one representative issue. The result is deterministic
// and independent of the order candidates arrive in.
package reconciler

import (
	"sort"

	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

type Reconciler struct {
	threshold float64
}

// New builds a Reconciler dropping candidates with confidence strictly
// below threshold.
func New(threshold float64) *Reconciler {
	return &Reconciler{threshold: threshold}
}

// Reconcile collapses candidates into representative issues. Two
// candidates belong to the same cluster when their spans overlap;
// clusters are closed transitively, so a wide span bridges narrower
// ones. The representative is the member with the highest confidence;
// ties fall to the stronger category (spelling over grammar over
// style), then to the lexically smallest rule id. Output is ordered by
// ascending span start.
func (r *Reconciler) Reconcile(candidates []analysis.Issue) []analysis.ReconciledIssue {
	kept := make([]analysis.Issue, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence >= r.threshold {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	// Canonical member order makes clustering and representative
	// selection independent of arrival order.
	sort.Slice(kept, func(i, j int) bool { return lessCanonical(kept[i], kept[j]) })

	var clusters [][]analysis.Issue
	var current []analysis.Issue
	currentEnd := -1
	for _, c := range kept {
		if len(current) > 0 && c.Span.Start < currentEnd {
			current = append(current, c)
			if c.Span.End > currentEnd {
				currentEnd = c.Span.End
			}
			continue
		}
		if len(current) > 0 {
			clusters = append(clusters, current)
		}
		current = []analysis.Issue{c}
		currentEnd = c.Span.End
	}
	clusters = append(clusters, current)

	out := make([]analysis.ReconciledIssue, 0, len(clusters))
	for _, cluster := range clusters {
		out = append(out, analysis.ReconciledIssue{
			Issue:   representative(cluster),
			Members: cluster,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Span.Start != out[j].Span.Start {
			return out[i].Span.Start < out[j].Span.Start
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

func representative(cluster []analysis.Issue) analysis.Issue {
	best := cluster[0]
	for _, c := range cluster[1:] {
		if betterRepresentative(c, best) {
			best = c
		}
	}
	return best
}

func betterRepresentative(a, b analysis.Issue) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if pa, pb := a.Category.Priority(), b.Category.Priority(); pa != pb {
		return pa < pb
	}
	return a.RuleID < b.RuleID
}

// lessCanonical is the total order used for cluster membership lists.
func lessCanonical(a, b analysis.Issue) bool {
	if a.Span.Start != b.Span.Start {
		return a.Span.Start < b.Span.Start
	}
	if a.Span.End != b.Span.End {
		return a.Span.End < b.Span.End
	}
	if a.RuleID != b.RuleID {
		return a.RuleID < b.RuleID
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Confidence > b.Confidence
}
