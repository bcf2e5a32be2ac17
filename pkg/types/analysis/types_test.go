package analysis

import (
	"testing"
)

func TestSpanValidate(t *testing.T) {
	cases := []struct {
		name    string
		span    Span
		textLen int
		wantErr bool
	}{
		{"valid", Span{0, 5}, 10, false},
		{"valid full", Span{0, 10}, 10, false},
		{"empty", Span{3, 3}, 10, true},
		{"inverted", Span{5, 2}, 10, true},
		{"negative start", Span{-1, 3}, 10, true},
		{"past end", Span{8, 12}, 10, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.span.Validate(tc.textLen)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate(%d) = %v, wantErr=%v", tc.textLen, err, tc.wantErr)
			}
		})
	}
}

func TestSpanOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", Span{0, 3}, Span{5, 8}, false},
		{"touching is not overlap", Span{0, 3}, Span{3, 6}, false},
		{"one char shared", Span{0, 4}, Span{3, 6}, true},
		{"contained", Span{0, 10}, Span{2, 5}, true},
		{"identical", Span{2, 5}, Span{2, 5}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("%v.Overlaps(%v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("overlap must be symmetric: %v vs %v", tc.b, tc.a)
			}
		})
	}
}

func TestSpanUnion(t *testing.T) {
	u := Span{2, 5}.Union(Span{4, 9})
	if u.Start != 2 || u.End != 9 {
		t.Fatalf("Union = %v, want [2,9)", u)
	}
}

func TestCategoryPriority(t *testing.T) {
	if !(CategorySpelling.Priority() < CategoryGrammar.Priority() &&
		CategoryGrammar.Priority() < CategoryStyle.Priority()) {
		t.Fatal("category priority must be spelling > grammar > style")
	}
}

func TestIssueValidate(t *testing.T) {
	base := Issue{Span: Span{0, 4}, Category: CategoryGrammar, RuleID: "AGREEMENT", Confidence: 0.9}
	if err := base.Validate(10); err != nil {
		t.Fatalf("valid issue rejected: %v", err)
	}

	bad := base
	bad.Confidence = 1.2
	if err := bad.Validate(10); err == nil {
		t.Fatal("confidence > 1 must be rejected")
	}

	bad = base
	bad.RuleID = ""
	if err := bad.Validate(10); err == nil {
		t.Fatal("empty rule id must be rejected")
	}
}

func TestIssueCountByCategory(t *testing.T) {
	r := &AnalysisResult{Issues: []ReconciledIssue{
		{Issue: Issue{Category: CategoryGrammar}},
		{Issue: Issue{Category: CategoryGrammar}},
		{Issue: Issue{Category: CategorySpelling}},
	}}
	counts := r.IssueCountByCategory()
	if counts[CategoryGrammar] != 2 || counts[CategorySpelling] != 1 || counts[CategoryStyle] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
