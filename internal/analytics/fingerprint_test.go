package analytics

import (
	"testing"
	"time"

	"team-insights/internal/jira"
)

func TestFingerprint_StableAcrossUserOrder(t *testing.T) {
	a := []jira.Issue{
		{IssueType: "Bug", Status: "Done", Assignee: assignee("A", "a@x.com"), Created: base, ResolutionDate: ptr(base.Add(24 * time.Hour))},
		{IssueType: "Story", Status: "Open", Assignee: assignee("B", "b@x.com"), Created: base},
	}
	b := []jira.Issue{a[1], a[0]}

	fa := Fingerprint(Analyze(a))
	fb := Fingerprint(Analyze(b))
	if fa != fb {
		t.Errorf("Expected same fingerprint regardless of encounter order")
	}
	if len(fa) != 64 {
		t.Errorf("Expected hex sha256, got %q", fa)
	}
}

func TestFingerprint_ChangesWithData(t *testing.T) {
	issues := []jira.Issue{{IssueType: "Bug", Status: "Open", Created: base}}
	before := Fingerprint(Analyze(issues))

	issues[0].Status = "Done"
	after := Fingerprint(Analyze(issues))
	if before == after {
		t.Error("Expected fingerprint to change when the status distribution changes")
	}
}
