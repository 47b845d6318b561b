package analytics

import (
	"math"
	"strings"
	"time"

	"team-insights/internal/jira"
)

const dayMillis = float64(24 * time.Hour / time.Millisecond)

// ResolutionDays returns the whole days between creation and resolution, rounded half
// away from zero. Unresolved issues count as 0. Resolutions recorded before creation
// yield negative values, which are passed through.
func ResolutionDays(issue jira.Issue) float64 {
	if issue.ResolutionDate == nil {
		return 0
	}
	diff := issue.ResolutionDate.Sub(issue.Created)
	return math.Round(float64(diff.Milliseconds()) / dayMillis)
}

// roundTenth rounds to one decimal place, half away from zero.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return roundTenth(sum / float64(n))
}

// isClosedStatus is the project-level completion rule.
func isClosedStatus(status string) bool {
	switch strings.ToLower(status) {
	case "closed", "done":
		return true
	}
	return false
}

// trendDate is the UTC calendar date of t.
func trendDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
