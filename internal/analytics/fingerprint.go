package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Fingerprint identifies a report by the values a narrative depends on. Two reports with
// the same fingerprint produce the same prompt, so narratives can be reused.
func Fingerprint(r TeamAnalytics) string {
	users := make([]string, 0, len(r.UserPerformance))
	for _, u := range r.UserPerformance {
		users = append(users, fmt.Sprintf("%s:%s:%d:%g:%g", u.User.EmailAddress, u.User.DisplayName, u.IssuesCompleted, u.StoryPointsCompleted, u.AverageResolutionTime))
	}
	slices.Sort(users)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%g|%g|%d|%g|", r.TotalIssues, r.TotalStoryPoints, r.CompletedStoryPoints, r.CompletedIssues, r.AverageResolutionTime)
	writeCounts(&sb, r.IssuesByType)
	sb.WriteString("|")
	writeCounts(&sb, r.IssuesByStatus)
	sb.WriteString("|")
	sb.WriteString(strings.Join(users, ";"))
	sb.WriteString("|")
	for _, p := range r.CompletionTrend {
		fmt.Fprintf(&sb, "%s-%d,", p.Date, p.Count)
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func writeCounts(sb *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, "%s=%d,", k, counts[k])
	}
}
