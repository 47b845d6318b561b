package visuals

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"team-insights/internal/analytics"
)

// GenerateCompletionTrendChart creates a Mermaid xychart-beta bar chart of issues resolved per day.
func GenerateCompletionTrendChart(trend []analytics.TrendPoint) string {
	if len(trend) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0

	for _, p := range trend {
		labels = append(labels, fmt.Sprintf("\"%s\"", p.Date))
		values = append(values, fmt.Sprintf("%d", p.Count))
		if p.Count > maxVal {
			maxVal = p.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Completion Trend\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Issues Resolved\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateDistributionPie creates a Mermaid pie chart from a label -> count distribution.
// Slices are ordered by count (largest first), then label.
func GenerateDistributionPie(title string, dist map[string]int) string {
	if len(dist) == 0 {
		return ""
	}

	labels := make([]string, 0, len(dist))
	for k := range dist {
		labels = append(labels, k)
	}
	slices.SortFunc(labels, func(a, b string) int {
		if c := cmp.Compare(dist[b], dist[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("pie title %s\n", title))
	for _, label := range labels {
		sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", safeLabel(label), dist[label]))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateStoryPointsChart creates a bar chart of completed story points per team member,
// in the order given.
func GenerateStoryPointsChart(perf []analytics.TeamPerformanceData) string {
	if len(perf) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0

	for _, p := range perf {
		labels = append(labels, fmt.Sprintf("\"%s\"", safeLabel(memberName(p.User))))
		values = append(values, fmt.Sprintf("%.1f", p.StoryPointsCompleted))
		if p.StoryPointsCompleted > maxVal {
			maxVal = p.StoryPointsCompleted
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Story Points Completed\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Story Points\" 0 --> %d\n", int(math.Ceil(math.Max(1, maxVal*1.1)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// Mermaid labels break on embedded quotes.
func safeLabel(s string) string {
	if s == "" {
		return "(none)"
	}
	return strings.ReplaceAll(s, "\"", "'")
}

func memberName(u analytics.User) string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.EmailAddress != "":
		return u.EmailAddress
	}
	return "Unknown"
}
