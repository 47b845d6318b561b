package visuals

import (
	"fmt"
	"strings"

	"team-insights/internal/analytics"
)

// ReportOptions controls RenderMarkdown.
type ReportOptions struct {
	Title     string
	SortField analytics.SortField
	SortDir   analytics.SortDirection
	Charts    bool
	// Insights is appended verbatim when set.
	Insights string
}

// GenerateTeamTable renders the per-member table in markdown.
func GenerateTeamTable(perf []analytics.TeamPerformanceData) string {
	if len(perf) == 0 {
		return "_No assigned work in this period._"
	}

	var sb strings.Builder
	sb.WriteString("| Team Member | Issues Completed | Story Points | Avg. Resolution (days) |\n")
	sb.WriteString("|---|---:|---:|---:|\n")
	for _, p := range perf {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %.1f |\n",
			escapeCell(memberName(p.User)), p.IssuesCompleted, formatPoints(p.StoryPointsCompleted), p.AverageResolutionTime))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderMarkdown renders a full report: summary, team table, optional charts and insights.
func RenderMarkdown(report analytics.TeamAnalytics, opts ReportOptions) string {
	title := opts.Title
	if title == "" {
		title = "Team Performance"
	}
	field := opts.SortField
	if field == "" {
		field = analytics.SortByStoryPointsCompleted
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("* **Total Issues**: %d\n", report.TotalIssues))
	sb.WriteString(fmt.Sprintf("* **Completed Issues**: %d\n", report.CompletedIssues))
	sb.WriteString(fmt.Sprintf("* **Story Points**: %s of %s completed\n", formatPoints(report.CompletedStoryPoints), formatPoints(report.TotalStoryPoints)))
	sb.WriteString(fmt.Sprintf("* **Average Resolution Time**: %.1f days\n\n", report.AverageResolutionTime))

	sb.WriteString("## Team\n\n")
	sb.WriteString(GenerateTeamTable(analytics.SortUsers(report.UserPerformance, field, opts.SortDir)))
	sb.WriteString("\n")

	if opts.Charts {
		for _, chart := range []string{
			GenerateCompletionTrendChart(report.CompletionTrend),
			GenerateDistributionPie("Issues by Type", report.IssuesByType),
			GenerateDistributionPie("Issues by Status", report.IssuesByStatus),
			GenerateStoryPointsChart(analytics.SortUsers(report.UserPerformance, analytics.SortByStoryPointsCompleted, analytics.Descending)),
		} {
			if chart != "" {
				sb.WriteString("\n")
				sb.WriteString(chart)
				sb.WriteString("\n")
			}
		}
	}

	if opts.Insights != "" {
		sb.WriteString("\n## AI Insights\n")
		sb.WriteString(opts.Insights)
		if !strings.HasSuffix(opts.Insights, "\n") {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func formatPoints(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
