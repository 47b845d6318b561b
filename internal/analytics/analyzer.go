package analytics

import (
	"slices"
	"strings"

	"team-insights/internal/jira"
)

// Analyzer aggregates issues into a TeamAnalytics report.
// It holds only configuration and is safe for concurrent use.
type Analyzer struct {
	points []PointsExtractor
}

// NewAnalyzer creates an analyzer trying the given story-point strategies in order.
// With no strategies the DefaultPointsFields are used.
func NewAnalyzer(points ...PointsExtractor) *Analyzer {
	if len(points) == 0 {
		points = FieldExtractors(DefaultPointsFields)
	}
	return &Analyzer{points: points}
}

// NewFieldAnalyzer creates an analyzer reading story points from fieldIDs in order.
func NewFieldAnalyzer(fieldIDs []string) *Analyzer {
	return NewAnalyzer(FieldExtractors(fieldIDs)...)
}

// Analyze runs the default analyzer.
func Analyze(issues []jira.Issue) TeamAnalytics {
	return NewAnalyzer().Analyze(issues)
}

// StoryPoints returns the normalized estimate of an issue.
func (a *Analyzer) StoryPoints(issue jira.Issue) float64 {
	return storyPoints(issue, a.points)
}

// Analyze builds the report. It never fails: empty input yields a zero report.
//
// Note that "completed" means two different things here. At project level an issue is
// completed when its status is closed or done; per user it is completed when it has a
// resolution date. Both are kept deliberately.
func (a *Analyzer) Analyze(issues []jira.Issue) TeamAnalytics {
	report := TeamAnalytics{
		TotalIssues:    len(issues),
		IssuesByType:   make(map[string]int),
		IssuesByStatus: make(map[string]int),
	}

	// 1. Distributions
	for _, issue := range issues {
		report.IssuesByType[issue.IssueType]++
		report.IssuesByStatus[issue.Status]++
	}

	// 2. Total story points
	for _, issue := range issues {
		report.TotalStoryPoints += a.StoryPoints(issue)
	}

	// 3. Project-level completion
	var resolutionSum float64
	for _, issue := range issues {
		if !isClosedStatus(issue.Status) {
			continue
		}
		report.CompletedIssues++
		report.CompletedStoryPoints += a.StoryPoints(issue)
		resolutionSum += ResolutionDays(issue)
	}
	report.AverageResolutionTime = average(resolutionSum, report.CompletedIssues)

	// 4. Per-user performance
	report.UserPerformance = a.userPerformance(issues)

	// 5. Completion trend
	report.CompletionTrend = completionTrend(issues)

	return report
}

type userAccumulator struct {
	data          TeamPerformanceData
	resolutionSum float64
}

func (a *Analyzer) userPerformance(issues []jira.Issue) []TeamPerformanceData {
	byEmail := make(map[string]*userAccumulator)
	var order []string

	for _, issue := range issues {
		if issue.Assignee == nil {
			continue
		}
		email := issue.Assignee.EmailAddress

		acc, ok := byEmail[email]
		if !ok {
			acc = &userAccumulator{
				data: TeamPerformanceData{
					User: User{
						DisplayName:  issue.Assignee.DisplayName,
						EmailAddress: email,
					},
					IssuesByType: make(map[string]int),
				},
			}
			byEmail[email] = acc
			order = append(order, email)
		}

		acc.data.IssuesByType[issue.IssueType]++

		if issue.ResolutionDate != nil {
			acc.data.IssuesCompleted++
			acc.data.StoryPointsCompleted += a.StoryPoints(issue)
			acc.resolutionSum += ResolutionDays(issue)
		}
	}

	out := make([]TeamPerformanceData, 0, len(order))
	for _, email := range order {
		acc := byEmail[email]
		acc.data.AverageResolutionTime = average(acc.resolutionSum, acc.data.IssuesCompleted)
		out = append(out, acc.data)
	}
	return out
}

func completionTrend(issues []jira.Issue) []TrendPoint {
	counts := make(map[string]int)
	for _, issue := range issues {
		if issue.ResolutionDate == nil {
			continue
		}
		counts[trendDate(*issue.ResolutionDate)]++
	}

	trend := make([]TrendPoint, 0, len(counts))
	for date, count := range counts {
		trend = append(trend, TrendPoint{Date: date, Count: count})
	}
	slices.SortFunc(trend, func(x, y TrendPoint) int {
		return strings.Compare(x.Date, y.Date)
	})
	return trend
}
