package analytics

// User identifies a contributor. EmailAddress is the grouping key.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// TeamPerformanceData summarizes one assignee.
type TeamPerformanceData struct {
	User                  User           `json:"user"`
	IssuesCompleted       int            `json:"issuesCompleted"`
	StoryPointsCompleted  float64        `json:"storyPointsCompleted"`
	AverageResolutionTime float64        `json:"averageResolutionTime"` // days, one decimal
	IssuesByType          map[string]int `json:"issuesByType"`
}

// TrendPoint is the number of issues resolved on one UTC calendar day.
type TrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// TeamAnalytics is the report produced for one query.
type TeamAnalytics struct {
	TotalIssues           int                   `json:"totalIssues"`
	TotalStoryPoints      float64               `json:"totalStoryPoints"`
	CompletedStoryPoints  float64               `json:"completedStoryPoints"`
	CompletedIssues       int                   `json:"completedIssues"`
	AverageResolutionTime float64               `json:"averageResolutionTime"` // days, one decimal
	UserPerformance       []TeamPerformanceData `json:"userPerformance"`
	IssuesByType          map[string]int        `json:"issuesByType"`
	IssuesByStatus        map[string]int        `json:"issuesByStatus"`
	CompletionTrend       []TrendPoint          `json:"completionTrend"`
}
