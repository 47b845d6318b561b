package analytics

import (
	"cmp"
	"slices"
	"strings"
)

// SortField selects the column used by SortUsers.
type SortField string

const (
	SortByName                  SortField = "name"
	SortByIssuesCompleted       SortField = "issuesCompleted"
	SortByStoryPointsCompleted  SortField = "storyPointsCompleted"
	SortByAverageResolutionTime SortField = "averageResolutionTime"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// DefaultDirection is ascending for names and descending for metrics.
func DefaultDirection(field SortField) SortDirection {
	if field == SortByName {
		return Ascending
	}
	return Descending
}

// ParseSortField maps a query value to a SortField. Unknown values fall back to story points.
func ParseSortField(s string) SortField {
	switch f := SortField(s); f {
	case SortByName, SortByIssuesCompleted, SortByStoryPointsCompleted, SortByAverageResolutionTime:
		return f
	}
	return SortByStoryPointsCompleted
}

// SortUsers returns a sorted copy of perf. The report itself keeps insertion order;
// ordering is a presentation concern. An empty direction uses DefaultDirection.
func SortUsers(perf []TeamPerformanceData, field SortField, dir SortDirection) []TeamPerformanceData {
	if dir == "" {
		dir = DefaultDirection(field)
	}

	out := slices.Clone(perf)
	slices.SortStableFunc(out, func(a, b TeamPerformanceData) int {
		var c int
		switch field {
		case SortByName:
			c = strings.Compare(a.User.DisplayName, b.User.DisplayName)
		case SortByIssuesCompleted:
			c = cmp.Compare(a.IssuesCompleted, b.IssuesCompleted)
		case SortByAverageResolutionTime:
			c = cmp.Compare(a.AverageResolutionTime, b.AverageResolutionTime)
		default:
			c = cmp.Compare(a.StoryPointsCompleted, b.StoryPointsCompleted)
		}
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}
