package jira

import (
	"slices"
	"strings"
)

var sprintStateOrder = map[string]int{
	"future": 0,
	"active": 1,
	"closed": 2,
}

func sprintRank(state string) int {
	if r, ok := sprintStateOrder[strings.ToLower(state)]; ok {
		return r
	}
	return len(sprintStateOrder)
}

// SortSprints returns a copy ordered future, active, closed, then anything else.
// Within a state the most recent start date comes first, then the most recent end date,
// and finally the name.
func SortSprints(sprints []Sprint) []Sprint {
	out := slices.Clone(sprints)
	slices.SortStableFunc(out, func(a, b Sprint) int {
		if ra, rb := sprintRank(a.State), sprintRank(b.State); ra != rb {
			return ra - rb
		}
		if cmp, ok := compareDesc(a.StartDate, b.StartDate); ok {
			return cmp
		}
		if cmp, ok := compareDesc(a.EndDate, b.EndDate); ok {
			return cmp
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// compareDesc orders two Jira timestamps newest first. ok is false unless both parse.
func compareDesc(a, b string) (int, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	ta, errA := ParseTime(a)
	tb, errB := ParseTime(b)
	if errA != nil || errB != nil {
		return 0, false
	}
	return tb.Compare(ta), true
}
