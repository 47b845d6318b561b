package analytics

import "team-insights/internal/jira"

// Story point fields used when no configuration is supplied.
// customfield_10016 is the Jira Cloud default; customfield_10058 is a common alternate.
var DefaultPointsFields = []string{"customfield_10016", "customfield_10058"}

// PointsExtractor reads a story-point estimate from an issue. ok is false when the
// issue carries no value for this source.
type PointsExtractor func(issue jira.Issue) (points float64, ok bool)

// FieldPoints reads the numeric estimate stored under a Jira field id.
func FieldPoints(fieldID string) PointsExtractor {
	return func(issue jira.Issue) (float64, bool) {
		v, ok := issue.Estimates[fieldID]
		return v, ok
	}
}

// FieldExtractors builds one FieldPoints strategy per field id, keeping order.
func FieldExtractors(fieldIDs []string) []PointsExtractor {
	out := make([]PointsExtractor, 0, len(fieldIDs))
	for _, id := range fieldIDs {
		out = append(out, FieldPoints(id))
	}
	return out
}

// storyPoints returns the first value any strategy yields, or 0.
func storyPoints(issue jira.Issue, extractors []PointsExtractor) float64 {
	for _, extract := range extractors {
		if v, ok := extract(issue); ok {
			return v
		}
	}
	return 0
}
