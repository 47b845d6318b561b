package jira

import (
	"fmt"
	"strings"
)

// BaseFields are requested on every issue search.
var BaseFields = []string{"summary", "status", "assignee", "issuetype", "created", "updated", "resolutiondate"}

// ProjectJQL builds the project query, optionally bounded by creation date (YYYY-MM-DD).
func ProjectJQL(projectKey, startDate, endDate string) string {
	jql := fmt.Sprintf("project = %s", projectKey)
	if startDate != "" {
		jql += fmt.Sprintf(" AND created >= %q", startDate)
	}
	if endDate != "" {
		jql += fmt.Sprintf(" AND created <= %q", endDate)
	}
	return jql
}

// SearchFields merges BaseFields with extra fields, dropping duplicates and blanks.
func SearchFields(extra []string) []string {
	seen := make(map[string]bool, len(BaseFields)+len(extra))
	fields := make([]string, 0, len(BaseFields)+len(extra))
	for _, f := range append(append([]string{}, BaseFields...), extra...) {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	return fields
}
