package jira

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

// MapIssue transforms a Jira DTO into a domain Issue.
// Unparseable timestamps are dropped: created stays zero, a bad resolution date counts as unresolved.
func MapIssue(item IssueDTO) Issue {
	issue := Issue{
		ID:        item.ID,
		Key:       item.Key,
		Summary:   item.Fields.Summary,
		IssueType: item.Fields.IssueType.Name,
		Status:    item.Fields.Status.Name,
		Estimates: make(map[string]float64),
	}

	if idx := strings.IndexByte(issue.Key, '-'); idx > 0 {
		issue.ProjectKey = issue.Key[:idx]
	}

	if a := item.Fields.Assignee; a != nil {
		assignee := *a
		issue.Assignee = &assignee
	}

	if t, err := ParseTime(item.Fields.Created); err == nil {
		issue.Created = t
	} else {
		log.Debug().Str("key", item.Key).Str("created", item.Fields.Created).Msg("Unparseable created timestamp")
	}

	if t, err := ParseTime(item.Fields.Updated); err == nil {
		issue.Updated = t
	}

	if item.Fields.ResolutionDate != "" {
		if t, err := ParseTime(item.Fields.ResolutionDate); err == nil {
			issue.ResolutionDate = &t
		} else {
			log.Debug().Str("key", item.Key).Str("resolutiondate", item.Fields.ResolutionDate).Msg("Unparseable resolution timestamp")
		}
	}

	for id, raw := range item.Fields.Custom {
		if v, ok := decodeNumber(raw); ok {
			issue.Estimates[id] = v
		}
	}

	return issue
}

// MapIssues maps a page of DTOs, preserving order.
func MapIssues(items []IssueDTO) []Issue {
	out := make([]Issue, 0, len(items))
	for _, item := range items {
		out = append(out, MapIssue(item))
	}
	return out
}

// decodeNumber reads a numeric custom field. null and non-numeric values are skipped.
func decodeNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}
