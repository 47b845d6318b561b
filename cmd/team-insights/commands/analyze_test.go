package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"team-insights/internal/analytics"
	"team-insights/internal/insights"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type failingNarrator struct{}

func (failingNarrator) Generate(context.Context, *analytics.TeamAnalytics, insights.Config) (string, error) {
	return insights.MissingDataMarkdown, errors.New("analytics data is required")
}

func TestNarrate_LogsError(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	got := narrate(context.Background(), failingNarrator{}, &analytics.TeamAnalytics{}, insights.Config{})
	if got != insights.MissingDataMarkdown {
		t.Errorf("Expected fallback markdown, got %q", got)
	}
	if !strings.Contains(buf.String(), "Failed to generate insights") || !strings.Contains(buf.String(), "analytics data is required") {
		t.Errorf("Expected the error to be logged, got %q", buf.String())
	}
}

func TestReadSearchResponse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.json")
	body := `{
  "startAt": 0, "maxResults": 2, "total": 2,
  "issues": [
    {"id": "1", "key": "PROJ-1", "fields": {
      "summary": "a", "issuetype": {"name": "Story"}, "status": {"name": "Done"},
      "assignee": {"displayName": "Ann", "emailAddress": "ann@x"},
      "created": "2024-01-01T00:00:00.000+0000", "resolutiondate": "2024-01-03T00:00:00.000+0000",
      "customfield_10016": 5}},
    {"id": "2", "key": "PROJ-2", "fields": {
      "summary": "b", "issuetype": {"name": "Bug"}, "status": {"name": "To Do"},
      "created": "2024-01-02T00:00:00.000+0000"}}
  ]
}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	issues, err := readSearchResponse(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(issues))
	}
	if issues[0].Estimates["customfield_10016"] != 5 {
		t.Errorf("Expected 5 story points, got %v", issues[0].Estimates)
	}
	if issues[0].ResolutionDate == nil || issues[1].ResolutionDate != nil {
		t.Error("Expected only the first issue to be resolved")
	}
}

func TestReadSearchResponse_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.json"), bad} {
		if _, err := readSearchResponse(path); err == nil {
			t.Errorf("Expected error for %s", path)
		}
	}
}
