package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"team-insights/internal/analytics"
	"team-insights/internal/insights"
	"team-insights/internal/jira"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type fakeDashboard struct {
	report      *analytics.TeamAnalytics
	err         error
	lastProject string
	lastStart   string
	lastEnd     string
	lastSprint  int
}

func (f *fakeDashboard) Projects(ctx context.Context) ([]jira.Project, error) {
	return []jira.Project{{ID: "1", Key: "PROJ", Name: "Project"}}, f.err
}

func (f *fakeDashboard) Boards(ctx context.Context, key string) ([]jira.Board, error) {
	return []jira.Board{{ID: 7, Name: key + " board"}}, f.err
}

func (f *fakeDashboard) Sprints(ctx context.Context, boardID int) ([]jira.Sprint, error) {
	return []jira.Sprint{{ID: 11, Name: "Sprint 1", State: "active"}}, f.err
}

func (f *fakeDashboard) ProjectAnalytics(ctx context.Context, key, start, end string) (*analytics.TeamAnalytics, error) {
	f.lastProject, f.lastStart, f.lastEnd = key, start, end
	return f.report, f.err
}

func (f *fakeDashboard) SprintAnalytics(ctx context.Context, id int) (*analytics.TeamAnalytics, error) {
	f.lastSprint = id
	return f.report, f.err
}

func (f *fakeDashboard) InsightsConfig(ctx context.Context, request insights.Config) insights.Config {
	return insights.Config{Provider: insights.ProviderOpenAI, APIKey: "sk-test"}
}

type fakeNarrator struct {
	calls int
}

func (f *fakeNarrator) Generate(ctx context.Context, report *analytics.TeamAnalytics, cfg insights.Config) (string, error) {
	f.calls++
	return "## SPRINT STRENGTHS\n\n* **Delivery**: ok", nil
}

func sampleReport() *analytics.TeamAnalytics {
	return &analytics.TeamAnalytics{
		TotalIssues:          2,
		TotalStoryPoints:     5,
		CompletedIssues:      1,
		CompletedStoryPoints: 3,
		UserPerformance: []analytics.TeamPerformanceData{
			{User: analytics.User{DisplayName: "Ann", EmailAddress: "ann@x"}, IssuesCompleted: 1, StoryPointsCompleted: 3, IssuesByType: map[string]int{"Story": 1}},
		},
		IssuesByType:    map[string]int{"Story": 2},
		IssuesByStatus:  map[string]int{"Done": 1, "To Do": 1},
		CompletionTrend: []analytics.TrendPoint{{Date: "2024-01-03", Count: 1}},
	}
}

func connect(t *testing.T, s *Server) *gomcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := gomcp.NewInMemoryTransports()
	if _, err := s.mcp.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callText(t *testing.T, session *gomcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &gomcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool %s failed: %v", name, err)
	}
	if len(res.Content) == 0 {
		t.Fatalf("Expected content from %s", name)
	}
	text, ok := res.Content[0].(*gomcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	s := NewServer(&fakeDashboard{report: sampleReport()}, &fakeNarrator{}, Options{})
	session := connect(t, s)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	want := map[string]bool{
		"list_projects": false, "list_boards": false, "list_sprints": false,
		"analyze_project": false, "analyze_sprint": false, "generate_insights": false,
	}
	for _, tool := range res.Tools {
		if _, ok := want[tool.Name]; !ok {
			t.Errorf("Unexpected tool %s", tool.Name)
		}
		want[tool.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("Expected tool %s to be registered", name)
		}
	}
}

func TestAnalyzeProject(t *testing.T) {
	dash := &fakeDashboard{report: sampleReport()}
	session := connect(t, NewServer(dash, &fakeNarrator{}, Options{}))

	text, isErr := callText(t, session, "analyze_project", map[string]any{
		"project_key": "PROJ", "start_date": "2024-01-01", "end_date": "2024-01-31",
	})
	if isErr {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if dash.lastProject != "PROJ" || dash.lastStart != "2024-01-01" || dash.lastEnd != "2024-01-31" {
		t.Errorf("Expected arguments forwarded, got %q %q %q", dash.lastProject, dash.lastStart, dash.lastEnd)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("Expected JSON result, got %v", err)
	}
	var report analytics.TeamAnalytics
	if err := json.Unmarshal(out["analytics"], &report); err != nil {
		t.Fatalf("Expected analytics object, got %v", err)
	}
	if report.TotalIssues != 2 || report.CompletedStoryPoints != 3 {
		t.Errorf("Expected report totals preserved, got %+v", report)
	}
	if _, ok := out["_guidance"]; !ok {
		t.Error("Expected _guidance in result")
	}
	if _, ok := out["visual_completion_trend"]; ok {
		t.Error("Expected no charts when mermaid is disabled")
	}
}

func TestAnalyzeSprint_WithCharts(t *testing.T) {
	dash := &fakeDashboard{report: sampleReport()}
	session := connect(t, NewServer(dash, &fakeNarrator{}, Options{EnableMermaidCharts: true}))

	text, isErr := callText(t, session, "analyze_sprint", map[string]any{"sprint_id": 11})
	if isErr {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if dash.lastSprint != 11 {
		t.Errorf("Expected sprint 11, got %d", dash.lastSprint)
	}
	for _, key := range []string{"visual_completion_trend", "visual_issue_types", "visual_story_points"} {
		if !strings.Contains(text, key) {
			t.Errorf("Expected %s in result", key)
		}
	}
}

func TestToolErrors(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any
		dash *fakeDashboard
	}{
		{"bad date", "analyze_project", map[string]any{"project_key": "PROJ", "start_date": "01/02/2024"}, &fakeDashboard{}},
		{"missing key", "list_boards", map[string]any{"project_key": ""}, &fakeDashboard{}},
		{"bad sprint", "analyze_sprint", map[string]any{"sprint_id": 0}, &fakeDashboard{}},
		{"upstream", "list_projects", map[string]any{}, &fakeDashboard{err: errors.New("jira down")}},
		{"both targets", "generate_insights", map[string]any{"project_key": "PROJ", "sprint_id": 3}, &fakeDashboard{}},
		{"no target", "generate_insights", map[string]any{}, &fakeDashboard{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := connect(t, NewServer(tt.dash, &fakeNarrator{}, Options{}))
			if text, isErr := callText(t, session, tt.tool, tt.args); !isErr {
				t.Errorf("Expected tool error, got %s", text)
			}
		})
	}
}

func TestGenerateInsights(t *testing.T) {
	dash := &fakeDashboard{report: sampleReport()}
	narrator := &fakeNarrator{}
	session := connect(t, NewServer(dash, narrator, Options{}))

	text, isErr := callText(t, session, "generate_insights", map[string]any{"sprint_id": 5})
	if isErr {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if !strings.HasPrefix(text, "## SPRINT STRENGTHS") {
		t.Errorf("Expected markdown insights, got %q", text)
	}
	if narrator.calls != 1 || dash.lastSprint != 5 {
		t.Errorf("Expected one narration for sprint 5, got %d calls for sprint %d", narrator.calls, dash.lastSprint)
	}
}
