package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"team-insights/internal/analytics"
	"team-insights/internal/insights"
	"team-insights/internal/visuals"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

func (s *Server) handleListProjects(ctx context.Context, _ *gomcp.CallToolRequest, _ noArgs) (*gomcp.CallToolResult, any, error) {
	projects, err := s.dash.Projects(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.textResult(map[string]interface{}{
		"projects": projects,
		"_guidance": []string{
			"Use a project key with 'analyze_project' for project-wide analytics.",
			"Use 'list_boards' to drill down into sprints.",
		},
	})
}

func (s *Server) handleListBoards(ctx context.Context, _ *gomcp.CallToolRequest, args listBoardsArgs) (*gomcp.CallToolResult, any, error) {
	if args.ProjectKey == "" {
		return nil, nil, fmt.Errorf("project_key is required")
	}
	boards, err := s.dash.Boards(ctx, args.ProjectKey)
	if err != nil {
		return nil, nil, err
	}
	return s.textResult(map[string]interface{}{
		"project_key": args.ProjectKey,
		"boards":      boards,
	})
}

func (s *Server) handleListSprints(ctx context.Context, _ *gomcp.CallToolRequest, args listSprintsArgs) (*gomcp.CallToolResult, any, error) {
	if args.BoardID <= 0 {
		return nil, nil, fmt.Errorf("board_id must be a positive integer")
	}
	sprints, err := s.dash.Sprints(ctx, args.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return s.textResult(map[string]interface{}{
		"board_id": args.BoardID,
		"sprints":  sprints,
		"_guidance": []string{
			"Sprints are ordered future, active, then closed, newest first within each state.",
		},
	})
}

func (s *Server) handleAnalyzeProject(ctx context.Context, _ *gomcp.CallToolRequest, args analyzeProjectArgs) (*gomcp.CallToolResult, any, error) {
	if args.ProjectKey == "" {
		return nil, nil, fmt.Errorf("project_key is required")
	}
	if err := validateDates(args.StartDate, args.EndDate); err != nil {
		return nil, nil, err
	}

	report, err := s.dash.ProjectAnalytics(ctx, args.ProjectKey, args.StartDate, args.EndDate)
	if err != nil {
		return nil, nil, err
	}
	res := s.reportResult(report)
	res["project_key"] = args.ProjectKey
	return s.textResult(res)
}

func (s *Server) handleAnalyzeSprint(ctx context.Context, _ *gomcp.CallToolRequest, args analyzeSprintArgs) (*gomcp.CallToolResult, any, error) {
	if args.SprintID <= 0 {
		return nil, nil, fmt.Errorf("sprint_id must be a positive integer")
	}
	report, err := s.dash.SprintAnalytics(ctx, args.SprintID)
	if err != nil {
		return nil, nil, err
	}
	res := s.reportResult(report)
	res["sprint_id"] = args.SprintID
	return s.textResult(res)
}

func (s *Server) handleGenerateInsights(ctx context.Context, _ *gomcp.CallToolRequest, args generateInsightsArgs) (*gomcp.CallToolResult, any, error) {
	var (
		report *analytics.TeamAnalytics
		err    error
	)
	switch {
	case args.ProjectKey != "" && args.SprintID != 0:
		return nil, nil, fmt.Errorf("use either project_key or sprint_id, not both")
	case args.SprintID != 0:
		report, err = s.dash.SprintAnalytics(ctx, args.SprintID)
	case args.ProjectKey != "":
		if err := validateDates(args.StartDate, args.EndDate); err != nil {
			return nil, nil, err
		}
		report, err = s.dash.ProjectAnalytics(ctx, args.ProjectKey, args.StartDate, args.EndDate)
	default:
		return nil, nil, fmt.Errorf("project_key or sprint_id is required")
	}
	if err != nil {
		return nil, nil, err
	}

	cfg := s.dash.InsightsConfig(ctx, insights.Config{})
	text, err := s.narrator.Generate(ctx, report, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("provider", cfg.Provider).Int("issues", report.TotalIssues).Msg("Generated insights via MCP")

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}, nil, nil
}

// reportResult wraps a report with guidance and, when enabled, mermaid charts.
func (s *Server) reportResult(report *analytics.TeamAnalytics) map[string]interface{} {
	guidance := []string{
		"'completedIssues' counts issues in a Done or Closed status; per-member 'issuesCompleted' counts issues with a resolution date.",
		"Average resolution times are in days, rounded to one decimal, over resolved issues only.",
	}
	if report.TotalIssues == 0 {
		guidance = append(guidance, "No issues matched. Check the project key, sprint ID or date range.")
	}
	if report.TotalStoryPoints == 0 && report.TotalIssues > 0 {
		guidance = append(guidance, "No story points were found. The instance may use a different estimate field; configure STORY_POINT_FIELDS.")
	}

	res := map[string]interface{}{
		"analytics": report,
		"_guidance": guidance,
	}
	if s.enableMermaidCharts {
		res["visual_completion_trend"] = visuals.GenerateCompletionTrendChart(report.CompletionTrend)
		res["visual_issue_types"] = visuals.GenerateDistributionPie("Issues by Type", report.IssuesByType)
		res["visual_story_points"] = visuals.GenerateStoryPointsChart(report.UserPerformance)
	}
	return res
}

func (s *Server) textResult(data interface{}) (*gomcp.CallToolResult, any, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: string(out)}},
	}, nil, nil
}

func validateDates(dates ...string) error {
	for _, d := range dates {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", d)
		}
	}
	return nil
}
