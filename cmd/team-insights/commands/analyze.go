package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"team-insights/internal/analytics"
	"team-insights/internal/insights"
	"team-insights/internal/jira"
	"team-insights/internal/visuals"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	analyzeProject  string
	analyzeSprint   int
	analyzeInput    string
	analyzeStart    string
	analyzeEnd      string
	analyzeFormat   string
	analyzeSort     string
	analyzeInsights bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute team analytics for a project, a sprint or a saved search response",
	Example: `  team-insights analyze --project PROJ --start 2024-01-01 --end 2024-03-31
  team-insights analyze --sprint 42 --format markdown --insights
  team-insights analyze --input issues.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeFormat != "json" && analyzeFormat != "markdown" {
			return fmt.Errorf("unsupported format %q (want json or markdown)", analyzeFormat)
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var (
			report *analytics.TeamAnalytics
			title  string
		)
		switch {
		case analyzeInput != "":
			issues, err := readSearchResponse(analyzeInput)
			if err != nil {
				return err
			}
			r := a.dashboard.Analyze(issues)
			report, title = &r, "Team Performance: "+analyzeInput
		case analyzeSprint != 0:
			report, err = a.dashboard.SprintAnalytics(ctx, analyzeSprint)
			title = fmt.Sprintf("Team Performance: sprint %d", analyzeSprint)
		case analyzeProject != "":
			report, err = a.dashboard.ProjectAnalytics(ctx, analyzeProject, analyzeStart, analyzeEnd)
			title = "Team Performance: " + analyzeProject
		default:
			return fmt.Errorf("one of --project, --sprint or --input is required")
		}
		if err != nil {
			return err
		}

		var narrative string
		if analyzeInsights {
			narrative = narrate(ctx, a.insights, report, a.dashboard.InsightsConfig(ctx, insights.Config{}))
		}

		field := analytics.ParseSortField(analyzeSort)
		out := cmd.OutOrStdout()
		if analyzeFormat == "markdown" {
			_, err = fmt.Fprintln(out, visuals.RenderMarkdown(*report, visuals.ReportOptions{
				Title:     title,
				SortField: field,
				SortDir:   analytics.DefaultDirection(field),
				Charts:    cfg.EnableMermaidCharts,
				Insights:  narrative,
			}))
			return err
		}

		result := *report
		if analyzeSort != "" {
			result.UserPerformance = analytics.SortUsers(report.UserPerformance, field, "")
		}
		payload := map[string]interface{}{"analytics": result}
		if analyzeInsights {
			payload["insights"] = narrative
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	},
}

type narrator interface {
	Generate(ctx context.Context, report *analytics.TeamAnalytics, cfg insights.Config) (string, error)
}

// narrate returns the narrative, or the fallback markdown the generator produced
// alongside a logged error.
func narrate(ctx context.Context, n narrator, report *analytics.TeamAnalytics, aiCfg insights.Config) string {
	text, err := n.Generate(ctx, report, aiCfg)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to generate insights")
	}
	return text
}

// readSearchResponse loads a saved Jira search response, as written by mockgen or
// captured from /rest/api/2/search.
func readSearchResponse(path string) ([]jira.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var resp jira.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return jira.MapIssues(resp.Issues), nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", "", "project key")
	analyzeCmd.Flags().IntVar(&analyzeSprint, "sprint", 0, "sprint id")
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "analyze a saved search response instead of querying Jira")
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "created on or after (YYYY-MM-DD), with --project")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "created on or before (YYYY-MM-DD), with --project")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json or markdown")
	analyzeCmd.Flags().StringVar(&analyzeSort, "sort", "", "member sort: name, issuesCompleted, storyPointsCompleted, averageResolutionTime")
	analyzeCmd.Flags().BoolVar(&analyzeInsights, "insights", false, "append AI insights")
	analyzeCmd.MarkFlagsMutuallyExclusive("project", "sprint", "input")
	rootCmd.AddCommand(analyzeCmd)
}
