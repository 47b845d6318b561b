package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type listBoardsArgs struct {
	ProjectKey string `json:"project_key" jsonschema:"The project key (e.g., PROJ)"`
}

type listSprintsArgs struct {
	BoardID int `json:"board_id" jsonschema:"The Agile board ID"`
}

type analyzeProjectArgs struct {
	ProjectKey string `json:"project_key" jsonschema:"The project key (e.g., PROJ)"`
	StartDate  string `json:"start_date,omitempty" jsonschema:"Optional: only issues created on or after this date (YYYY-MM-DD)"`
	EndDate    string `json:"end_date,omitempty" jsonschema:"Optional: only issues created on or before this date (YYYY-MM-DD)"`
}

type analyzeSprintArgs struct {
	SprintID int `json:"sprint_id" jsonschema:"The sprint ID"`
}

type generateInsightsArgs struct {
	ProjectKey string `json:"project_key,omitempty" jsonschema:"Project to analyze (use either project_key or sprint_id)"`
	SprintID   int    `json:"sprint_id,omitempty" jsonschema:"Sprint to analyze (use either project_key or sprint_id)"`
	StartDate  string `json:"start_date,omitempty" jsonschema:"Optional: created-on-or-after date for project analysis (YYYY-MM-DD)"`
	EndDate    string `json:"end_date,omitempty" jsonschema:"Optional: created-on-or-before date for project analysis (YYYY-MM-DD)"`
}

type noArgs struct{}

// schemaFor derives a tool input schema from an argument struct.
func schemaFor[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(err)
	}
	return schema
}

func (s *Server) registerTools() {
	gomcp.AddTool(s.mcp, &gomcp.Tool{
		Name:        "list_projects",
		Description: "List the Jira projects visible to the configured account. Guidance: call 'list_boards' next if you want sprint-level analysis, or 'analyze_project' directly.",
		InputSchema: schemaFor[noArgs](),
	}, s.handleListProjects)

	gomcp.AddTool(s.mcp, &gomcp.Tool{
		Name:        "list_boards",
		Description: "List the Agile boards of a project. Guidance: call 'list_sprints' with a board ID to find sprints.",
		InputSchema: schemaFor[listBoardsArgs](),
	}, s.handleListBoards)

	gomcp.AddTool(s.mcp, &gomcp.Tool{
		Name:        "list_sprints",
		Description: "List the sprints of a board, ordered future, active, then closed, newest first within each state.",
		InputSchema: schemaFor[listSprintsArgs](),
	}, s.handleListSprints)

	gomcp.AddTool(s.mcp, &gomcp.Tool{
		Name: "analyze_project",
		Description: "Compute team performance analytics for a project: totals, story points, completion, average resolution time, per-member performance, issue distributions and the daily completion trend. \n\n" +
			"NOTE: project-level completion counts issues whose status is Done or Closed, while per-member completion counts issues with a resolution date. The two can differ.",
		InputSchema: schemaFor[analyzeProjectArgs](),
	}, s.handleAnalyzeProject)

	gomcp.AddTool(s.mcp, &gomcp.Tool{
		Name:        "analyze_sprint",
		Description: "Compute team performance analytics for all issues of one sprint. Use 'list_sprints' to find sprint IDs.",
		InputSchema: schemaFor[analyzeSprintArgs](),
	}, s.handleAnalyzeSprint)

	gomcp.AddTool(s.mcp, &gomcp.Tool{
		Name:        "generate_insights",
		Description: "Generate a Scrum-master style retrospective (strengths, improvement opportunities, recommended actions) in markdown for a project or a sprint, using the configured AI provider.",
		InputSchema: schemaFor[generateInsightsArgs](),
	}, s.handleGenerateInsights)
}
