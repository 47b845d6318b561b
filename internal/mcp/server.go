package mcp

import (
	"context"

	"team-insights/internal/analytics"
	"team-insights/internal/insights"
	"team-insights/internal/jira"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Dashboard is the data source behind the tools.
type Dashboard interface {
	Projects(ctx context.Context) ([]jira.Project, error)
	Boards(ctx context.Context, projectKey string) ([]jira.Board, error)
	Sprints(ctx context.Context, boardID int) ([]jira.Sprint, error)
	ProjectAnalytics(ctx context.Context, projectKey, startDate, endDate string) (*analytics.TeamAnalytics, error)
	SprintAnalytics(ctx context.Context, sprintID int) (*analytics.TeamAnalytics, error)
	InsightsConfig(ctx context.Context, request insights.Config) insights.Config
}

// Narrator generates markdown insights for a report.
type Narrator interface {
	Generate(ctx context.Context, report *analytics.TeamAnalytics, cfg insights.Config) (string, error)
}

// Options configures the MCP server.
type Options struct {
	Version             string
	EnableMermaidCharts bool
}

// Server holds the state for the MCP server.
type Server struct {
	dash                Dashboard
	narrator            Narrator
	enableMermaidCharts bool
	mcp                 *gomcp.Server
}

// NewServer creates a new MCP server with every tool registered.
func NewServer(dash Dashboard, narrator Narrator, opts Options) *Server {
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		dash:                dash,
		narrator:            narrator,
		enableMermaidCharts: opts.EnableMermaidCharts,
		mcp:                 gomcp.NewServer(&gomcp.Implementation{Name: "team-insights", Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the protocol over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Msg("MCP Server starting Stdio loop")
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
