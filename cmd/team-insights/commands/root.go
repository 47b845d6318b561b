package commands

import (
	"team-insights/internal/config"
	"team-insights/internal/logging"
	"team-insights/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "team-insights",
	Short: "Team performance analytics for Jira",
	Long: `team-insights turns Jira issues into team performance analytics: completion, story points,
resolution times, per-member breakdowns and AI-written retrospectives.

Without a subcommand it runs as an MCP server on stdio.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("team-insights starting")
	},
	RunE: runMCP,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcp.NewServer(a.dashboard, a.insights, mcp.Options{
		Version:             Version,
		EnableMermaidCharts: cfg.EnableMermaidCharts,
	})
	return server.Serve(cmd.Context())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(mcpCmd)
}
