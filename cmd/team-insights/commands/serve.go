package commands

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"team-insights/internal/digest"
	"team-insights/internal/server"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := server.Options{
			Dashboard: a.dashboard,
			Insights:  a.insights,
			Settings:  a.store,
			Release:   !verbose,
		}

		if cfg.DigestEnabled() {
			job, err := digest.NewJob(cfg.DigestCron, cfg.DigestProject, a.dashboard, a.narrate)
			if err != nil {
				return err
			}
			job.Start()
			defer job.Stop()
			opts.Digest = job
			log.Info().Str("schedule", cfg.DigestCron).Str("project", cfg.DigestProject).Msg("Digest job scheduled")
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}
		if serveOpen {
			go openBrowser(addr)
		}

		return server.New(opts).Run(ctx, addr)
	},
}

// openBrowser points the default browser at the health endpoint of addr.
func openBrowser(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("Cannot derive a URL to open")
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	url := "http://" + net.JoinHostPort(host, port) + "/health"
	if err := browser.OpenURL(url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR or :3001)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the API in the default browser")
	rootCmd.AddCommand(serveCmd)
}
