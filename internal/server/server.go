package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"team-insights/internal/analytics"
	"team-insights/internal/digest"
	"team-insights/internal/insights"
	"team-insights/internal/jira"
	"team-insights/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "team-insights"

// Dashboard is the query side used by the handlers.
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

// DigestSource exposes the latest scheduled digest.
type DigestSource interface {
	Latest() (*digest.Digest, bool)
}

// Options wires the server's collaborators. Digest may be nil.
type Options struct {
	Dashboard Dashboard
	Insights  Narrator
	Settings  settings.Store
	Digest    DigestSource
	Release   bool
}

// Server is the HTTP API.
type Server struct {
	opts   Options
	engine *gin.Engine
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(requestID(), accessLog(), recovery())

	s := &Server{opts: opts, engine: r}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	api := s.engine.Group("/api")
	{
		api.GET("/settings", s.getSettings)
		api.POST("/settings", s.saveSettings)

		api.GET("/projects", s.listProjects)
		api.GET("/projects/:key/analytics", s.projectAnalytics)
		api.GET("/projects/:key/boards", s.listBoards)
		api.GET("/boards/:id/sprints", s.listSprints)
		api.GET("/sprints/:id/analytics", s.sprintAnalytics)

		api.POST("/generate-insights", s.generateInsights)
		api.GET("/digest", s.latestDigest)
	}
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
