package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"team-insights/internal/analytics"
	"team-insights/internal/cache"
	"team-insights/internal/insights"
	"team-insights/internal/jira"
	"team-insights/internal/settings"

	"github.com/rs/zerolog/log"
)

// ErrNotConfigured is returned when neither stored settings nor the environment
// provide Jira credentials.
var ErrNotConfigured = errors.New("Jira credentials are not configured. Add them in settings or set JIRA_URL, JIRA_EMAIL and JIRA_API_TOKEN")

// ClientFactory builds a Jira client for resolved credentials.
type ClientFactory func(cfg jira.Config, store cache.Cache) jira.Client

// Options configures a Service.
type Options struct {
	Jira        jira.Config
	AI          insights.Config
	Concurrency int
	Settings    settings.Store
	Cache       cache.Cache
	Analyzer    *analytics.Analyzer
	NewClient   ClientFactory
}

// Service answers dashboard queries: it resolves credentials, fetches issues from
// Jira and runs the analyzer.
type Service struct {
	base        jira.Config
	ai          insights.Config
	concurrency int
	settings    settings.Store
	cache       cache.Cache
	analyzer    *analytics.Analyzer
	newClient   ClientFactory

	mu         sync.Mutex
	client     jira.Client
	clientConf jira.Config
}

// NewService creates a dashboard service.
func NewService(opts Options) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Analyzer == nil {
		opts.Analyzer = analytics.NewAnalyzer()
	}
	if opts.NewClient == nil {
		opts.NewClient = jira.NewClient
	}
	return &Service{
		base:        opts.Jira,
		ai:          opts.AI,
		concurrency: opts.Concurrency,
		settings:    opts.Settings,
		cache:       opts.Cache,
		analyzer:    opts.Analyzer,
		newClient:   opts.NewClient,
	}
}

// Settings returns the backing settings store (may be nil).
func (s *Service) Settings() settings.Store { return s.settings }

// JiraConfig resolves the Jira connection: stored settings first, then the environment.
func (s *Service) JiraConfig(ctx context.Context) (jira.Config, error) {
	cfg := s.base
	if stored := s.loadSettings(ctx); stored != nil && stored.Jira != nil {
		cfg.BaseURL = stored.Jira.BaseURL
		cfg.Email = stored.Jira.Email
		cfg.APIToken = stored.Jira.APIToken
		cfg.Token = ""
	}
	if !cfg.Configured() {
		return cfg, ErrNotConfigured
	}
	return cfg, nil
}

// InsightsConfig resolves AI credentials. request (from an HTTP body or tool call) wins,
// then stored ai settings, then the legacy openai key, then the environment.
func (s *Service) InsightsConfig(ctx context.Context, request insights.Config) insights.Config {
	cfg := s.ai
	if stored := s.loadSettings(ctx); stored != nil {
		switch {
		case stored.AI != nil:
			cfg = cfg.Merge(insights.Config{Provider: stored.AI.Provider, APIKey: stored.AI.APIKey})
		case stored.OpenAI != nil:
			cfg = cfg.Merge(insights.Config{Provider: insights.ProviderOpenAI, APIKey: stored.OpenAI.APIKey})
		}
	}
	return cfg.Merge(request)
}

func (s *Service) loadSettings(ctx context.Context) *settings.Settings {
	if s.settings == nil {
		return nil
	}
	stored, err := s.settings.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load stored settings, using environment")
		return nil
	}
	return stored
}

// Client returns a Jira client for the current credentials, reusing the previous
// one while the credentials are unchanged.
func (s *Service) Client(ctx context.Context) (jira.Client, error) {
	cfg, err := s.JiraConfig(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil || !sameConfig(s.clientConf, cfg) {
		s.client = s.newClient(cfg, s.cache)
		s.clientConf = cfg
		log.Debug().Str("url", cfg.BaseURL).Msg("Created Jira client")
	}
	return s.client, nil
}

func sameConfig(a, b jira.Config) bool {
	return a.BaseURL == b.BaseURL && a.Email == b.Email && a.APIToken == b.APIToken &&
		a.Token == b.Token && strings.Join(a.EstimateFields, ",") == strings.Join(b.EstimateFields, ",")
}

// Projects lists the projects visible to the configured account.
func (s *Service) Projects(ctx context.Context) ([]jira.Project, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetProjects(ctx)
}

// Boards lists the Agile boards of a project.
func (s *Service) Boards(ctx context.Context, projectKey string) ([]jira.Board, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetBoards(ctx, projectKey)
}

// Sprints lists a board's sprints: future, active, then closed, newest first.
func (s *Service) Sprints(ctx context.Context, boardID int) ([]jira.Sprint, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	sprints, err := client.GetSprints(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return jira.SortSprints(sprints), nil
}

// ProjectIssues fetches every issue of a project created within the optional date range.
func (s *Service) ProjectIssues(ctx context.Context, projectKey, startDate, endDate string) ([]jira.Issue, error) {
	if strings.TrimSpace(projectKey) == "" {
		return nil, errors.New("project key is required")
	}
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}

	jql := jira.ProjectJQL(projectKey, startDate, endDate)
	log.Info().Str("project", projectKey).Str("jql", jql).Msg("Fetching project issues")

	return FetchAllIssues(ctx, s.concurrency, func(ctx context.Context, startAt, maxResults int) (*jira.SearchResponse, error) {
		return client.SearchIssues(ctx, jql, startAt, maxResults)
	})
}

// SprintIssues fetches every issue of a sprint.
func (s *Service) SprintIssues(ctx context.Context, sprintID int) ([]jira.Issue, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().Int("sprint", sprintID).Msg("Fetching sprint issues")
	return FetchAllIssues(ctx, s.concurrency, func(ctx context.Context, startAt, maxResults int) (*jira.SearchResponse, error) {
		return client.GetSprintIssues(ctx, sprintID, startAt, maxResults)
	})
}

// ProjectAnalytics builds the report for a project and optional created-date range.
func (s *Service) ProjectAnalytics(ctx context.Context, projectKey, startDate, endDate string) (*analytics.TeamAnalytics, error) {
	issues, err := s.ProjectIssues(ctx, projectKey, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues for %s: %w", projectKey, err)
	}
	report := s.analyzer.Analyze(issues)
	return &report, nil
}

// SprintAnalytics builds the report for one sprint.
func (s *Service) SprintAnalytics(ctx context.Context, sprintID int) (*analytics.TeamAnalytics, error) {
	issues, err := s.SprintIssues(ctx, sprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues for sprint %d: %w", sprintID, err)
	}
	report := s.analyzer.Analyze(issues)
	return &report, nil
}

// Analyze runs the configured analyzer over already-fetched issues.
func (s *Service) Analyze(issues []jira.Issue) analytics.TeamAnalytics {
	return s.analyzer.Analyze(issues)
}
