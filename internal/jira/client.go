package jira

import (
	"context"
	"time"

	"team-insights/internal/cache"
)

// User is the subset of a Jira account the dashboard reads.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	AccountID    string `json:"accountId,omitempty"`
}

// Issue is a normalized Jira issue. It is the input record of the analytics engine.
type Issue struct {
	ID             string
	Key            string
	ProjectKey     string
	Summary        string
	IssueType      string
	Status         string
	Assignee       *User
	Created        time.Time
	Updated        time.Time
	ResolutionDate *time.Time
	// Estimates holds non-null numeric estimate fields keyed by Jira field id.
	Estimates map[string]float64
}

// Project is an entry of the project list.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Board is an Agile board.
type Board struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Sprint is an Agile sprint. State is one of future, active, closed.
type Sprint struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Client is the interface for interacting with Jira.
type Client interface {
	SearchIssues(ctx context.Context, jql string, startAt, maxResults int) (*SearchResponse, error)
	GetProjects(ctx context.Context) ([]Project, error)
	GetBoards(ctx context.Context, projectKey string) ([]Board, error)
	GetSprints(ctx context.Context, boardID int) ([]Sprint, error)
	GetSprintIssues(ctx context.Context, sprintID, startAt, maxResults int) (*SearchResponse, error)
}

// Config holds the authentication and connection settings for Jira.
type Config struct {
	BaseURL string

	// Cloud credentials (Basic auth)
	Email    string
	APIToken string

	// Personal Access Token (Bearer), used when no email is set
	Token string

	// Extra fields requested on every search, in addition to the standard set
	EstimateFields []string

	// Performance Settings
	RequestDelay time.Duration
	CacheTTL     time.Duration
	Timeout      time.Duration
}

// Configured reports whether enough is set to talk to a Jira instance.
func (c Config) Configured() bool {
	if c.BaseURL == "" {
		return false
	}
	return (c.Email != "" && c.APIToken != "") || c.Token != ""
}

// NewClient creates a new Jira client based on the provided configuration.
// A nil store disables response caching.
func NewClient(cfg Config, store cache.Cache) Client {
	return NewCloudClient(cfg, store)
}
