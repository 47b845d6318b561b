package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"team-insights/internal/analytics"
	"team-insights/internal/visuals"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultWindow is the look-back period of a digest.
	DefaultWindow = 14 * 24 * time.Hour
	runTimeout    = 5 * time.Minute
)

// Source produces a project report for a created-date range.
type Source interface {
	ProjectAnalytics(ctx context.Context, projectKey, startDate, endDate string) (*analytics.TeamAnalytics, error)
}

// NarrateFunc optionally adds an AI narrative to a digest.
type NarrateFunc func(ctx context.Context, report *analytics.TeamAnalytics) (string, error)

// Digest is the outcome of one scheduled run.
type Digest struct {
	Project     string                  `json:"project"`
	StartDate   string                  `json:"startDate"`
	EndDate     string                  `json:"endDate"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Report      analytics.TeamAnalytics `json:"report"`
	Insights    string                  `json:"insights,omitempty"`
	Markdown    string                  `json:"markdown"`
}

// Job periodically builds a digest for one project and keeps the latest.
type Job struct {
	project string
	window  time.Duration
	source  Source
	narrate NarrateFunc
	now     func() time.Time
	cron    *cron.Cron

	mu     sync.RWMutex
	latest *Digest
}

// NewJob schedules a digest with a standard five-field cron spec. narrate may be nil.
func NewJob(spec, project string, source Source, narrate NarrateFunc) (*Job, error) {
	j := &Job{
		project: project,
		window:  DefaultWindow,
		source:  source,
		narrate: narrate,
		now:     time.Now,
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
	}
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return j, nil
}

// Start begins the schedule in the background.
func (j *Job) Start() {
	log.Info().Str("project", j.project).Msg("Digest schedule started")
	j.cron.Start()
}

// Stop halts the schedule and waits for a running digest to finish.
func (j *Job) Stop() {
	<-j.cron.Stop().Done()
}

// Latest returns the most recent digest, if any run has succeeded.
func (j *Job) Latest() (*Digest, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest, j.latest != nil
}

func (j *Job) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if _, err := j.RunOnce(ctx); err != nil {
		log.Error().Err(err).Str("project", j.project).Msg("Digest run failed")
	}
}

// RunOnce builds a digest now and stores it as the latest.
func (j *Job) RunOnce(ctx context.Context) (*Digest, error) {
	end := j.now().UTC()
	start := end.Add(-j.window)
	startDate, endDate := start.Format(time.DateOnly), end.Format(time.DateOnly)

	report, err := j.source.ProjectAnalytics(ctx, j.project, startDate, endDate)
	if err != nil {
		return nil, err
	}

	d := &Digest{
		Project:     j.project,
		StartDate:   startDate,
		EndDate:     endDate,
		GeneratedAt: end,
		Report:      *report,
	}

	if j.narrate != nil {
		text, err := j.narrate(ctx, report)
		if err != nil {
			log.Warn().Err(err).Str("project", j.project).Msg("Digest insights unavailable")
		}
		d.Insights = text
	}

	d.Markdown = visuals.RenderMarkdown(*report, visuals.ReportOptions{
		Title:    fmt.Sprintf("%s digest (%s to %s)", j.project, startDate, endDate),
		Charts:   true,
		Insights: d.Insights,
	})

	j.mu.Lock()
	j.latest = d
	j.mu.Unlock()

	log.Info().
		Str("project", j.project).
		Int("issues", report.TotalIssues).
		Int("completed", report.CompletedIssues).
		Msg("Digest generated")
	return d, nil
}
