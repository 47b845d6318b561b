package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"team-insights/internal/analytics"
	"team-insights/internal/dashboard"
	"team-insights/internal/insights"
	"team-insights/internal/jira"
	"team-insights/internal/settings"
	"team-insights/internal/visuals"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type saveSettingsRequest struct {
	Type        string          `json:"type" binding:"required"`
	Credentials json.RawMessage `json:"credentials"`
}

type generateInsightsRequest struct {
	Data     *analytics.TeamAnalytics `json:"data"`
	APIKey   string                   `json:"apiKey"`
	Provider string                   `json:"provider" binding:"omitempty,oneof=openai anthropic"`
	Model    string                   `json:"model"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": ServiceName})
}

func (s *Server) getSettings(c *gin.Context) {
	if s.opts.Settings == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "settings store is not configured"})
		return
	}
	stored, err := s.opts.Settings.Load(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, stored.Redacted())
}

func (s *Server) saveSettings(c *gin.Context) {
	if s.opts.Settings == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "settings store is not configured"})
		return
	}

	var req saveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Credentials) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type and credentials are required"})
		return
	}

	if err := s.opts.Settings.Update(c.Request.Context(), req.Type, req.Credentials); err != nil {
		if errors.Is(err, settings.ErrInvalidKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid setting type"})
			return
		}
		if errors.Is(err, settings.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("type", req.Type).Msg("Failed to save settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	log.Info().Str("type", req.Type).Msg("Settings updated")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.opts.Dashboard.Projects(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to fetch projects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

func (s *Server) listBoards(c *gin.Context) {
	boards, err := s.opts.Dashboard.Boards(c.Request.Context(), c.Param("key"))
	if err != nil {
		s.fail(c, err, "Failed to fetch boards")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": boards})
}

func (s *Server) listSprints(c *gin.Context) {
	boardID, ok := intParam(c, "id")
	if !ok {
		return
	}
	sprints, err := s.opts.Dashboard.Sprints(c.Request.Context(), boardID)
	if err != nil {
		s.fail(c, err, "Failed to fetch sprints")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sprints})
}

func (s *Server) projectAnalytics(c *gin.Context) {
	key := c.Param("key")
	startDate, endDate := c.Query("startDate"), c.Query("endDate")
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must use YYYY-MM-DD"})
			return
		}
	}

	report, err := s.opts.Dashboard.ProjectAnalytics(c.Request.Context(), key, startDate, endDate)
	if err != nil {
		s.fail(c, err, "Failed to analyze team performance")
		return
	}
	s.writeReport(c, report, key)
}

func (s *Server) sprintAnalytics(c *gin.Context) {
	sprintID, ok := intParam(c, "id")
	if !ok {
		return
	}
	report, err := s.opts.Dashboard.SprintAnalytics(c.Request.Context(), sprintID)
	if err != nil {
		s.fail(c, err, "Failed to analyze sprint performance")
		return
	}
	s.writeReport(c, report, "Sprint "+c.Param("id"))
}

// writeReport honours ?sort=&dir= for the user list and ?format=markdown.
func (s *Server) writeReport(c *gin.Context, report *analytics.TeamAnalytics, title string) {
	field := analytics.ParseSortField(c.Query("sort"))
	dir := analytics.SortDirection(c.Query("dir"))
	if dir != analytics.Ascending && dir != analytics.Descending {
		dir = ""
	}

	if c.Query("format") == "markdown" {
		md := visuals.RenderMarkdown(*report, visuals.ReportOptions{
			Title:     title,
			SortField: field,
			SortDir:   dir,
			Charts:    true,
		})
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}

	if c.Query("sort") != "" {
		report.UserPerformance = analytics.SortUsers(report.UserPerformance, field, dir)
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) generateInsights(c *gin.Context) {
	var req generateInsightsRequest
	// An empty body is reported like a body without data.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Analytics data is required",
			"insights": insights.MissingDataMarkdown,
		})
		return
	}

	ctx := c.Request.Context()
	cfg := s.opts.Dashboard.InsightsConfig(ctx, insights.Config{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Model:    req.Model,
	})

	text, err := s.opts.Insights.Generate(ctx, req.Data, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Error generating insights")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Failed to generate insights",
			"insights": "## ERROR\n\n* **Generation Failed**: " + err.Error() + ".",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": text})
}

func (s *Server) latestDigest(c *gin.Context) {
	if s.opts.Digest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "digest schedule is not enabled"})
		return
	}
	d, ok := s.opts.Digest.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no digest available yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

// fail maps collaborator errors to a status and the {error} envelope.
func (s *Server) fail(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	var apiErr *jira.APIError
	switch {
	case errors.Is(err, dashboard.ErrNotConfigured):
		status = http.StatusPreconditionFailed
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusNotFound, http.StatusTooManyRequests, http.StatusBadRequest:
			status = apiErr.StatusCode
		default:
			status = http.StatusBadGateway
		}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	log.Warn().Err(err).Int("status", status).Str("path", c.FullPath()).Msg(fallback)
	c.JSON(status, gin.H{"error": msg})
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return v, true
}
