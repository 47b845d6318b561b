package jira

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"team-insights/internal/cache"

	"github.com/rs/zerolog/log"
)

const (
	defaultCacheTTL = 5 * time.Minute
	defaultTimeout  = 90 * time.Second
)

type cloudClient struct {
	cfg        Config
	httpClient *http.Client
	cache      cache.Cache

	throttleMu  sync.Mutex
	lastRequest time.Time
}

// NewCloudClient creates a client for Jira Cloud (and Server/DC with a PAT).
func NewCloudClient(cfg Config, store cache.Cache) Client {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if store == nil {
		store = cache.Nop{}
	}
	return &cloudClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: store,
	}
}

func (c *cloudClient) throttle(ctx context.Context) error {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	if c.cfg.RequestDelay > 0 {
		elapsed := time.Since(c.lastRequest)
		if elapsed < c.cfg.RequestDelay {
			wait := c.cfg.RequestDelay - elapsed
			log.Debug().Dur("wait", wait).Msg("Throttling Jira request")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *cloudClient) authenticateRequest(req *http.Request) {
	// 1. Cloud: email + API token
	if c.cfg.Email != "" && c.cfg.APIToken != "" {
		req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
		return
	}

	// 2. Fallback to Personal Access Token (Server/DC)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.Token))
	}
}

// cacheKey scopes entries to the instance and identity so credentials never share results.
func (c *cloudClient) cacheKey(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(c.cfg.BaseURL))
	h.Write([]byte{0})
	h.Write([]byte(c.cfg.Email))
	h.Write([]byte{0})
	h.Write([]byte(c.cfg.APIToken))
	h.Write([]byte{0})
	h.Write([]byte(c.cfg.Token))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return "jira:" + hex.EncodeToString(h.Sum(nil))
}

// do executes a request, decodes a 2xx JSON body into out and caches it.
func (c *cloudClient) do(ctx context.Context, method, path string, body any, out any, what string) error {
	if c.cfg.BaseURL == "" {
		return fmt.Errorf("jira base URL is not configured")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", what, err)
		}
	}

	key := c.cacheKey(method, path, string(payload))
	if cached, ok := c.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(cached, out); err == nil {
			return nil
		}
	}

	if err := c.throttle(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authenticateRequest(req)

	log.Debug().Str("method", method).Str("path", path).Msg("Jira request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach Jira for %s: %w", what, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Jira %s response: %w", what, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp, raw, what)
		log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg(apiErr.Message)
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode Jira %s response: %w", what, err)
	}

	c.cache.Set(ctx, key, raw, c.cfg.CacheTTL)
	return nil
}

func (c *cloudClient) SearchIssues(ctx context.Context, jql string, startAt, maxResults int) (*SearchResponse, error) {
	body := map[string]any{
		"jql":        jql,
		"fields":     SearchFields(c.cfg.EstimateFields),
		"startAt":    startAt,
		"maxResults": maxResults,
	}

	log.Info().Str("jql", jql).Int("startAt", startAt).Msg("Requesting issues from Jira")
	var result SearchResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/search", body, &result, "issue search"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *cloudClient) GetProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/rest/api/2/project", nil, &projects, "project list"); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *cloudClient) GetBoards(ctx context.Context, projectKey string) ([]Board, error) {
	params := url.Values{}
	if projectKey != "" {
		params.Set("projectKeyOrId", projectKey)
	}
	path := "/rest/agile/1.0/board"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result pagedValues[Board]
	if err := c.do(ctx, http.MethodGet, path, nil, &result, "board list"); err != nil {
		return nil, err
	}
	return result.Values, nil
}

func (c *cloudClient) GetSprints(ctx context.Context, boardID int) ([]Sprint, error) {
	path := fmt.Sprintf("/rest/agile/1.0/board/%d/sprint", boardID)

	var result pagedValues[Sprint]
	if err := c.do(ctx, http.MethodGet, path, nil, &result, fmt.Sprintf("sprints of board %d", boardID)); err != nil {
		return nil, err
	}
	return result.Values, nil
}

func (c *cloudClient) GetSprintIssues(ctx context.Context, sprintID, startAt, maxResults int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("startAt", fmt.Sprintf("%d", startAt))
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("fields", strings.Join(SearchFields(c.cfg.EstimateFields), ","))
	path := fmt.Sprintf("/rest/agile/1.0/sprint/%d/issue?%s", sprintID, params.Encode())

	var result SearchResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result, fmt.Sprintf("issues of sprint %d", sprintID)); err != nil {
		return nil, err
	}
	return &result, nil
}
