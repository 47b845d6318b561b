package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"team-insights/internal/cache"
)

func TestSearchIssues_RequestShape(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/2/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "dev@example.com" || pass != "secret" {
			t.Errorf("expected basic auth, got %q/%q (ok=%v)", user, pass, ok)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Write([]byte(`{"startAt":0,"maxResults":100,"total":1,"issues":[{"id":"1","key":"ABC-1","fields":{"customfield_10016":3}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:        srv.URL + "/",
		Email:          "dev@example.com",
		APIToken:       "secret",
		EstimateFields: []string{"customfield_10016", "customfield_10058"},
	}, nil)

	resp, err := c.SearchIssues(context.Background(), "project = ABC", 0, 100)
	if err != nil {
		t.Fatalf("SearchIssues: %v", err)
	}
	if resp.Total != 1 || len(resp.Issues) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if string(resp.Issues[0].Fields.Custom["customfield_10016"]) != "3" {
		t.Errorf("expected custom field to be kept raw, got %q", resp.Issues[0].Fields.Custom["customfield_10016"])
	}

	if gotBody["jql"] != "project = ABC" {
		t.Errorf("unexpected jql %v", gotBody["jql"])
	}
	fields, _ := gotBody["fields"].([]any)
	var names []string
	for _, f := range fields {
		names = append(names, f.(string))
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"assignee", "resolutiondate", "customfield_10016", "customfield_10058"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected field %s in %s", want, joined)
		}
	}
	if gotBody["maxResults"] != float64(100) {
		t.Errorf("unexpected maxResults %v", gotBody["maxResults"])
	}
}

func TestBearerTokenWhenNoEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer pat-123" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		w.Write([]byte(`[{"id":"10000","key":"ABC","name":"Alpha"}]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "pat-123"}, nil)
	projects, err := c.GetProjects(context.Background())
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Key != "ABC" {
		t.Errorf("unexpected projects %+v", projects)
	}
}

func TestAPIErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		body   string
		want   string
	}{
		{"error messages", http.StatusBadRequest, nil, `{"errorMessages":["The value 'NOPE' does not exist for the field 'project'."]}`, "The value 'NOPE' does not exist for the field 'project'."},
		{"message", http.StatusInternalServerError, nil, `{"message":"boom"}`, "boom"},
		{"auth", http.StatusUnauthorized, nil, ``, "Jira authentication failed (401/403). Please check your Jira email and API token."},
		{"rate limit", http.StatusTooManyRequests, map[string]string{"Retry-After": "30"}, ``, "Jira rate limit exceeded (429). Retry after 30 seconds."},
		{"not found", http.StatusNotFound, nil, `not json`, "Jira project list not found"},
		{"generic", http.StatusBadGateway, nil, ``, "Jira API returned status 502 for project list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL, Token: "t"}, nil)
			_, err := c.GetProjects(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, apiErr.Error())
			}
		})
	}
}

func TestResponsesAreCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"values":[{"id":7,"name":"Team board","type":"scrum"}]}`))
	}))
	defer srv.Close()

	store := cache.NewMemory()
	c := NewClient(Config{BaseURL: srv.URL, Token: "t"}, store)
	for i := 0; i < 3; i++ {
		boards, err := c.GetBoards(context.Background(), "ABC")
		if err != nil {
			t.Fatalf("GetBoards: %v", err)
		}
		if len(boards) != 1 || boards[0].ID != 7 {
			t.Fatalf("unexpected boards %+v", boards)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected a single upstream request, got %d", hits.Load())
	}

	// A different identity must not see the cached entry.
	other := NewClient(Config{BaseURL: srv.URL, Token: "other"}, store)
	if _, err := other.GetBoards(context.Background(), "ABC"); err != nil {
		t.Fatalf("GetBoards: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected second identity to hit upstream, got %d requests", hits.Load())
	}
}

func TestResponsesAreCached_PerAPIToken(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if _, pass, _ := r.BasicAuth(); pass != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errorMessages":["bad credentials"]}`))
			return
		}
		w.Write([]byte(`[{"id":"1","key":"SECRET","name":"Secret"}]`))
	}))
	defer srv.Close()

	store := cache.NewMemory()
	good := NewClient(Config{BaseURL: srv.URL, Email: "me@acme.com", APIToken: "good"}, store)
	if projects, err := good.GetProjects(context.Background()); err != nil || len(projects) != 1 {
		t.Fatalf("expected one project, got %+v err=%v", projects, err)
	}

	wrong := NewClient(Config{BaseURL: srv.URL, Email: "me@acme.com", APIToken: "WRONG"}, store)
	projects, err := wrong.GetProjects(context.Background())
	if err == nil {
		t.Fatalf("expected an auth error for the wrong token, got cached projects %+v", projects)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 APIError, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected both tokens to reach upstream, got %d requests", hits.Load())
	}
}

func TestGetSprintIssues_Path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/agile/1.0/sprint/42/issue" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("startAt") != "50" || r.URL.Query().Get("maxResults") != "50" {
			t.Errorf("unexpected paging %s", r.URL.RawQuery)
		}
		if !strings.Contains(r.URL.Query().Get("fields"), "customfield_10058") {
			t.Errorf("expected estimate field in %s", r.URL.Query().Get("fields"))
		}
		w.Write([]byte(`{"startAt":50,"maxResults":50,"total":51,"issues":[{"id":"9","key":"ABC-9","fields":{}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "t", EstimateFields: []string{"customfield_10058"}}, nil)
	resp, err := c.GetSprintIssues(context.Background(), 42, 50, 50)
	if err != nil {
		t.Fatalf("GetSprintIssues: %v", err)
	}
	if resp.Total != 51 || resp.Issues[0].Key != "ABC-9" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestMissingBaseURL(t *testing.T) {
	c := NewClient(Config{Token: "t"}, nil)
	if _, err := c.GetProjects(context.Background()); err == nil {
		t.Fatal("expected error without base URL")
	}
}
