package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"team-insights/internal/jira"
)

const (
	pointsField    = "customfield_10016"
	altPointsField = "customfield_10058"
)

type GeneratorConfig struct {
	Scenario string // "mild" or "chaos"
	Count    int
	Project  string
	Seed     int64
	Now      time.Time
}

var team = []jira.User{
	{DisplayName: "Ada Lovelace", EmailAddress: "ada@example.com"},
	{DisplayName: "Grace Hopper", EmailAddress: "grace@example.com"},
	{DisplayName: "Alan Turing", EmailAddress: "alan@example.com"},
	{DisplayName: "Edsger Dijkstra", EmailAddress: "edsger@example.com"},
}

var (
	issueTypes = []string{"Story", "Story", "Story", "Bug", "Task"}
	fibonacci  = []float64{1, 2, 3, 5, 8, 13}
)

// Generate builds a synthetic search response. The mild scenario is clean data: every
// issue is assigned and estimated, and resolved issues are Done. Chaos adds the data
// quality problems seen on real instances: unassigned issues, assignees without email,
// estimates in the alternate field or missing, status casing drift, resolutions that
// never reached Done and unparseable timestamps.
func Generate(cfg GeneratorConfig) jira.SearchResponse {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Project == "" {
		cfg.Project = "MOCK"
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	chaos := cfg.Scenario == "chaos"

	// One arrival every 12 hours, ending today.
	start := cfg.Now.Add(-time.Duration(cfg.Count*12) * time.Hour)

	issues := make([]jira.IssueDTO, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		var f jira.FieldsDTO
		f.Summary = fmt.Sprintf("Synthetic work item %d", i+1)
		f.IssueType.Name = issueTypes[rng.Intn(len(issueTypes))]

		created := start.Add(time.Duration(i*12) * time.Hour)
		f.Created = jira.FormatTime(created)
		f.Updated = f.Created

		assignee := team[rng.Intn(len(team))]
		f.Assignee = &assignee

		// Resolution time in days: 1-6 normally, with a fat tail under chaos.
		days := 1 + rng.Float64()*5
		if chaos && rng.Float64() < 0.2 {
			days += 10 + rng.Float64()*20
		}
		resolved := created.Add(time.Duration(days * 24 * float64(time.Hour)))

		switch {
		case resolved.Before(cfg.Now):
			f.Status.Name = "Done"
			f.ResolutionDate = jira.FormatTime(resolved)
			f.Updated = f.ResolutionDate
		case created.Add(24 * time.Hour).Before(cfg.Now):
			f.Status.Name = "In Progress"
		default:
			f.Status.Name = "To Do"
		}

		points := fibonacci[rng.Intn(len(fibonacci))]
		f.Custom = map[string]json.RawMessage{pointsField: number(points)}

		if chaos {
			roughen(rng, &f, points)
		}

		issues = append(issues, jira.IssueDTO{
			ID:     strconv.Itoa(10000 + i),
			Key:    fmt.Sprintf("%s-%d", cfg.Project, i+1),
			Fields: f,
		})
	}

	return jira.SearchResponse{
		StartAt:    0,
		MaxResults: len(issues),
		Total:      len(issues),
		Issues:     issues,
	}
}

func roughen(rng *rand.Rand, f *jira.FieldsDTO, points float64) {
	switch r := rng.Float64(); {
	case r < 0.10:
		f.Assignee = nil
	case r < 0.15:
		f.Assignee = &jira.User{DisplayName: f.Assignee.DisplayName}
	}

	switch r := rng.Float64(); {
	case r < 0.15:
		f.Custom = map[string]json.RawMessage{pointsField: json.RawMessage("null"), altPointsField: number(points)}
	case r < 0.25:
		f.Custom = nil
	case r < 0.30:
		f.Custom = map[string]json.RawMessage{pointsField: number(0)}
	}

	switch r := rng.Float64(); {
	case r < 0.10 && f.Status.Name == "Done":
		f.Status.Name = "Closed"
	case r < 0.15 && f.Status.Name == "Done":
		// Case drift splits the status distribution into two buckets.
		f.Status.Name = "DONE"
	case r < 0.20 && f.ResolutionDate != "":
		// Resolved as Won't Do without reaching a finished status.
		f.Status.Name = "Cancelled"
	}

	if rng.Float64() < 0.03 {
		f.Created = "not-a-date"
	}
	if f.ResolutionDate != "" && rng.Float64() < 0.03 {
		f.ResolutionDate = "sometime"
	}
}

func number(v float64) json.RawMessage {
	if v == math.Trunc(v) {
		return json.RawMessage(strconv.FormatFloat(v, 'f', 0, 64))
	}
	return json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))
}

// Save writes resp as indented JSON to path, creating parent directories.
func Save(path string, resp jira.SearchResponse) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
