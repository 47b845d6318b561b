package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"team-insights/internal/insights"

	"github.com/joho/godotenv"
)

func TestGodotenvQuoting(t *testing.T) {
	content := `JIRA_API_TOKEN='token with "double quotes"'`
	path := filepath.Join(t.TempDir(), ".env.test")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `token with "double quotes"`
	if env["JIRA_API_TOKEN"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["JIRA_API_TOKEN"])
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"STORY_POINT_FIELDS", "STORY_POINT_FIELDS_FILE", "SETTINGS_BACKEND", "JIRA_MAX_CONCURRENCY", "HTTP_ADDR", "AI_PROVIDER", "AI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(cfg.StoryPointFields, []string{"customfield_10016", "customfield_10058"}) {
		t.Errorf("Unexpected default story point fields %v", cfg.StoryPointFields)
	}
	if cfg.JiraConcurrency != 4 {
		t.Errorf("Expected concurrency 4, got %d", cfg.JiraConcurrency)
	}
	if cfg.SettingsBackend != BackendFile {
		t.Errorf("Expected file backend, got %s", cfg.SettingsBackend)
	}
	if cfg.HTTPAddr != ":3001" {
		t.Errorf("Expected :3001, got %s", cfg.HTTPAddr)
	}
	if cfg.AI.Provider != insights.ProviderOpenAI {
		t.Errorf("Expected openai provider by default, got %s", cfg.AI.Provider)
	}
	if cfg.Jira.CacheTTL != 5*time.Minute {
		t.Errorf("Expected 5m cache ttl, got %v", cfg.Jira.CacheTTL)
	}
	if filepath.Base(cfg.SettingsFile()) != "settings.json" {
		t.Errorf("Unexpected settings file %s", cfg.SettingsFile())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("STORY_POINT_FIELDS", " customfield_1, ,customfield_2 ")
	t.Setenv("JIRA_REQUEST_DELAY_MS", "250")
	t.Setenv("JIRA_CACHE_TTL", "30")
	t.Setenv("JIRA_MAX_CONCURRENCY", "0")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(cfg.StoryPointFields, []string{"customfield_1", "customfield_2"}) {
		t.Errorf("Unexpected fields %v", cfg.StoryPointFields)
	}
	if !reflect.DeepEqual(cfg.Jira.EstimateFields, cfg.StoryPointFields) {
		t.Errorf("Expected Jira search to request the story point fields")
	}
	if cfg.Jira.RequestDelay != 250*time.Millisecond {
		t.Errorf("Expected 250ms delay, got %v", cfg.Jira.RequestDelay)
	}
	if cfg.Jira.CacheTTL != 30*time.Second {
		t.Errorf("Expected bare number as seconds, got %v", cfg.Jira.CacheTTL)
	}
	if cfg.JiraConcurrency != 1 {
		t.Errorf("Expected concurrency clamped to 1, got %d", cfg.JiraConcurrency)
	}
	if cfg.AI.Provider != insights.ProviderAnthropic || cfg.AI.APIKey != "sk-ant" {
		t.Errorf("Expected anthropic inferred from key, got %+v", cfg.AI)
	}
}

func TestLoad_PostgresNeedsURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("SETTINGS_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error without DATABASE_URL")
	}

	t.Setenv("SETTINGS_BACKEND", "mongo")
	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestLoadPointsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.yaml")
	content := "story_point_fields:\n  - customfield_10016\n  - \"  \"\n  - customfield_12345\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fields, err := LoadPointsFile(path)
	if err != nil {
		t.Fatalf("LoadPointsFile: %v", err)
	}
	if !reflect.DeepEqual(fields, []string{"customfield_10016", "customfield_12345"}) {
		t.Errorf("Unexpected fields %v", fields)
	}

	if _, err := LoadPointsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
