package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"team-insights/internal/analytics"
	"team-insights/internal/insights"
	"team-insights/internal/jira"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Settings backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Jira             jira.Config
	JiraConcurrency  int
	StoryPointFields []string
	AI               insights.Config

	HTTPAddr        string
	DataPath        string
	SettingsBackend string
	DatabaseURL     string
	RedisURL        string

	DigestCron    string
	DigestProject string

	EnableMermaidCharts bool
}

// SettingsFile is where the file settings backend keeps its JSON document.
func (c *AppConfig) SettingsFile() string {
	return filepath.Join(c.DataPath, "data", "settings.json")
}

// DigestEnabled reports whether the scheduled digest has both a schedule and a project.
func (c *AppConfig) DigestEnabled() bool {
	return c.DigestCron != "" && c.DigestProject != ""
}

// pointsFile is the YAML layout of STORY_POINT_FIELDS_FILE.
type pointsFile struct {
	StoryPointFields []string `yaml:"story_point_fields"`
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data path
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	fields, err := storyPointFields()
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getEnv("SETTINGS_BACKEND", BackendFile))
	if backend != BackendFile && backend != BackendPostgres {
		return nil, fmt.Errorf("unsupported SETTINGS_BACKEND %q (want %s or %s)", backend, BackendFile, BackendPostgres)
	}
	databaseURL := getEnv("DATABASE_URL", "")
	if backend == BackendPostgres && databaseURL == "" {
		return nil, fmt.Errorf("SETTINGS_BACKEND=postgres requires DATABASE_URL")
	}

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:        getEnv("JIRA_URL", ""),
			Email:          getEnv("JIRA_EMAIL", ""),
			APIToken:       getEnv("JIRA_API_TOKEN", ""),
			Token:          getEnv("JIRA_TOKEN", ""),
			EstimateFields: fields,
			RequestDelay:   time.Duration(getEnvInt("JIRA_REQUEST_DELAY_MS", 0)) * time.Millisecond,
			CacheTTL:       getEnvDuration("JIRA_CACHE_TTL", 5*time.Minute),
		},
		JiraConcurrency:  max(getEnvInt("JIRA_MAX_CONCURRENCY", 4), 1),
		StoryPointFields: fields,
		AI:               aiConfig(),

		HTTPAddr:        getEnv("HTTP_ADDR", ":3001"),
		DataPath:        dataPath,
		SettingsBackend: backend,
		DatabaseURL:     databaseURL,
		RedisURL:        getEnv("REDIS_URL", ""),

		DigestCron:    getEnv("DIGEST_CRON", ""),
		DigestProject: getEnv("DIGEST_PROJECT", ""),

		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	return cfg, nil
}

// aiConfig picks the provider and key. An explicit AI_API_KEY wins; otherwise the
// provider-specific key is used, and the provider is inferred from whichever key exists.
func aiConfig() insights.Config {
	provider := strings.ToLower(getEnv("AI_PROVIDER", ""))
	openaiKey := getEnv("OPENAI_API_KEY", "")
	anthropicKey := getEnv("ANTHROPIC_API_KEY", "")

	if provider == "" {
		provider = insights.ProviderOpenAI
		if openaiKey == "" && anthropicKey != "" {
			provider = insights.ProviderAnthropic
		}
	}

	key := getEnv("AI_API_KEY", "")
	if key == "" {
		switch provider {
		case insights.ProviderAnthropic:
			key = anthropicKey
		default:
			key = openaiKey
		}
	}

	return insights.Config{
		Provider: provider,
		APIKey:   key,
		Model:    getEnv("AI_MODEL", ""),
		Timeout:  getEnvDuration("AI_TIMEOUT", 60*time.Second),
	}
}

// storyPointFields resolves the ordered estimate fields: STORY_POINT_FIELDS, then the
// YAML file, then the built-in defaults.
func storyPointFields() ([]string, error) {
	if raw := getEnv("STORY_POINT_FIELDS", ""); raw != "" {
		if fields := splitList(raw); len(fields) > 0 {
			return fields, nil
		}
	}

	if path := getEnv("STORY_POINT_FIELDS_FILE", ""); path != "" {
		fields, err := LoadPointsFile(path)
		if err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			return fields, nil
		}
		log.Warn().Str("path", path).Msg("Story point file lists no fields, using defaults")
	}

	return append([]string(nil), analytics.DefaultPointsFields...), nil
}

// LoadPointsFile reads the story_point_fields list from a YAML file.
func LoadPointsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story point file: %w", err)
	}
	var pf pointsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse story point file %s: %w", path, err)
	}

	var out []string
	for _, f := range pf.StoryPointFields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric setting")
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid duration")
	return fallback
}
