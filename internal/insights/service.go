package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"team-insights/internal/analytics"

	"github.com/rs/zerolog/log"
)

// NarratorFactory builds a narrator for a resolved configuration.
type NarratorFactory func(cfg Config) (Narrator, error)

// Service produces narratives for reports, falling back to fixed markdown when no
// provider is configured or the provider fails. Successful narratives are cached per
// report fingerprint, provider and model.
type Service struct {
	base        Config
	newNarrator NarratorFactory

	mu    sync.Mutex
	cache map[string]string
}

// NewService creates a service with base as the environment-level configuration.
func NewService(base Config) *Service {
	return NewServiceWithFactory(base, NewNarrator)
}

// NewServiceWithFactory is NewService with a custom narrator constructor.
func NewServiceWithFactory(base Config, factory NarratorFactory) *Service {
	return &Service{
		base:        base,
		newNarrator: factory,
		cache:       make(map[string]string),
	}
}

// Generate returns the markdown narrative for report. override carries per-request
// credentials (stored settings or the request body) that take precedence over the
// base configuration. The only error is ErrMissingData.
func (s *Service) Generate(ctx context.Context, report *analytics.TeamAnalytics, override Config) (string, error) {
	if report == nil {
		return MissingDataMarkdown, ErrMissingData
	}

	cfg := s.base.Merge(override).WithDefaults()
	if cfg.APIKey == "" {
		log.Info().Msg("No AI credentials configured, returning placeholder insights")
		return UnavailableMarkdown, nil
	}

	key := cacheKey(*report, cfg)
	if cached, ok := s.lookup(key); ok {
		log.Debug().Str("provider", cfg.Provider).Msg("Insights served from cache")
		return cached, nil
	}

	prompt, err := BuildPrompt(*report)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render insights prompt")
		return ConfigurationRequiredMarkdown, nil
	}

	narrator, err := s.newNarrator(cfg)
	if err != nil {
		log.Error().Err(err).Str("provider", cfg.Provider).Msg("Failed to create narrator")
		return ConfigurationRequiredMarkdown, nil
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	text, err := narrator.GenerateNarrative(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("Insight generation failed")
		return ConfigurationRequiredMarkdown, nil
	}

	s.store(key, text)
	log.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("Insights generated")
	return text, nil
}

// Configured reports whether the base configuration carries an API key.
func (s *Service) Configured() bool {
	return s.base.APIKey != ""
}

// cacheKey scopes a narrative to the report, provider, model and API key, so a
// changed or revoked key is always checked against the provider.
func cacheKey(report analytics.TeamAnalytics, cfg Config) string {
	sum := sha256.Sum256([]byte(cfg.APIKey))
	return analytics.Fingerprint(report) + "|" + cfg.Provider + "|" + cfg.Model + "|" + hex.EncodeToString(sum[:8])
}

func (s *Service) lookup(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[key]
	return v, ok
}

func (s *Service) store(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = text
}
