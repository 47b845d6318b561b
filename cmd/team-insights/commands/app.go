package commands

import (
	"context"
	"fmt"

	"team-insights/internal/analytics"
	"team-insights/internal/cache"
	"team-insights/internal/config"
	"team-insights/internal/dashboard"
	"team-insights/internal/insights"
	"team-insights/internal/settings"

	"github.com/rs/zerolog/log"
)

// app holds the collaborators shared by every command.
type app struct {
	store     settings.Store
	dashboard *dashboard.Service
	insights  *insights.Service
	closers   []func()
}

func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	a := &app{}

	store, err := a.openSettings(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	a.dashboard = dashboard.NewService(dashboard.Options{
		Jira:        cfg.Jira,
		AI:          cfg.AI,
		Concurrency: cfg.JiraConcurrency,
		Settings:    store,
		Cache:       a.openCache(ctx, cfg),
		Analyzer:    analytics.NewFieldAnalyzer(cfg.StoryPointFields),
	})
	a.insights = insights.NewService(cfg.AI)
	return a, nil
}

func (a *app) openSettings(ctx context.Context, cfg *config.AppConfig) (settings.Store, error) {
	if cfg.SettingsBackend == config.BackendPostgres {
		store, err := settings.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open settings database: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		log.Info().Msg("Using Postgres settings store")
		return store, nil
	}
	log.Info().Str("path", cfg.SettingsFile()).Msg("Using file settings store")
	return settings.NewFileStore(cfg.SettingsFile()), nil
}

// openCache prefers Redis when configured and falls back to an in-process cache.
func (a *app) openCache(ctx context.Context, cfg *config.AppConfig) cache.Cache {
	if cfg.RedisURL != "" {
		r, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err == nil {
			a.closers = append(a.closers, func() { _ = r.Close() })
			log.Info().Msg("Using Redis response cache")
			return r
		}
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
	}
	return cache.NewMemory()
}

// narrate adapts the insights service for the digest job.
func (a *app) narrate(ctx context.Context, report *analytics.TeamAnalytics) (string, error) {
	aiCfg := a.dashboard.InsightsConfig(ctx, insights.Config{})
	if aiCfg.APIKey == "" {
		return "", nil
	}
	return a.insights.Generate(ctx, report, aiCfg)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
