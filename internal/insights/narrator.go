package insights

import (
	"context"
	"fmt"
)

// Prompt is a system instruction plus the user message built from a report.
type Prompt struct {
	System string
	User   string
}

// Narrator turns a prompt into markdown text.
type Narrator interface {
	GenerateNarrative(ctx context.Context, p Prompt) (string, error)
}

// NewNarrator builds the narrator for cfg.Provider.
func NewNarrator(cfg Config) (Narrator, error) {
	cfg = cfg.WithDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return newOpenAINarrator(cfg), nil
	case ProviderAnthropic:
		return newAnthropicNarrator(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}
