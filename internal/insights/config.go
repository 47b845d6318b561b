package insights

import "time"

// Providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models and sampling parameters.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	Temperature           = 0.7
	MaxTokens             = 1500
)

// Config selects and authenticates a narrative provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint, e.g. for a proxy.
	BaseURL string
	Timeout time.Duration
}

// WithDefaults fills the provider and model when unset.
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		switch c.Provider {
		case ProviderAnthropic:
			c.Model = DefaultAnthropicModel
		default:
			c.Model = DefaultOpenAIModel
		}
	}
	return c
}

// Merge overlays the non-empty fields of override on c. A provider switch without a
// model drops the inherited model so the new provider's default applies.
func (c Config) Merge(override Config) Config {
	if override.Provider != "" && override.Provider != c.Provider {
		c.Provider = override.Provider
		c.Model = ""
	}
	if override.APIKey != "" {
		c.APIKey = override.APIKey
	}
	if override.Model != "" {
		c.Model = override.Model
	}
	if override.BaseURL != "" {
		c.BaseURL = override.BaseURL
	}
	if override.Timeout > 0 {
		c.Timeout = override.Timeout
	}
	return c
}
