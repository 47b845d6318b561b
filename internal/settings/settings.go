package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
)

// Setting kinds accepted by Apply.
const (
	KindJira   = "jira"
	KindAI     = "ai"
	KindOpenAI = "openai"
)

var (
	// ErrInvalidKind is returned for a setting kind other than jira, ai or openai.
	ErrInvalidKind = errors.New("invalid setting type")
	// ErrInvalidCredentials wraps decoding and validation failures.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// JiraCredentials connect the dashboard to a Jira Cloud site.
type JiraCredentials struct {
	BaseURL  string `json:"baseUrl" binding:"required,url"`
	Email    string `json:"email" binding:"required,email"`
	APIToken string `json:"apiToken" binding:"required"`
}

// AICredentials select a narrative provider.
type AICredentials struct {
	Provider string `json:"provider" binding:"required,oneof=openai anthropic"`
	APIKey   string `json:"apiKey" binding:"required"`
}

// OpenAICredentials is the legacy single-provider key.
type OpenAICredentials struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// Settings is the persisted credential document. A nil entry means not configured.
type Settings struct {
	Jira   *JiraCredentials   `json:"jira"`
	AI     *AICredentials     `json:"ai"`
	OpenAI *OpenAICredentials `json:"openai"`
}

// Store persists Settings.
type Store interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
	// Update applies one kind and persists it atomically with respect to other updates.
	Update(ctx context.Context, kind string, raw json.RawMessage) error
}

// Apply replaces the credentials of one kind. raw must be a JSON object with every
// required field; a JSON null (or empty raw) clears the kind.
func (s *Settings) Apply(kind string, raw json.RawMessage) error {
	value, err := decode(kind, raw)
	if err != nil {
		return err
	}

	switch kind {
	case KindJira:
		s.Jira, _ = value.(*JiraCredentials)
	case KindAI:
		s.AI, _ = value.(*AICredentials)
	case KindOpenAI:
		s.OpenAI, _ = value.(*OpenAICredentials)
	}
	return nil
}

// Get returns the credentials of one kind, or nil when unset.
func (s *Settings) Get(kind string) (any, error) {
	switch kind {
	case KindJira:
		if s.Jira != nil {
			return s.Jira, nil
		}
	case KindAI:
		if s.AI != nil {
			return s.AI, nil
		}
	case KindOpenAI:
		if s.OpenAI != nil {
			return s.OpenAI, nil
		}
	default:
		return nil, ErrInvalidKind
	}
	return nil, nil
}

// Redacted returns a copy with secrets masked, for display.
func (s *Settings) Redacted() *Settings {
	out := &Settings{}
	if s.Jira != nil {
		j := *s.Jira
		j.APIToken = mask(j.APIToken)
		out.Jira = &j
	}
	if s.AI != nil {
		a := *s.AI
		a.APIKey = mask(a.APIKey)
		out.AI = &a
	}
	if s.OpenAI != nil {
		o := *s.OpenAI
		o.APIKey = mask(o.APIKey)
		out.OpenAI = &o
	}
	return out
}

// decode validates raw for kind. It returns a typed nil-able pointer, nil for a clear.
func decode(kind string, raw json.RawMessage) (any, error) {
	var target any
	switch kind {
	case KindJira:
		target = &JiraCredentials{}
	case KindAI:
		target = &AICredentials{}
	case KindOpenAI:
		target = &OpenAICredentials{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	if isNull(raw) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidCredentials, kind, err)
	}
	if err := binding.Validator.ValidateStruct(target); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidCredentials, kind, err)
	}
	return target, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
