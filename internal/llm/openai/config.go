package openai

import (
	"fmt"
	"os"
	"time"

	"bookdigest/internal/common"
)

// Provider identifiers. All three speak the OpenAI chat/completions
// protocol and differ only in base URL and credential.
const (
	ProviderOllama     = "ollama"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Config for the completion client.
type Config struct {
	Provider    string        // ollama | openai | openrouter
	APIKey      string        // if empty, falls back to the provider's env var
	BaseURL     string        // override; defaults per provider
	Timeout     time.Duration // per-call timeout
	MaxAttempts int           // bounded retries per call
	RetryDelay  time.Duration // fixed delay between attempts
}

type providerDefaults struct {
	baseURL   string
	apiKeyEnv string
	staticKey string
}

var providers = map[string]providerDefaults{
	// Ollama ignores the key but the protocol requires one.
	ProviderOllama:     {baseURL: "http://localhost:11434/v1", staticKey: "ollama"},
	ProviderOpenAI:     {baseURL: "https://api.openai.com/v1", apiKeyEnv: "OPENAI_API_KEY"},
	ProviderOpenRouter: {baseURL: "https://openrouter.ai/api/v1", apiKeyEnv: "OPENROUTER_API_KEY"},
}

// resolve fills provider defaults and fails fast on a missing credential,
// before any page is processed.
func (c *Config) resolve() error {
	def, ok := providers[c.Provider]
	if !ok {
		return common.NewAppError("LLM_PROVIDER",
			fmt.Sprintf("unsupported provider %q", c.Provider), common.ErrInvalidInput)
	}
	if c.BaseURL == "" {
		c.BaseURL = def.baseURL
	}
	if c.APIKey == "" {
		if def.staticKey != "" {
			c.APIKey = def.staticKey
		} else {
			c.APIKey = os.Getenv(def.apiKeyEnv)
		}
	}
	if c.APIKey == "" {
		return common.NewAppError("LLM_AUTH",
			fmt.Sprintf("%s environment variable is not set (required for provider %s)",
				def.apiKeyEnv, c.Provider),
			common.ErrAuth)
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	return nil
}
