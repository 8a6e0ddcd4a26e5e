package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/plagcheck/internal/model"
)

// ollamaBaseURL is Ollama's OpenAI-compatible endpoint
const ollamaBaseURL = "http://localhost:11434/v1"

// NewProvider creates a provider for config. An empty provider returns
// (nil, nil): summaries are disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = ollamaBaseURL
		}
		if config.APIKey == "" {
			config.APIKey = "ollama"
		}
		if config.Model == "" {
			config.Model = "llama3.1"
		}
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		p.name = "ollama"
		return p, nil

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the application config into a provider config
func ConfigFromModel(cfg *model.Config) Config {
	c := DefaultConfig()
	c.Provider = cfg.LLM.Provider
	c.Model = cfg.LLM.Model
	c.APIKey = cfg.LLM.APIKey
	c.BaseURL = cfg.LLM.BaseURL
	if cfg.LLM.Timeout > 0 {
		c.Timeout = cfg.LLM.Timeout
	}
	if cfg.LLM.MaxTokens > 0 {
		c.MaxTokens = cfg.LLM.MaxTokens
	}
	c.HTTPProxy = cfg.HTTP.HTTPProxy
	c.HTTPSProxy = cfg.HTTP.HTTPSProxy
	c.NoProxy = cfg.HTTP.NoProxy
	return c
}
