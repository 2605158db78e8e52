package factory

import (
	"fmt"
	"time"

	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/llm"
	"research-rag-be/pkg/llm/ollama"
	"research-rag-be/pkg/llm/openai"
)

// Backend describes one LLM endpoint.
type Backend struct {
	Type    string // "openai" or "ollama"
	BaseURL string
	Model   string
	APIKey  string
}

type Settings struct {
	Primary           Backend
	Fallback          Backend // empty BaseURL disables failover
	Timeout           time.Duration
	RequestsPerSecond float64
}

func NewLLMProvider(b Backend, timeout time.Duration) (llm.Provider, error) {
	switch b.Type {
	case "openai", "":
		if b.BaseURL == "" {
			return nil, fmt.Errorf("openai-compatible provider requires a base url")
		}
		return openai.NewProvider(b.BaseURL, b.Model, b.APIKey, timeout), nil
	case "ollama":
		baseURL := b.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, b.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", b.Type)
	}
}

// NewProvider builds the primary backend, wraps it with failover when a fallback
// is configured and finally with the rate limiter.
func NewProvider(s Settings, log logger.ILogger) (llm.Provider, error) {
	primary, err := NewLLMProvider(s.Primary, s.Timeout)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}

	var provider llm.Provider = primary
	if s.Fallback.BaseURL != "" {
		secondary, err := NewLLMProvider(s.Fallback, s.Timeout)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		provider = llm.NewFailover(primary, secondary, log)
	}

	return llm.NewRateLimited(provider, s.RequestsPerSecond, 2), nil
}
