package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage carries the token counters reported by the backend.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of a single completion call.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// DefaultOptions are applied before caller options.
func DefaultOptions() *Options {
	return &Options{
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

// ApplyOptions folds opts over the defaults.
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Complete sends the ordered messages to the model and returns the generated text
	Complete(ctx context.Context, messages []Message, options ...Option) (*Completion, error)
}

// Generate sends a single user prompt (convenience helper)
func Generate(ctx context.Context, p Provider, prompt string, options ...Option) (*Completion, error) {
	return p.Complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, options...)
}
