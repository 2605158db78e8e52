package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"research-rag-be/pkg/llm"
)

// Provider talks to any OpenAI-compatible chat completions server
// (LM Studio, llama.cpp server, vLLM, hosted APIs).
type Provider struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

var _ llm.Provider = (*Provider)(nil)

func NewProvider(baseURL, model, apiKey string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name identifies the backend in logs and errors.
func (p *Provider) Name() string {
	return "openai@" + p.baseURL
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *llm.Usage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *Provider) Complete(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	opts := llm.ApplyOptions(options...)
	model := p.model
	if opts.Model != "" {
		model = opts.Model
	}

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, llm.Unavailable(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.Unavailable(p.Name(), fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, llm.Unavailable(p.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, llm.Malformed(p.Name(), err)
	}
	if parsed.Error != nil {
		return nil, llm.Malformed(p.Name(), errors.New(parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return nil, llm.Malformed(p.Name(), errors.New("no choices in response"))
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return nil, llm.Malformed(p.Name(), errors.New("empty message content"))
	}

	out := &llm.Completion{Text: text, Model: parsed.Model}
	if out.Model == "" {
		out.Model = model
	}
	if parsed.Usage != nil {
		out.Usage = *parsed.Usage
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
