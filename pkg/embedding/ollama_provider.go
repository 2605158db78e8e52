package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaProvider embeds through a local Ollama server (e.g. nomic-embed-text).
type OllamaProvider struct {
	baseURL string
	model   string
	dim     int
	client  *http.Client
}

var _ Provider = (*OllamaProvider)(nil)

func NewOllamaProvider(baseURL, model string, dim int, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		dim:     dim,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *OllamaProvider) Dimension() int { return p.dim }
func (p *OllamaProvider) Model() string  { return p.model }

func (p *OllamaProvider) name() string { return "ollama@" + p.baseURL }

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

func (p *OllamaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	payload, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, failed(p.name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed(p.name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, failed(p.name(), fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed ollamaEmbedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, failed(p.name(), err)
	}
	if parsed.Error != "" {
		return nil, failed(p.name(), fmt.Errorf("%s", parsed.Error))
	}
	if err := checkShape(p.name(), parsed.Embeddings, len(texts), p.dim); err != nil {
		return nil, err
	}

	// pgvector cosine distance assumes unit vectors
	out := make([][]float32, len(parsed.Embeddings))
	for i, v := range parsed.Embeddings {
		out[i] = Normalize(v)
	}
	return out, nil
}
