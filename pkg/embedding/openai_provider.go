package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// OpenAIProvider calls an OpenAI-compatible /v1/embeddings endpoint.
type OpenAIProvider struct {
	baseURL string
	model   string
	apiKey  string
	dim     int
	client  *http.Client
}

var _ Provider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(baseURL, model, apiKey string, dim int, timeout time.Duration) *OpenAIProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		dim:     dim,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIProvider) Dimension() int { return p.dim }
func (p *OpenAIProvider) Model() string  { return p.model }

func (p *OpenAIProvider) name() string { return "openai@" + p.baseURL }

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	payload, err := json.Marshal(openAIEmbedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, failed(p.name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed(p.name(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failed(p.name(), fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed openAIEmbedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, failed(p.name(), err)
	}
	if parsed.Error != nil {
		return nil, failed(p.name(), errors.New(parsed.Error.Message))
	}

	// servers may answer out of order
	sort.SliceStable(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })
	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = Normalize(d.Embedding)
	}
	if err := checkShape(p.name(), out, len(texts), p.dim); err != nil {
		return nil, err
	}
	return out, nil
}
