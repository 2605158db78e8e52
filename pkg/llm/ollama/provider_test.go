package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"research-rag-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, 600, req.Options.NumPredict)
		assert.Equal(t, "assistant", req.Messages[1].Role)
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"answer"},"done":true,"prompt_eval_count":12,"eval_count":4}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", time.Second)
	res, err := p.Complete(context.Background(), []llm.Message{
		{Role: "user", Content: "q"},
		{Role: "model", Content: "earlier"},
	}, llm.WithMaxTokens(600))

	require.NoError(t, err)
	assert.Equal(t, "answer", res.Text)
	assert.Equal(t, 16, res.Usage.TotalTokens)
}

func TestOllamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "llama3", time.Second).Complete(context.Background(), []llm.Message{{Role: "user", Content: "q"}})
	assert.ErrorIs(t, err, llm.ErrServiceUnavailable)
}
