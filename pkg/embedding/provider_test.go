package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestOllamaProviderEmbed(t *testing.T) {
	var got ollamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"embeddings":[[3,4,0],[0,0,2]]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "nomic", 3, time.Second)
	vecs, err := p.Embed(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, "nomic", got.Model)
	assert.Equal(t, []string{"a", "b"}, got.Input)
	require.Len(t, vecs, 2)
	assert.InDelta(t, 0.6, vecs[0][0], 1e-6)
	assert.InDelta(t, 0.8, vecs[0][1], 1e-6)
	assert.InDelta(t, 1.0, vecs[1][2], 1e-6)
}

func TestOpenAIProviderEmbedReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL+"/", "m", "k", 2, time.Second)
	vecs, err := p.Embed(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vecs[0])
	assert.Equal(t, []float32{0, 1}, vecs[1])
}

func TestProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: 500, body: `boom`},
		{name: "invalid json", status: 200, body: `{nope`},
		{name: "wrong count", status: 200, body: `{"embeddings":[[1,0]]}`},
		{name: "wrong dimension", status: 200, body: `{"embeddings":[[1,0,0],[1,0,0]]}`},
		{name: "error field", status: 200, body: `{"error":"model not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewOllamaProvider(srv.URL, "m", 2, time.Second)
			_, err := p.Embed(context.Background(), []string{"a", "b"})
			assert.True(t, errors.Is(err, ErrEmbeddingFailed), "got %v", err)
		})
	}
}

func TestHashingProviderDeterministic(t *testing.T) {
	p := NewHashingProvider(64)
	ctx := context.Background()

	a, err := p.Embed(ctx, []string{"Transformer attention models", "transformer ATTENTION models!"})
	require.NoError(t, err)
	b, err := p.Embed(ctx, []string{"Transformer attention models"})
	require.NoError(t, err)

	assert.Len(t, a[0], 64)
	assert.Equal(t, a[0], b[0])
	assert.Equal(t, a[0], a[1], "case and punctuation are ignored")
	assert.InDelta(t, 1.0, norm(a[0]), 1e-5)

	other, err := p.Embed(ctx, []string{"protein folding benchmark"})
	require.NoError(t, err)
	assert.Less(t, CosineSimilarity(a[0], other[0]), 0.99)
}

func TestHashingProviderEmptyText(t *testing.T) {
	vecs, err := NewHashingProvider(8).Embed(context.Background(), []string{""})
	require.NoError(t, err)
	assert.True(t, IsZero(vecs[0]))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{1, 2}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 3}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-2, 0}, want: -1},
		{name: "zero norm", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
