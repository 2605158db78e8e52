package retrieval

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"research-rag-be/pkg/embedding"
	"research-rag-be/pkg/llm"
	"research-rag-be/pkg/llm/openai"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	chunks []CorpusChunk
	err    error
}

func (f *fakeLoader) LoadCompletedChunks(_ context.Context, _ uuid.UUID) ([]CorpusChunk, error) {
	return f.chunks, f.err
}

type fakeLLM struct {
	text     string
	err      error
	messages []llm.Message
	opts     *llm.Options
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	f.messages = messages
	f.opts = llm.ApplyOptions(options...)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.text, Model: "fake", Usage: llm.Usage{TotalTokens: 42}}, nil
}

type zeroEmbedder struct{}

func (zeroEmbedder) EmbedText(context.Context, string) []float32 { return make([]float32, 8) }

func page(n int) *int { return &n }

func corpus(svc *embedding.Service, texts ...string) []CorpusChunk {
	out := make([]CorpusChunk, len(texts))
	for i, t := range texts {
		out[i] = CorpusChunk{
			ChunkID:       uuid.New(),
			DocumentID:    uuid.New(),
			DocumentTitle: "Paper",
			ChunkType:     "text",
			Content:       t,
			SectionTitle:  "Section",
			Page:          page(i + 1),
			Embedding:     svc.EmbedText(context.Background(), t),
		}
	}
	return out
}

func TestSearchRanksMethodologyFirst(t *testing.T) {
	svc := embedding.NewService(embedding.NewHashingProvider(256), nil)
	chunks := corpus(svc,
		"Protein folding benchmarks were collected from public crystallography archives.",
		"What method did the paper use? The paper used a contrastive method to train the encoder.",
		"Acknowledgements go to the funding agency and anonymous reviewers.",
	)
	chunks[1].Metadata = map[string]interface{}{"section_type": "methodology"}
	model := &fakeLLM{text: "**Answer**"}
	engine := NewEngine(&fakeLoader{chunks: chunks}, svc, model, nil)

	res, err := engine.Search(context.Background(), uuid.New(), "What method did the paper use?", 10)

	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.Equal(t, chunks[1].ChunkID, res.Results[0].ChunkID)
	assert.GreaterOrEqual(t, res.Results[0].Similarity, res.Results[1].Similarity)
	assert.GreaterOrEqual(t, res.Results[1].Similarity, res.Results[2].Similarity)
	assert.Equal(t, "**Answer**", res.Answer)
	assert.False(t, res.Degraded)
	assert.Equal(t, 42, res.Usage.TotalTokens)

	require.Len(t, model.messages, 2)
	assert.Contains(t, model.messages[1].Content, "1. [Paper, p.2, Section]: What method")
	assert.Equal(t, 800, model.opts.MaxTokens)
	assert.InDelta(t, 0.1, model.opts.Temperature, 1e-9)
}

func TestSearchLLMServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := embedding.NewService(embedding.NewHashingProvider(64), nil)
	chunks := corpus(svc, "graph neural networks for molecules", "attention is all you need")
	engine := NewEngine(&fakeLoader{chunks: chunks}, svc, openai.NewProvider(srv.URL, "m", "", time.Second), nil)

	res, err := engine.Search(context.Background(), uuid.New(), "neural networks", 5)

	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.True(t, res.Degraded)
	assert.Equal(t, SearchFallback("neural networks", 2), res.Answer)
}

func TestSearchEdgeCases(t *testing.T) {
	svc := embedding.NewService(embedding.NewHashingProvider(32), nil)
	withVectors := corpus(svc, "some indexed chunk text")
	noVectors := []CorpusChunk{{ChunkID: uuid.New(), Content: "unembedded"}}

	tests := []struct {
		name     string
		loader   CorpusLoader
		embedder Embedder
		query    string
		topK     int
		wantErr  error
		wantMsg  string
		degraded bool
	}{
		{name: "empty query", loader: &fakeLoader{}, embedder: svc, query: "   ", wantErr: ErrEmptyQuery},
		{name: "empty corpus", loader: &fakeLoader{}, embedder: svc, query: "q", wantMsg: MsgNoDocuments},
		{name: "no vectors", loader: &fakeLoader{chunks: noVectors}, embedder: svc, query: "q", wantMsg: MsgNoResults},
		{name: "query not embedded", loader: &fakeLoader{chunks: withVectors}, embedder: zeroEmbedder{}, query: "q", wantMsg: MsgEmbeddingUnavailable, degraded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeLLM{text: "unused"}
			res, err := NewEngine(tt.loader, tt.embedder, model, nil).Search(context.Background(), uuid.New(), tt.query, tt.topK)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, res.Results)
			assert.NotNil(t, res.Results)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.Equal(t, tt.wantMsg, res.Answer)
			assert.Equal(t, tt.degraded, res.Degraded)
			assert.Nil(t, model.messages, "llm must not be called")
		})
	}
}

func TestSearchLoaderError(t *testing.T) {
	svc := embedding.NewService(embedding.NewHashingProvider(8), nil)
	_, err := NewEngine(&fakeLoader{err: errors.New("db down")}, svc, &fakeLLM{}, nil).
		Search(context.Background(), uuid.New(), "q", 3)
	assert.Error(t, err)
}

func TestSearchTopKAndMismatchedDimensions(t *testing.T) {
	svc := embedding.NewService(embedding.NewHashingProvider(32), nil)
	chunks := corpus(svc, "alpha beta", "beta gamma", "gamma delta", "delta epsilon")
	chunks = append(chunks, CorpusChunk{ChunkID: uuid.New(), Content: "old", Embedding: []float32{1, 0}})

	res, err := NewEngine(&fakeLoader{chunks: chunks}, svc, &fakeLLM{text: "ok"}, nil).
		Search(context.Background(), uuid.New(), "beta", 2)

	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
}

func TestRespond(t *testing.T) {
	svc := embedding.NewService(embedding.NewHashingProvider(64), nil)
	chunks := corpus(svc, "one", "two", "three", "four")
	model := &fakeLLM{text: "Sure."}
	engine := NewEngine(&fakeLoader{chunks: chunks}, svc, model, nil)
	history := []Turn{
		{Role: llm.RoleUser, Content: "h1"},
		{Role: llm.RoleAssistant, Content: "h2"},
		{Role: llm.RoleUser, Content: "h3"},
		{Role: llm.RoleAssistant, Content: "h4"},
		{Role: llm.RoleUser, Content: "h5"},
	}

	reply, err := engine.Respond(context.Background(), uuid.New(), "two", history)

	require.NoError(t, err)
	assert.Equal(t, "Sure.", reply.Text)
	assert.False(t, reply.Degraded)
	require.Len(t, model.messages, 3)
	assert.Equal(t, "Previous conversation context:\nAssistant: h2\nUser: h3\nAssistant: h4\nUser: h5", model.messages[1].Content)
	assert.Equal(t, 3, strings.Count(model.messages[2].Content, "[Paper, p."))
	assert.Equal(t, 600, model.opts.MaxTokens)
	assert.InDelta(t, 0.3, model.opts.Temperature, 1e-9)
}

func TestRespondFallbacks(t *testing.T) {
	svc := embedding.NewService(embedding.NewHashingProvider(16), nil)
	model := &fakeLLM{err: llm.Unavailable("test", errors.New("refused"))}

	reply, err := NewEngine(&fakeLoader{}, svc, model, nil).Respond(context.Background(), uuid.New(), "hello", nil)

	require.NoError(t, err)
	assert.Equal(t, MsgChatFallback, reply.Text)
	assert.True(t, reply.Degraded)
	require.Len(t, model.messages, 2)
	assert.Contains(t, model.messages[1].Content, "No specific documents found")
}

func TestRespondWithoutQueryVectorGroundsOnNothing(t *testing.T) {
	svc := embedding.NewService(embedding.NewHashingProvider(8), nil)
	chunks := corpus(svc, "indexed chunk about attention")
	model := &fakeLLM{text: "general answer"}

	reply, err := NewEngine(&fakeLoader{chunks: chunks}, zeroEmbedder{}, model, nil).
		Respond(context.Background(), uuid.New(), "what about attention?", nil)

	require.NoError(t, err)
	assert.Empty(t, reply.Results)
	assert.Equal(t, "general answer", reply.Text)
	assert.False(t, reply.Degraded)
	require.Len(t, model.messages, 2)
	assert.Contains(t, model.messages[1].Content, "No specific documents found")
}
