package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"research-rag-be/internal/dto"
	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/llm"
	"research-rag-be/pkg/rag/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRendersAnswerAndCaches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()
	_, err := env.documents.Upload(ctx, user, "paper.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)

	svc := NewSearchService(env.engine, retrieval.DefaultTopK, time.Minute, logger.NewNopLogger())
	res, err := svc.Search(ctx, user, &dto.SearchRequest{Query: "transformer attention"})
	require.NoError(t, err)

	require.Equal(t, 2, res.Count)
	assert.Equal(t, 1, *res.Results[0].Page)
	assert.Contains(t, res.LLMResponseHTML, "<strong>Attention Models</strong>")
	assert.False(t, res.Degraded)
	assert.Equal(t, "fake-model", res.Model)
	assert.Equal(t, 1, env.llm.calls())

	_, err = svc.Search(ctx, user, &dto.SearchRequest{Query: "  Transformer attention "})
	require.NoError(t, err)
	assert.Equal(t, 1, env.llm.calls(), "second search served from cache")

	svc.InvalidateUser(user.String())
	_, err = svc.Search(ctx, user, &dto.SearchRequest{Query: "transformer attention"})
	require.NoError(t, err)
	assert.Equal(t, 2, env.llm.calls())
}

func TestSearchDegradedIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()
	_, err := env.documents.Upload(ctx, user, "paper.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	env.llm.err = errors.Join(llm.ErrServiceUnavailable, errors.New("boom"))

	svc := NewSearchService(env.engine, retrieval.DefaultTopK, time.Minute, logger.NewNopLogger())
	for i := 0; i < 2; i++ {
		res, err := svc.Search(ctx, user, &dto.SearchRequest{Query: "convolution"})
		require.NoError(t, err)
		assert.True(t, res.Degraded)
		assert.Equal(t, retrieval.SearchFallback("convolution", res.Count), res.LLMResponse)
	}
	assert.Equal(t, 2, env.llm.calls())
}

func TestSearchEdgeCases(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSearchService(env.engine, retrieval.DefaultTopK, 0, logger.NewNopLogger())

	_, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "   "})
	requireAppError(t, err, 400)

	res, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "anything"})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.NotNil(t, res.Results)
	assert.Equal(t, retrieval.MsgNoDocuments, res.Message)
	assert.Zero(t, env.llm.calls())
}
