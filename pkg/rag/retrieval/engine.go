package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/embedding"
	"research-rag-be/pkg/llm"

	"github.com/google/uuid"
)

const (
	moduleName   = "RETRIEVAL"
	DefaultTopK  = 10
	ChatTopK     = 5
	searchTokens = 800
	searchTemp   = 0.1
	chatTokens   = 600
	chatTemp     = 0.3
)

// Engine ranks a user's completed chunks against a query and asks the LLM
// for an answer grounded in the best matches.
type Engine struct {
	loader   CorpusLoader
	embedder Embedder
	llm      llm.Provider
	logger   logger.ILogger
	chatTopK int
}

type EngineOption func(*Engine)

// WithChatTopK sets how many chunks ground a chat reply. Non-positive values
// keep ChatTopK.
func WithChatTopK(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.chatTopK = n
		}
	}
}

func NewEngine(loader CorpusLoader, embedder Embedder, provider llm.Provider, log logger.ILogger, opts ...EngineOption) *Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}
	e := &Engine{loader: loader, embedder: embedder, llm: provider, logger: log, chatTopK: ChatTopK}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns ErrEmptyQuery for a blank query and an error only when the
// corpus cannot be loaded. Empty corpora, empty rankings and LLM failures all
// produce a well-formed result.
func (e *Engine) Search(ctx context.Context, userID uuid.UUID, query string, topK int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	out := &SearchResult{Query: query, Results: []Result{}}
	results, msg, err := e.rank(ctx, userID, query, topK)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		out.Message = msg
		out.Answer = msg
		out.Degraded = msg == MsgEmbeddingUnavailable
		return out, nil
	}
	out.Results = results

	completion, err := e.llm.Complete(ctx, buildSearchMessages(query, results),
		llm.WithMaxTokens(searchTokens), llm.WithTemperature(searchTemp))
	if err != nil {
		e.logger.Error(moduleName, "Answer synthesis failed, using fallback", map[string]interface{}{
			"user_id": userID.String(),
			"results": len(results),
			"error":   err.Error(),
		})
		out.Answer = SearchFallback(query, len(results))
		out.Degraded = true
		return out, nil
	}

	out.Answer = completion.Text
	out.Model = completion.Model
	out.Usage = completion.Usage
	return out, nil
}

// Respond answers a chat message using the top chunks for the message and
// the last few turns of history. It never fails because the LLM did.
func (e *Engine) Respond(ctx context.Context, userID uuid.UUID, message string, history []Turn) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyQuery
	}

	results, _, err := e.rank(ctx, userID, message, e.chatTopK)
	if err != nil {
		return nil, err
	}

	reply := &Reply{Results: results}
	completion, err := e.llm.Complete(ctx, buildChatMessages(message, history, results),
		llm.WithMaxTokens(chatTokens), llm.WithTemperature(chatTemp))
	if err != nil {
		e.logger.Error(moduleName, "Chat response failed, using fallback", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		reply.Text = MsgChatFallback
		reply.Degraded = true
		return reply, nil
	}

	reply.Text = completion.Text
	reply.Model = completion.Model
	reply.Usage = completion.Usage
	return reply, nil
}

// rank scores every chunk that has a vector and returns the best topK. When
// nothing can be ranked the second return value explains why.
func (e *Engine) rank(ctx context.Context, userID uuid.UUID, query string, topK int) ([]Result, string, error) {
	corpus, err := e.loader.LoadCompletedChunks(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("load chunks: %w", err)
	}
	if len(corpus) == 0 {
		e.logger.Warn(moduleName, "No chunks found for user", map[string]interface{}{"user_id": userID.String()})
		return []Result{}, MsgNoDocuments, nil
	}

	queryVec := e.embedder.EmbedText(ctx, query)
	if embedding.IsZero(queryVec) {
		return []Result{}, MsgEmbeddingUnavailable, nil
	}

	results := make([]Result, 0, len(corpus))
	skipped := 0
	for _, c := range corpus {
		if len(c.Embedding) == 0 {
			continue
		}
		if len(c.Embedding) != len(queryVec) {
			skipped++
			continue
		}
		results = append(results, Result{
			ChunkID:       c.ChunkID,
			DocumentID:    c.DocumentID,
			DocumentTitle: c.DocumentTitle,
			ChunkType:     c.ChunkType,
			Content:       c.Content,
			SectionTitle:  c.SectionTitle,
			Page:          c.Page,
			Similarity:    embedding.CosineSimilarity(queryVec, c.Embedding),
			Metadata:      c.Metadata,
		})
	}
	if skipped > 0 {
		e.logger.Warn(moduleName, "Skipped chunks with mismatched vector dimension", map[string]interface{}{
			"skipped":   skipped,
			"dimension": len(queryVec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if len(results) > topK {
		results = results[:topK]
	}
	e.logger.Debug(moduleName, "Ranked chunks", map[string]interface{}{
		"user_id": userID.String(),
		"corpus":  len(corpus),
		"ranked":  len(results),
	})
	if len(results) == 0 {
		return results, MsgNoResults, nil
	}
	return results, "", nil
}
