package retrieval

import (
	"context"
	"errors"

	"research-rag-be/pkg/llm"

	"github.com/google/uuid"
)

var ErrEmptyQuery = errors.New("query must not be empty")

// CorpusChunk is a stored chunk together with its document title and vector.
// Embedding is empty when the chunk was stored without one.
type CorpusChunk struct {
	ChunkID       uuid.UUID
	DocumentID    uuid.UUID
	DocumentTitle string
	ChunkType     string
	Content       string
	SectionTitle  string
	Page          *int
	Metadata      map[string]interface{}
	Embedding     []float32
}

// CorpusLoader returns the chunks of the user's completed documents.
type CorpusLoader interface {
	LoadCompletedChunks(ctx context.Context, userID uuid.UUID) ([]CorpusChunk, error)
}

// Embedder embeds a query. A zero vector signals that embedding failed.
type Embedder interface {
	EmbedText(ctx context.Context, text string) []float32
}

type Result struct {
	ChunkID       uuid.UUID              `json:"chunk_id"`
	DocumentID    uuid.UUID              `json:"document_id"`
	DocumentTitle string                 `json:"document_title"`
	ChunkType     string                 `json:"chunk_type"`
	Content       string                 `json:"content"`
	SectionTitle  string                 `json:"section_title"`
	Page          *int                   `json:"page_number"`
	Similarity    float64                `json:"similarity"`
	Metadata      map[string]interface{} `json:"metadata"`
}

type SearchResult struct {
	Query   string
	Results []Result
	// Answer is the synthesised Markdown answer, or the fallback text.
	Answer string
	// Message explains an empty result set.
	Message  string
	Degraded bool
	Model    string
	Usage    llm.Usage
}

// Turn is one earlier message of a conversation.
type Turn struct {
	Role    string
	Content string
}

type Reply struct {
	Text     string
	Results  []Result
	Model    string
	Usage    llm.Usage
	Degraded bool
}
