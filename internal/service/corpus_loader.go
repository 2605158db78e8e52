package service

import (
	"context"

	"research-rag-be/internal/repository/unitofwork"
	"research-rag-be/pkg/rag/retrieval"

	"github.com/google/uuid"
)

// corpusLoader reads a user's completed chunks through the unit of work.
type corpusLoader struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCorpusLoader(uowFactory unitofwork.RepositoryFactory) retrieval.CorpusLoader {
	return &corpusLoader{uowFactory: uowFactory}
}

func (l *corpusLoader) LoadCompletedChunks(ctx context.Context, userID uuid.UUID) ([]retrieval.CorpusChunk, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.DocumentChunkRepository().FindCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]retrieval.CorpusChunk, len(rows))
	for i, r := range rows {
		out[i] = retrieval.CorpusChunk{
			ChunkID:       r.Id,
			DocumentID:    r.DocumentId,
			DocumentTitle: r.DocumentTitle,
			ChunkType:     r.ChunkType,
			Content:       r.Content,
			SectionTitle:  r.SectionTitle,
			Page:          r.PageNumber,
			Metadata:      r.Metadata,
			Embedding:     r.Embedding,
		}
	}
	return out, nil
}
