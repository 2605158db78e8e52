package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"research-rag-be/internal/dto"
	"research-rag-be/internal/entity"
	"research-rag-be/internal/pkg/serverutils"
	"research-rag-be/internal/repository/memory"
	"research-rag-be/internal/repository/specification"
	"research-rag-be/pkg/events"
	"research-rag-be/pkg/pdf"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireAppError(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"paper.pdf", "paper.pdf"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
		{`C:\docs\my paper (v2).pdf`, "my_paper_v2_.pdf"},
		{"...", "document.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "deep learning survey", TitleFromFilename("deep_learning-survey.pdf"))
	assert.Equal(t, "Untitled document", TitleFromFilename(".pdf"))
}

func TestUploadProcessesDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()

	res, err := env.documents.Upload(ctx, user, "attention_paper.pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)

	assert.Equal(t, string(entity.DocumentCompleted), res.Status)
	assert.Equal(t, "Attention Models for Paper Retrieval", res.Title)
	assert.Equal(t, 2, res.ChunkCount)
	assert.False(t, res.Duplicate)
	assert.Equal(t, []string{events.DocumentProcessed}, env.publisher.types())

	detail, err := env.documents.Show(ctx, user, res.Id)
	require.NoError(t, err)
	assert.Equal(t, "attention paper", detail.Metadata["original_title"])
	assert.Equal(t, 2, detail.Metadata["page_count"])
	assert.NotContains(t, detail.Metadata, "file_path")
	assert.NotNil(t, detail.ProcessedAt)

	corpus, err := NewCorpusLoader(env.store).LoadCompletedChunks(ctx, user)
	require.NoError(t, err)
	require.Len(t, corpus, 2)
	for i, c := range corpus {
		assert.Len(t, c.Embedding, 384)
		assert.Equal(t, "Attention Models for Paper Retrieval", c.DocumentTitle)
		assert.Equal(t, i+1, *c.Page)
	}
}

func TestUploadDuplicateReturnsExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()

	first, err := env.documents.Upload(ctx, user, "a.pdf", strings.NewReader("same bytes"))
	require.NoError(t, err)
	second, err := env.documents.Upload(ctx, user, "b.pdf", strings.NewReader("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.True(t, second.Duplicate)
	assert.Equal(t, 2, second.ChunkCount)
	assert.Equal(t, 1, env.extractor.calls)
	assert.Equal(t, 1, dirEntries(t, env.uploadDir))

	other, err := env.documents.Upload(ctx, uuid.New(), "a.pdf", strings.NewReader("same bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, other.Id)
}

func TestUploadRejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
	}{
		{"not a pdf", "notes.docx", "x"},
		{"empty", "empty.pdf", ""},
		{"too large", "big.pdf", string(bytes.Repeat([]byte("a"), (1<<20)+1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.documents.Upload(context.Background(), uuid.New(), tt.filename, strings.NewReader(tt.body))
			requireAppError(t, err, 400)
			assert.Zero(t, dirEntries(t, env.uploadDir))
			assert.Zero(t, env.extractor.calls)
		})
	}
}

func TestUploadFailureMarksDocumentFailed(t *testing.T) {
	tests := []struct {
		name    string
		content *pdf.Content
		err     error
	}{
		{"unreadable", nil, fmt.Errorf("open: %w", pdf.ErrUnreadablePDF)},
		{"no chunks", &pdf.Content{PageCount: 1, Structure: pdf.Structure{AbstractStart: -1, ReferencesStart: -1}}, nil},
		{"extractor panic", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.extractor.content = tt.content
			env.extractor.err = tt.err
			if tt.content == nil && tt.err == nil {
				env.extractor.panic = "nil pointer dereference"
			}
			ctx := context.Background()
			user := uuid.New()

			_, err := env.documents.Upload(ctx, user, "broken.pdf", strings.NewReader("garbage"))
			requireAppError(t, err, 422)
			assert.Contains(t, err.Error(), "document processing failed")

			docs, err := env.documents.List(ctx, user, &dto.ListDocumentsRequest{})
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, string(entity.DocumentFailed), docs[0].Status)
			assert.NotEmpty(t, docs[0].Metadata["error"])
			assert.Zero(t, docs[0].ChunkCount)
			assert.Zero(t, dirEntries(t, env.uploadDir))
			assert.Equal(t, []string{events.DocumentFailed}, env.publisher.types())
		})
	}
}

func TestUploadConcurrentDuplicateReturnsExisting(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	user := uuid.New()

	seeded := newTestEnvWith(t, store, nil)
	winner, err := seeded.documents.Upload(ctx, user, "a.pdf", strings.NewReader("same bytes"))
	require.NoError(t, err)

	// the lookup misses as if the other upload had not committed yet
	racing := newTestEnvWith(t, store, &flakyFactory{Store: store, findMisses: 1})
	loser, err := racing.documents.Upload(ctx, user, "b.pdf", strings.NewReader("same bytes"))
	require.NoError(t, err)

	assert.True(t, loser.Duplicate)
	assert.Equal(t, winner.Id, loser.Id)
	assert.Equal(t, 2, loser.ChunkCount)
	assert.Zero(t, racing.extractor.calls)
	assert.Zero(t, dirEntries(t, racing.uploadDir))
}

func TestUploadMarkProcessingFailure(t *testing.T) {
	store := memory.NewStore()
	env := newTestEnvWith(t, store, &flakyFactory{Store: store, updateErrs: 1})
	ctx := context.Background()
	user := uuid.New()

	_, err := env.documents.Upload(ctx, user, "paper.pdf", strings.NewReader("%PDF-1.4 body"))
	requireAppError(t, err, 500)

	docs, err := env.documents.List(ctx, user, &dto.ListDocumentsRequest{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, string(entity.DocumentFailed), docs[0].Status)
	assert.Zero(t, env.extractor.calls)
	assert.Zero(t, dirEntries(t, env.uploadDir))
	assert.Equal(t, []string{events.DocumentFailed}, env.publisher.types())
}

func TestListFiltersAndOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := env.documents.Upload(ctx, user, "first.pdf", strings.NewReader("one"))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	env.extractor.err = pdf.ErrUnreadablePDF
	_, err = env.documents.Upload(ctx, user, "second.pdf", strings.NewReader("two"))
	require.Error(t, err)

	tests := []struct {
		name string
		req  dto.ListDocumentsRequest
		want []string
	}{
		{"all", dto.ListDocumentsRequest{}, []string{"second.pdf", "first.pdf"}},
		{"completed", dto.ListDocumentsRequest{Status: "completed"}, []string{"first.pdf"}},
		{"failed", dto.ListDocumentsRequest{Status: "failed"}, []string{"second.pdf"}},
		{"first page", dto.ListDocumentsRequest{Limit: 1}, []string{"second.pdf"}},
		{"second page", dto.ListDocumentsRequest{Limit: 1, Offset: 1}, []string{"first.pdf"}},
		{"offset only", dto.ListDocumentsRequest{Offset: 1}, []string{"first.pdf"}},
		{"past the end", dto.ListDocumentsRequest{Limit: 5, Offset: 2}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := env.documents.List(ctx, user, &tt.req)
			require.NoError(t, err)
			got := make([]string, len(docs))
			for i, d := range docs {
				got[i] = d.Filename
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = env.documents.List(ctx, user, &dto.ListDocumentsRequest{Status: "archived"})
	requireAppError(t, err, 400)
}

func TestShowTruncatesPreviewsAndChunksDoNot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()

	long := "Long body text about retrieval systems. " + words("retrieval", 120) + "."
	env.extractor.content = &pdf.Content{
		PageCount: 1,
		Blocks:    []pdf.TextBlock{{Index: 0, Page: 1, Text: long, Type: pdf.BlockBody}},
		Structure: pdf.Structure{AbstractStart: -1, ReferencesStart: -1},
	}
	res, err := env.documents.Upload(ctx, user, "long.pdf", strings.NewReader("long"))
	require.NoError(t, err)

	detail, err := env.documents.Show(ctx, user, res.Id)
	require.NoError(t, err)
	full, err := env.documents.Chunks(ctx, user, res.Id, &dto.ListChunksRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, full)
	require.Len(t, detail.Chunks, len(full))

	tables, err := env.documents.Chunks(ctx, user, res.Id, &dto.ListChunksRequest{Type: "table"})
	require.NoError(t, err)
	assert.Empty(t, tables)

	for i := range full {
		assert.Equal(t, i, full[i].ChunkIndex)
		assert.LessOrEqual(t, len([]rune(detail.Chunks[i].Content)), dto.ChunkPreviewRunes+3)
		if len([]rune(full[i].Content)) > dto.ChunkPreviewRunes {
			assert.True(t, strings.HasSuffix(detail.Chunks[i].Content, "..."))
		}
	}

	_, err = env.documents.Show(ctx, uuid.New(), res.Id)
	requireAppError(t, err, 404)
}

func TestDeleteAndClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()

	a, err := env.documents.Upload(ctx, user, "a.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = env.documents.Upload(ctx, user, "b.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	requireAppError(t, env.documents.Delete(ctx, uuid.New(), a.Id), 404)
	require.NoError(t, env.documents.Delete(ctx, user, a.Id))

	uow := env.store.NewUnitOfWork(ctx)
	n, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: a.Id})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, dirEntries(t, env.uploadDir))

	cleared, err := env.documents.Clear(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, cleared.Deleted)
	assert.Zero(t, dirEntries(t, env.uploadDir))

	docs, err := env.documents.List(ctx, user, nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, []string{
		events.DocumentProcessed, events.DocumentProcessed, events.DocumentDeleted, events.DocumentsCleared,
	}, env.publisher.types())
}
