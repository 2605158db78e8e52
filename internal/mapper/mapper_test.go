package mapper

import (
	"testing"
	"time"

	"research-rag-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMappingKeepsVectorAndMetadata(t *testing.T) {
	m := NewDocumentMapper()
	page := 3
	in := &entity.DocumentChunk{
		Id:         uuid.New(),
		DocumentId: uuid.New(),
		ChunkType:  "text",
		Content:    "body",
		PageNumber: &page,
		BBox:       []float64{1, 2, 3, 4},
		Embedding:  []float32{0.6, 0.8},
		Metadata:   map[string]interface{}{"word_count": 1},
	}

	out := m.ChunkToEntity(m.ChunkToModel(in))

	assert.Equal(t, in.Embedding, out.Embedding)
	assert.Equal(t, in.BBox, out.BBox)
	assert.Equal(t, 3, *out.PageNumber)
	assert.EqualValues(t, 1, out.Metadata["word_count"])
}

func TestChunkWithoutVectorMapsToNull(t *testing.T) {
	m := NewDocumentMapper()
	mod := m.ChunkToModel(&entity.DocumentChunk{Content: "x"})
	assert.Nil(t, mod.Embedding)
	assert.Nil(t, mod.BBox)
	assert.Nil(t, m.ChunkToEntity(mod).Embedding)
}

func TestDeletedSessionMapsTombstone(t *testing.T) {
	m := NewChatMapper()
	mod := m.ChatSessionToModel(&entity.ChatSession{Id: uuid.New(), IsDeleted: true})
	require.True(t, mod.DeletedAt.Valid)

	back := m.ChatSessionToEntity(mod)
	assert.True(t, back.IsDeleted)
	assert.WithinDuration(t, time.Now(), *back.DeletedAt, time.Minute)
}
