package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// DocumentChunk.Embedding is declared without a dimension; the migration
// pins it to the configured embedding dimension.
type DocumentChunk struct {
	Id           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId   uuid.UUID        `gorm:"type:uuid;not null;index:idx_chunks_document_index,priority:1"`
	ChunkIndex   int              `gorm:"not null;index:idx_chunks_document_index,priority:2"`
	ChunkType    string           `gorm:"type:varchar(20);not null"`
	Content      string           `gorm:"type:text;not null"`
	PageNumber   *int             `gorm:""`
	SectionTitle string           `gorm:"type:text"`
	BBox         datatypes.JSON   `gorm:"type:jsonb"`
	Embedding    *pgvector.Vector `gorm:"type:vector"`
	Metadata     datatypes.JSON   `gorm:"type:jsonb"`
	CreatedAt    time.Time        `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

type DocumentImage struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID      `gorm:"type:uuid;not null;index"`
	ChunkId    *uuid.UUID     `gorm:"type:uuid"`
	ImagePath  string         `gorm:"type:text"`
	ImageType  string         `gorm:"type:varchar(20)"`
	Caption    string         `gorm:"type:text"`
	PageNumber int            `gorm:"not null"`
	BBox       datatypes.JSON `gorm:"type:jsonb"`
	Format     string         `gorm:"type:varchar(20)"`
	Width      int
	Height     int
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DocumentImage) TableName() string {
	return "document_images"
}

// CorpusChunkRow is the scan target for chunks joined with their document.
type CorpusChunkRow struct {
	DocumentChunk
	DocumentTitle string
}
