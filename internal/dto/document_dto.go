package dto

import (
	"time"

	"github.com/google/uuid"
)

const ChunkPreviewRunes = 500

type ListDocumentsRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=uploaded processing completed failed"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type ListChunksRequest struct {
	Type string `query:"type" validate:"omitempty,oneof=text table image reference"`
}

type UploadDocumentResponse struct {
	Id         uuid.UUID              `json:"id"`
	Title      string                 `json:"title"`
	Filename   string                 `json:"filename"`
	FileSize   int64                  `json:"file_size"`
	Status     string                 `json:"status"`
	ChunkCount int                    `json:"chunk_count"`
	ChunkStats map[string]interface{} `json:"chunk_stats,omitempty"`
	Duplicate  bool                   `json:"duplicate"`
	UploadedAt time.Time              `json:"uploaded_at"`
}

type DocumentResponse struct {
	Id          uuid.UUID              `json:"id"`
	Title       string                 `json:"title"`
	Filename    string                 `json:"filename"`
	FileSize    int64                  `json:"file_size"`
	Status      string                 `json:"status"`
	Metadata    map[string]interface{} `json:"metadata"`
	ChunkCount  int64                  `json:"chunk_count"`
	UploadedAt  time.Time              `json:"uploaded_at"`
	ProcessedAt *time.Time             `json:"processed_at"`
}

type ChunkResponse struct {
	Id           uuid.UUID              `json:"id"`
	ChunkIndex   int                    `json:"chunk_index"`
	ChunkType    string                 `json:"chunk_type"`
	Content      string                 `json:"content"`
	PageNumber   *int                   `json:"page_number"`
	SectionTitle string                 `json:"section_title"`
	BBox         []float64              `json:"bbox,omitempty"`
	Metadata     map[string]interface{} `json:"metadata"`
}

type ImageResponse struct {
	Id         uuid.UUID  `json:"id"`
	ChunkId    *uuid.UUID `json:"chunk_id"`
	ImagePath  string     `json:"image_path"`
	ImageType  string     `json:"image_type"`
	Caption    string     `json:"caption"`
	PageNumber int        `json:"page_number"`
	Format     string     `json:"format"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
}

// DocumentDetailResponse carries chunk previews truncated to ChunkPreviewRunes.
type DocumentDetailResponse struct {
	DocumentResponse
	Chunks []ChunkResponse `json:"chunks"`
	Images []ImageResponse `json:"images"`
}

type ClearDocumentsResponse struct {
	Deleted int `json:"deleted"`
}
