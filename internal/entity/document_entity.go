package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "uploaded"
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

var ErrInvalidStatusTransition = errors.New("invalid document status transition")

var allowedTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentUploaded:   {DocumentProcessing},
	DocumentProcessing: {DocumentCompleted, DocumentFailed},
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentUploaded, DocumentProcessing, DocumentCompleted, DocumentFailed:
		return true
	}
	return false
}

type Document struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	Filename    string
	ContentHash string
	FileSize    int64
	Status      DocumentStatus
	Metadata    map[string]interface{}
	UploadedAt  time.Time
	ProcessedAt *time.Time
}

// TransitionTo moves the document forward through
// uploaded -> processing -> completed|failed. Terminal states never change.
func (d *Document) TransitionTo(next DocumentStatus) error {
	for _, allowed := range allowedTransitions[d.Status] {
		if allowed == next {
			d.Status = next
			if next == DocumentCompleted || next == DocumentFailed {
				now := time.Now()
				d.ProcessedAt = &now
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, d.Status, next)
}

// SetMeta sets one metadata key, allocating the map when needed.
func (d *Document) SetMeta(key string, value interface{}) {
	if d.Metadata == nil {
		d.Metadata = map[string]interface{}{}
	}
	d.Metadata[key] = value
}

type DocumentChunk struct {
	Id           uuid.UUID
	DocumentId   uuid.UUID
	ChunkIndex   int
	ChunkType    string
	Content      string
	PageNumber   *int
	SectionTitle string
	BBox         []float64
	Embedding    []float32
	Metadata     map[string]interface{}
	CreatedAt    time.Time
}

type DocumentImage struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ChunkId    *uuid.UUID
	ImagePath  string
	ImageType  string
	Caption    string
	PageNumber int
	BBox       []float64
	Format     string
	Width      int
	Height     int
	CreatedAt  time.Time
}

// CorpusChunk is a chunk joined with its document title, as read for search.
type CorpusChunk struct {
	DocumentChunk
	DocumentTitle string
}
