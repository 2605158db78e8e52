package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_documents_user_hash,priority:1"`
	Title       string         `gorm:"type:text;not null"`
	Filename    string         `gorm:"type:text;not null"`
	ContentHash string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_documents_user_hash,priority:2"`
	FileSize    int64          `gorm:"not null"`
	Status      string         `gorm:"type:varchar(20);not null;default:'uploaded';index"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
	UploadedAt  time.Time      `gorm:"autoCreateTime"`
	ProcessedAt *time.Time

	Chunks []DocumentChunk `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE"`
	Images []DocumentImage `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE"`
}

func (Document) TableName() string {
	return "documents"
}
