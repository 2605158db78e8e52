package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title          string         `gorm:"type:text;not null"`
	MessageCount   int            `gorm:"not null;default:0"`
	TotalTokens    int            `gorm:"not null;default:0"`
	LastActivityAt time.Time      `gorm:"not null;index"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

type ChatMessage struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_messages_session_sequence,priority:1"`
	Role             string         `gorm:"type:varchar(20);not null"`
	Content          string         `gorm:"type:text;not null"`
	Sequence         int            `gorm:"not null;uniqueIndex:idx_messages_session_sequence,priority:2"`
	Model            *string        `gorm:"type:varchar(100)"`
	PromptTokens     int            `gorm:"not null;default:0"`
	CompletionTokens int            `gorm:"not null;default:0"`
	Degraded         bool           `gorm:"not null;default:false"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
