package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id               uuid.UUID
	ChatSessionId    uuid.UUID
	Role             string
	Content          string
	Sequence         int
	Model            *string
	PromptTokens     int
	CompletionTokens int
	Degraded         bool
	CreatedAt        time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}
