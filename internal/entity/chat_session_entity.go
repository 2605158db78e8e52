package entity

import (
	"time"

	"github.com/google/uuid"
)

const SessionTitleRunes = 60

type ChatSession struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Title          string
	MessageCount   int
	TotalTokens    int
	LastActivityAt time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// SessionTitle derives a session title from the first message.
func SessionTitle(firstMessage string) string {
	r := []rune(firstMessage)
	if len(r) <= SessionTitleRunes {
		return firstMessage
	}
	return string(r[:SessionTitleRunes-3]) + "..."
}
