package dto

import (
	"time"

	"research-rag-be/pkg/rag/retrieval"

	"github.com/google/uuid"
)

// PageRequest is the optional limit/offset window of a list endpoint.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

type SendChatMessageRequest struct {
	SessionId *uuid.UUID `json:"session_id"`
	Message   string     `json:"message" validate:"required,max=4000"`
}

type ChatMessageResponse struct {
	Id               uuid.UUID `json:"id"`
	Role             string    `json:"role"`
	Content          string    `json:"content"`
	Sequence         int       `json:"sequence"`
	Model            *string   `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	Degraded         bool      `json:"degraded"`
	CreatedAt        time.Time `json:"created_at"`
}

type ChatSessionResponse struct {
	Id             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	MessageCount   int       `json:"message_count"`
	TotalTokens    int       `json:"total_tokens"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type SendChatMessageResponse struct {
	Session     ChatSessionResponse `json:"session"`
	UserMessage ChatMessageResponse `json:"user_message"`
	Reply       ChatMessageResponse `json:"reply"`
	Sources     []retrieval.Result  `json:"sources"`
	Degraded    bool                `json:"degraded"`
}
