package mapper

import (
	"time"

	"research-rag-be/internal/entity"
	"research-rag-be/internal/model"

	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func deletedAtToEntity(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func deletedAtToModel(at *time.Time, isDeleted bool) gorm.DeletedAt {
	if at != nil {
		return gorm.DeletedAt{Time: *at, Valid: true}
	}
	if isDeleted {
		return gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return gorm.DeletedAt{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:             s.Id,
		UserId:         s.UserId,
		Title:          s.Title,
		MessageCount:   s.MessageCount,
		TotalTokens:    s.TotalTokens,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAtToEntity(s.DeletedAt),
		IsDeleted:      s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:             s.Id,
		UserId:         s.UserId,
		Title:          s.Title,
		MessageCount:   s.MessageCount,
		TotalTokens:    s.TotalTokens,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAtToModel(s.DeletedAt, s.IsDeleted),
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:               msg.Id,
		ChatSessionId:    msg.ChatSessionId,
		Role:             msg.Role,
		Content:          msg.Content,
		Sequence:         msg.Sequence,
		Model:            msg.Model,
		PromptTokens:     msg.PromptTokens,
		CompletionTokens: msg.CompletionTokens,
		Degraded:         msg.Degraded,
		CreatedAt:        msg.CreatedAt,
		DeletedAt:        deletedAtToEntity(msg.DeletedAt),
		IsDeleted:        msg.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:               msg.Id,
		ChatSessionId:    msg.ChatSessionId,
		Role:             msg.Role,
		Content:          msg.Content,
		Sequence:         msg.Sequence,
		Model:            msg.Model,
		PromptTokens:     msg.PromptTokens,
		CompletionTokens: msg.CompletionTokens,
		Degraded:         msg.Degraded,
		CreatedAt:        msg.CreatedAt,
		DeletedAt:        deletedAtToModel(msg.DeletedAt, msg.IsDeleted),
	}
}

func (m *ChatMapper) ChatMessagesToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
