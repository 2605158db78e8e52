package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"research-rag-be/internal/dto"
	"research-rag-be/internal/entity"
	"research-rag-be/internal/pkg/logger"
	"research-rag-be/internal/pkg/serverutils"
	"research-rag-be/internal/repository/specification"
	"research-rag-be/internal/repository/unitofwork"
	"research-rag-be/pkg/llm"
	"research-rag-be/pkg/rag/retrieval"

	"github.com/google/uuid"
)

const chatModule = "CHAT_SERVICE"

type IChatService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendChatMessageRequest) (*dto.SendChatMessageResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID, page *dto.PageRequest) ([]dto.ChatSessionResponse, error)
	ListMessages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, page *dto.PageRequest) ([]dto.ChatMessageResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *retrieval.Engine
	logger     logger.ILogger
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, engine *retrieval.Engine, log logger.ILogger) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		engine:     engine,
		logger:     log,
	}
}

func (c *chatService) findSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, serverutils.Internal(err)
	}
	if session == nil {
		return nil, serverutils.NotFound("chat session not found")
	}
	return session, nil
}

func (c *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendChatMessageRequest) (*dto.SendChatMessageResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, serverutils.BadRequest("message must not be empty")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	var (
		session *entity.ChatSession
		history []*entity.ChatMessage
		err     error
	)
	if req.SessionId != nil {
		session, err = c.findSession(ctx, uow, userId, *req.SessionId)
		if err != nil {
			return nil, err
		}
		history, err = uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.OrderBy{Field: "sequence"},
		)
		if err != nil {
			return nil, serverutils.Internal(err)
		}
	}

	turns := make([]retrieval.Turn, len(history))
	for i, m := range history {
		turns[i] = retrieval.Turn{Role: m.Role, Content: m.Content}
	}

	// the LLM call runs outside the transaction
	reply, err := c.engine.Respond(ctx, userId, text, turns)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			return nil, serverutils.BadRequest("message must not be empty")
		}
		return nil, serverutils.Internal(err)
	}

	now := time.Now()
	isNew := session == nil
	if isNew {
		session = &entity.ChatSession{
			Id:             uuid.New(),
			UserId:         userId,
			Title:          entity.SessionTitle(text),
			LastActivityAt: now,
			CreatedAt:      now,
		}
	}

	nextSeq := session.MessageCount + 1
	if n := len(history); n > 0 && history[n-1].Sequence >= nextSeq {
		nextSeq = history[n-1].Sequence + 1
	}

	userMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          llm.RoleUser,
		Content:       text,
		Sequence:      nextSeq,
		PromptTokens:  reply.Usage.PromptTokens,
		CreatedAt:     now,
	}
	assistantMsg := &entity.ChatMessage{
		Id:               uuid.New(),
		ChatSessionId:    session.Id,
		Role:             llm.RoleAssistant,
		Content:          reply.Text,
		Sequence:         nextSeq + 1,
		CompletionTokens: reply.Usage.CompletionTokens,
		Degraded:         reply.Degraded,
		CreatedAt:        now,
	}
	if reply.Model != "" {
		model := reply.Model
		assistantMsg.Model = &model
	}

	session.MessageCount = nextSeq + 1
	session.TotalTokens += reply.Usage.TotalTokens
	session.LastActivityAt = now

	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.Internal(err)
	}
	defer uow.Rollback()

	if isNew {
		err = uow.ChatSessionRepository().Create(ctx, session)
	} else {
		err = uow.ChatSessionRepository().Update(ctx, session)
	}
	if err != nil {
		return nil, serverutils.Internal(err)
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, serverutils.Internal(err)
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return nil, serverutils.Internal(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, serverutils.Internal(err)
	}

	c.logger.Info(chatModule, "Chat message answered", map[string]interface{}{
		"session_id": session.Id.String(),
		"sources":    len(reply.Results),
		"degraded":   reply.Degraded,
	})

	sources := reply.Results
	if sources == nil {
		sources = []retrieval.Result{}
	}
	return &dto.SendChatMessageResponse{
		Session:     toSessionResponse(session),
		UserMessage: toMessageResponse(userMsg),
		Reply:       toMessageResponse(assistantMsg),
		Sources:     sources,
		Degraded:    reply.Degraded,
	}, nil
}

func (c *chatService) ListSessions(ctx context.Context, userId uuid.UUID, page *dto.PageRequest) ([]dto.ChatSessionResponse, error) {
	specs := []specification.Specification{
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "last_activity_at", Desc: true},
	}
	if page != nil {
		specs = append(specs, paginate(page.Limit, page.Offset)...)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, serverutils.Internal(err)
	}

	out := make([]dto.ChatSessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionResponse(s)
	}
	return out, nil
}

func (c *chatService) ListMessages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, page *dto.PageRequest) ([]dto.ChatMessageResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if _, err := c.findSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "sequence"},
	}
	if page != nil {
		specs = append(specs, paginate(page.Limit, page.Offset)...)
	}
	messages, err := uow.ChatMessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, serverutils.Internal(err)
	}

	out := make([]dto.ChatMessageResponse, len(messages))
	for i, m := range messages {
		out[i] = toMessageResponse(m)
	}
	return out, nil
}

// DeleteSession tombstones the session and its messages together.
func (c *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if _, err := c.findSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return serverutils.Internal(err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return serverutils.Internal(err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return serverutils.Internal(err)
	}
	return uow.Commit()
}

func toSessionResponse(s *entity.ChatSession) dto.ChatSessionResponse {
	return dto.ChatSessionResponse{
		Id:             s.Id,
		Title:          s.Title,
		MessageCount:   s.MessageCount,
		TotalTokens:    s.TotalTokens,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
	}
}

func toMessageResponse(m *entity.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		Id:               m.Id,
		Role:             m.Role,
		Content:          m.Content,
		Sequence:         m.Sequence,
		Model:            m.Model,
		PromptTokens:     m.PromptTokens,
		CompletionTokens: m.CompletionTokens,
		Degraded:         m.Degraded,
		CreatedAt:        m.CreatedAt,
	}
}
