package controller

import (
	"research-rag-be/internal/dto"
	"research-rag-be/internal/pkg/serverutils"
	"research-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService    service.IChatService
	authMiddleware fiber.Handler
}

func NewChatController(chatService service.IChatService, authMiddleware fiber.Handler) IChatController {
	return &chatController{
		chatService:    chatService,
		authMiddleware: authMiddleware,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(c.authMiddleware)
	h.Post("message", c.SendMessage)
	h.Get("sessions", c.ListSessions)
	h.Get("sessions/:id/messages", c.ListMessages)
	h.Delete("sessions/:id", c.DeleteSession)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	page, err := parsePage(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.ListSessions(ctx.UserContext(), userId, page)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	page, err := parsePage(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.ListMessages(ctx.UserContext(), userId, id, page)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.DeleteSession(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func parsePage(ctx *fiber.Ctx) (*dto.PageRequest, error) {
	var page dto.PageRequest
	if err := ctx.QueryParser(&page); err != nil {
		return nil, serverutils.BadRequest("invalid query")
	}
	if err := serverutils.ValidateRequest(page); err != nil {
		return nil, err
	}
	return &page, nil
}
