package controller

import (
	"research-rag-be/internal/dto"
	"research-rag-be/internal/pkg/serverutils"
	"research-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Chunks(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	authMiddleware  fiber.Handler
}

func NewDocumentController(documentService service.IDocumentService, authMiddleware fiber.Handler) IDocumentController {
	return &documentController{
		documentService: documentService,
		authMiddleware:  authMiddleware,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(c.authMiddleware)
	h.Post("upload", c.Upload)
	h.Get("", c.List)
	h.Delete("", c.Clear)
	h.Get(":id/chunks", c.Chunks)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func paramID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.BadRequest("invalid id")
	}
	return id, nil
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.BadRequest("file is required")
	}
	file, err := header.Open()
	if err != nil {
		return serverutils.BadRequest("file could not be read")
	}
	defer file.Close()

	res, err := c.documentService.Upload(ctx.UserContext(), userId, header.Filename, file)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if res.Duplicate {
		status = fiber.StatusOK
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Document processed", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ListDocumentsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.BadRequest("invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Chunks(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	var req dto.ListChunksRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.BadRequest("invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Chunks(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list chunks", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	if err := c.documentService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *documentController) Clear(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.Clear(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clear documents", res))
}
