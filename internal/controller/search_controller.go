package controller

import (
	"research-rag-be/internal/dto"
	"research-rag-be/internal/pkg/serverutils"
	"research-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService  service.ISearchService
	authMiddleware fiber.Handler
}

func NewSearchController(searchService service.ISearchService, authMiddleware fiber.Handler) ISearchController {
	return &searchController{
		searchService:  searchService,
		authMiddleware: authMiddleware,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Use(c.authMiddleware)
	h.Post("", c.Search)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search", res))
}
