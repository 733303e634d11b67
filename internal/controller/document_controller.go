package controller

import (
	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/pkg/serverutils"
	"doc-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Upload)
	h.Get("", c.GetAll)
	h.Delete(":id", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.UploadDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Upload(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document queued for ingestion", res))
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.documentService.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", struct{}{}))
}
