package controller

import (
	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/pkg/serverutils"
	"doc-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	ProcessChat(ctx *fiber.Ctx) error
	GetSessionInfo(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.ProcessChat)
	h.Get("/session/:id", c.GetSessionInfo)
	h.Delete("/session/:id", c.DeleteSession)
}

func (c *chatController) ProcessChat(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	var userRef *uuid.UUID
	if err == nil {
		userRef = &userId
	}

	var req dto.ProcessChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.ProcessChat(ctx.Context(), userRef, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process chat", res))
}

func (c *chatController) GetSessionInfo(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing session id")
	}

	res, err := c.chatService.GetSessionInfo(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing session id")
	}

	if err := c.chatService.DeleteSession(ctx.Context(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete session", struct{}{}))
}
