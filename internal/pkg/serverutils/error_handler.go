package serverutils

import (
	"errors"

	"doc-chat-be/internal/service"
	"doc-chat-be/pkg/chat/navigation"
	"doc-chat-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors onto HTTP responses.
// Generation failures become a retryable 503 without internal detail;
// everything unclassified falls through to a bare 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		var stepErr *navigation.InvalidStepError
		var genErr *llm.GenerationError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &validationErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, validationErr.Message))

		case errors.As(err, &stepErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, stepErr.Error()))

		case errors.As(err, &genErr):
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success":   false,
				"code":      fiber.StatusServiceUnavailable,
				"message":   "The assistant is temporarily unavailable. Please retry.",
				"retryable": genErr.Retryable(),
			})

		case errors.Is(err, service.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, err.Error()))

		case errors.Is(err, service.ErrInvalidCredentials):
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))

		case errors.Is(err, service.ErrEmailTaken):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(fiber.StatusConflict, err.Error()))

		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))

		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
		}
	}
}
