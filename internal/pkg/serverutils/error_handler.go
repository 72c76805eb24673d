package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/pkg/assistant/engine"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns returned errors into the JSON envelope and recovers panics.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, fmt.Sprintf("internal error: %v", r)))
			}
		}()

		if err = ctx.Next(); err == nil {
			return nil
		}
		code, body := MapError(err)
		return ctx.Status(code).JSON(body)
	}
}

// MapError picks the status for an error returned by a handler.
func MapError(err error) (int, ErrorBody) {
	var (
		quota      *dto.QuotaExceededError
		notFound   *dto.NotFoundError
		badRequest *dto.BadRequestError
		provider   *engine.ProviderError
		validation validator.ValidationErrors
		fiberErr   *fiber.Error
	)

	switch {
	case errors.As(err, &quota):
		body := ErrorResponse(fiber.StatusTooManyRequests, quota.Error())
		body.Data = quota
		return fiber.StatusTooManyRequests, body
	case errors.As(err, &notFound), errors.Is(err, engine.ErrSessionNotFound):
		return fiber.StatusNotFound, ErrorResponse(fiber.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrEmptyMessage), errors.Is(err, engine.ErrAPIKeyMissing), errors.As(err, &badRequest):
		return fiber.StatusBadRequest, ErrorResponse(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validation):
		fields := make([]string, 0, len(validation))
		for _, fe := range validation {
			fields = append(fields, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fiber.StatusBadRequest, ErrorResponse(fiber.StatusBadRequest, strings.Join(fields, "; "))
	case errors.As(err, &provider):
		return fiber.StatusBadGateway, ErrorResponse(fiber.StatusBadGateway, err.Error())
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	default:
		return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, err.Error())
	}
}
