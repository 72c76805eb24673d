package controller

import (
	"fmt"

	"jarvis-ai-be/internal/pkg/serverutils"
	"jarvis-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExportController interface {
	RegisterRoutes(r fiber.Router)
	Export(ctx *fiber.Ctx) error
}

type exportController struct {
	service service.IExportService
}

func NewExportController(service service.IExportService) IExportController {
	return &exportController{service: service}
}

func (c *exportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/export")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/:id", c.Export)
}

func (c *exportController) Export(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	file, err := c.service.ExportSession(ctx.Context(), userId, sessionId, ctx.Query("format", "json"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, file.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return ctx.Send(file.Body)
}
