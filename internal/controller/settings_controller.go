package controller

import (
	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/pkg/serverutils"
	"jarvis-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
	GetSettings(ctx *fiber.Ctx) error
	UpdateSettings(ctx *fiber.Ctx) error
	ListConfigurations(ctx *fiber.Ctx) error
	UpdateConfiguration(ctx *fiber.Ctx) error
	ReloadConfig(ctx *fiber.Ctx) error
}

type settingsController struct {
	service          service.ISettingsService
	defaultCompanyId int64
}

func NewSettingsController(service service.ISettingsService, defaultCompanyId int64) ISettingsController {
	return &settingsController{service: service, defaultCompanyId: defaultCompanyId}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	s := r.Group("/settings")
	s.Use(serverutils.JwtMiddleware)
	s.Get("", c.GetSettings)
	s.Post("", c.UpdateSettings)

	// Admin
	a := r.Group("/config")
	a.Use(serverutils.JwtMiddleware, serverutils.AdminOnly)
	a.Get("", c.ListConfigurations)
	a.Put("/:key", c.UpdateConfiguration)
	a.Post("/reload", c.ReloadConfig)
}

func (c *settingsController) GetSettings(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetSettings(ctx.Context(), userId, serverutils.CompanyID(ctx, c.defaultCompanyId))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get AI settings", res))
}

func (c *settingsController) UpdateSettings(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateSettings(ctx.Context(), userId, serverutils.CompanyID(ctx, c.defaultCompanyId), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Settings updated successfully", res))
}

func (c *settingsController) ListConfigurations(ctx *fiber.Ctx) error {
	res, err := c.service.ListConfigurations(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get AI configurations", res))
}

func (c *settingsController) UpdateConfiguration(ctx *fiber.Ctx) error {
	var req dto.UpdateAiConfigurationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateConfiguration(ctx.Context(), ctx.Params("key"), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Configuration updated", res))
}

func (c *settingsController) ReloadConfig(ctx *fiber.Ctx) error {
	res, err := c.service.ReloadConfig(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("AI configuration reloaded", res))
}
