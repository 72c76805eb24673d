package controller

import (
	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/pkg/serverutils"
	"jarvis-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	Archive(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	service          service.IChatService
	defaultCompanyId int64
}

func NewChatController(service service.IChatService, defaultCompanyId int64) IChatController {
	return &chatController{service: service, defaultCompanyId: defaultCompanyId}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/session", c.CreateSession)
	h.Get("/list", c.ListSessions)
	h.Post("/:id/archive", c.Archive)
	h.Post("/:id/restore", c.Restore)
	h.Post("/:id/clear", c.Clear)
	h.Get("/:id/messages", c.Messages)
	h.Post("/:id/message", c.SendMessage)
}

// currentUser reads the id placed by JwtMiddleware.
func currentUser(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user")
	}
	return userId, nil
}

// sessionParam treats a malformed id like a session that does not exist.
func sessionParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, &dto.NotFoundError{Resource: "chat session"}
	}
	return id, nil
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSession(ctx.Context(), userId, serverutils.CompanyID(ctx, c.defaultCompanyId), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chat session", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListSessions(ctx.Context(), userId, ctx.Query("state"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat sessions", res))
}

func (c *chatController) lifecycle(ctx *fiber.Ctx, op func(userId, sessionId uuid.UUID) error, message string) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}
	if err := op(userId, sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any](message, nil))
}

func (c *chatController) Archive(ctx *fiber.Ctx) error {
	return c.lifecycle(ctx, func(userId, sessionId uuid.UUID) error {
		return c.service.ArchiveSession(ctx.Context(), userId, sessionId)
	}, "Chat archived")
}

func (c *chatController) Restore(ctx *fiber.Ctx) error {
	return c.lifecycle(ctx, func(userId, sessionId uuid.UUID) error {
		return c.service.RestoreSession(ctx.Context(), userId, sessionId)
	}, "Chat restored")
}

func (c *chatController) Clear(ctx *fiber.Ctx) error {
	return c.lifecycle(ctx, func(userId, sessionId uuid.UUID) error {
		return c.service.ClearSession(ctx.Context(), userId, sessionId)
	}, "Chat cleared")
}

func (c *chatController) Messages(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetMessages(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat messages", res))
}

// SendMessage answers with the {success, response | error} envelope the chat widget reads.
func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	fail := func(err error) error {
		code, body := serverutils.MapError(err)
		return ctx.Status(code).JSON(dto.SendMessageResponse{Success: false, Error: body.Message})
	}

	userId, err := currentUser(ctx)
	if err != nil {
		return fail(err)
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return fail(err)
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fail(fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fail(err)
	}

	reply, err := c.service.SendMessage(ctx.Context(), userId, serverutils.CompanyID(ctx, c.defaultCompanyId), sessionId, &req)
	if err != nil {
		return fail(err)
	}

	return ctx.JSON(dto.SendMessageResponse{Success: true, Response: reply})
}
