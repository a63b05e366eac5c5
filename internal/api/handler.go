package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gamevault/chat-service/internal/apperr"
	"github.com/gamevault/chat-service/internal/service"
)

type Handler struct {
	conversations *service.ConversationService
	messages      *service.MessagingService
}

func NewHandler(conv *service.ConversationService, msg *service.MessagingService) *Handler {
	return &Handler{conversations: conv, messages: msg}
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindNoAuth:
		return fiber.StatusForbidden
	case apperr.KindOperation:
		return fiber.StatusConflict
	case apperr.KindParams:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{"code": apperr.KindUnknown.String(), "message": "internal error"},
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{"code": apperr.KindOf(err).String(), "message": err.Error()},
	})
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

type createConversationReq struct {
	Title string `json:"title"`
}

func (h *Handler) CreateConversation(c *fiber.Ctx) error {
	var req createConversationReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Params("invalid request body"))
	}
	conv, err := h.conversations.Create(c.Context(), req.Title, callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

func (h *Handler) ListConversations(c *fiber.Ctx) error {
	convs, err := h.conversations.ListForUser(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"conversations": convs})
}

func (h *Handler) DissolveConversation(c *fiber.Ctx) error {
	if err := h.conversations.Dissolve(c.Context(), c.Params("id"), callerID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "dissolved"})
}

func (h *Handler) ListMembers(c *fiber.Ctx) error {
	members, err := h.conversations.Members(c.Context(), c.Params("id"), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

type addMemberReq struct {
	UserID string `json:"user_id"`
}

func (h *Handler) AddMember(c *fiber.Ctx) error {
	var req addMemberReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Params("invalid request body"))
	}
	m, err := h.conversations.AddMember(c.Context(), c.Params("id"), req.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	if err := h.conversations.RemoveMember(c.Context(), c.Params("id"), callerID(c), c.Params("user_id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "removed"})
}

type sendMessageReq struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Params("invalid request body"))
	}
	view, err := h.messages.Send(c.Context(), c.Params("id"), req.Content, req.MessageType, callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *Handler) ConversationHistory(c *fiber.Ctx) error {
	page, size := pagination(c)
	views, err := h.messages.History(c.Context(), c.Params("id"), callerID(c), page, size)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": views, "page": page, "size": size})
}

func (h *Handler) SendPrivateMessage(c *fiber.Ctx) error {
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Params("invalid request body"))
	}
	view, err := h.messages.SendPrivate(c.Context(), c.Params("user_id"), req.Content, req.MessageType, callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *Handler) PrivateHistory(c *fiber.Ctx) error {
	page, size := pagination(c)
	views, err := h.messages.PrivateHistory(c.Context(), callerID(c), c.Params("user_id"), page, size)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": views, "page": page, "size": size})
}

func pagination(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil {
		page = 0
	}
	size, err := strconv.Atoi(c.Query("size", "50"))
	if err != nil {
		size = 50
	}
	return page, size
}
