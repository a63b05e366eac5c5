package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/gamevault/chat-service/internal/config"
	"github.com/gamevault/chat-service/internal/ws"
)

func NewServer(cfg *config.Config, h *Handler, wsSrv *ws.Server) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "chat-service",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
	})

	authed := app.Group("/api/v1", JWTAuth(cfg.JWT.HSSecret))

	conv := authed.Group("/conversations")
	conv.Post("/", h.CreateConversation)
	conv.Get("/", h.ListConversations)
	conv.Delete("/:id", h.DissolveConversation)
	conv.Get("/:id/members", h.ListMembers)
	conv.Post("/:id/members", h.AddMember)
	conv.Delete("/:id/members/:user_id", h.RemoveMember)
	conv.Post("/:id/messages", h.SendMessage)
	conv.Get("/:id/messages", h.ConversationHistory)

	priv := authed.Group("/private")
	priv.Post("/:user_id/messages", h.SendPrivateMessage)
	priv.Get("/:user_id/messages", h.PrivateHistory)

	app.Use("/ws", JWTAuth(cfg.JWT.HSSecret), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsSrv.HandleWS))

	return app
}
