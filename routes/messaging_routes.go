package routes

import (
	"github.com/learnlab/learnlab-backend/handlers"
	"github.com/learnlab/learnlab-backend/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	messages := api.Group("/messages", middleware.Protected())
	messages.Post("", handlers.SendMessage)
	messages.Get("/conversations", handlers.GetConversations)
	messages.Get("/with/:partnerId", handlers.GetMessagesWith)
	messages.Post("/with/:partnerId/read", handlers.MarkConversationRead)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeWs))
}
