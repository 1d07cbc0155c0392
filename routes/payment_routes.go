package routes

import (
	"github.com/learnlab/learnlab-backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Authenticated by signature, not JWT.
	api.Post("/payments/webhook", handlers.HandlePaymentWebhook)
}
