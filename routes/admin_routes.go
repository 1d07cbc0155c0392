package routes

import (
	"github.com/learnlab/learnlab-backend/handlers"
	"github.com/learnlab/learnlab-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId", handlers.AdminUpdateUser)
	users.Delete("/:userId", handlers.AdminDeleteUser)

	admin.Get("/sessions", handlers.AdminGetAllSessions)

	earnings := admin.Group("/earnings")
	earnings.Get("", handlers.AdminListEarnings)
	earnings.Post("/:earningId/mark-paid", handlers.MarkEarningPaid)
}
