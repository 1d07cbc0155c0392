package routes

import (
	"github.com/learnlab/learnlab-backend/handlers"
	"github.com/learnlab/learnlab-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProgramRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	programs := api.Group("/programs", middleware.Protected())
	programs.Post("", handlers.CreateProgram)
	programs.Put("/:programId", handlers.UpdateProgram)
	programs.Delete("/:programId", handlers.DeactivateProgram)
}
