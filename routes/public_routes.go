package routes

import (
	"github.com/learnlab/learnlab-backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/mentors", handlers.ListMentors)
	api.Get("/mentors/:mentorId", handlers.GetMentor)
	api.Get("/programs", handlers.ListPrograms)
	api.Get("/programs/:programId", handlers.GetProgram)
}
