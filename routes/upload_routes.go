package routes

import (
	"github.com/learnlab/learnlab-backend/handlers"
	"github.com/learnlab/learnlab-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	files := api.Group("/files", middleware.Protected())
	files.Get("", handlers.ListMyFiles)
	files.Post("", handlers.UploadFile)
	files.Delete("/:fileId", handlers.DeleteFile)
	files.Get("/upload-signature", handlers.GenerateUploadSignature)
}
