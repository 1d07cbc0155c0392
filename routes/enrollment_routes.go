package routes

import (
	"github.com/learnlab/learnlab-backend/handlers"
	"github.com/learnlab/learnlab-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func EnrollmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	enrollments := api.Group("/enrollments", middleware.Protected())
	enrollments.Get("/me", handlers.GetMyEnrollments)
	enrollments.Post("/initiate", handlers.InitiateEnrollment)
	enrollments.Post("/verify", handlers.VerifyEnrollmentPayment)
	enrollments.Post("/payment-failed", handlers.ReportPaymentFailure)
	enrollments.Patch("/:enrollmentId/progress", handlers.UpdateEnrollmentProgress)
	enrollments.Get("/:enrollmentId/receipt", handlers.GetEnrollmentReceipt)
}
