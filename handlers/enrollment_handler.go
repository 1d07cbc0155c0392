package handlers

import (
	"errors"
	"log"

	config "github.com/learnlab/learnlab-backend/configs"
	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/learnlab/learnlab-backend/notifications"
	"github.com/learnlab/learnlab-backend/payments"
	"github.com/learnlab/learnlab-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func enrollmentService() *services.EnrollmentService {
	return services.NewEnrollmentService(
		services.NewGormEnrollmentStore(database.DB),
		payments.NewClientFromEnv(),
		config.ConfigOr("PAYMENT_CURRENCY", "INR"),
	)
}

type InitiateEnrollmentRequest struct {
	ProgramID string `json:"program_id" validate:"required,uuid"`
}

func InitiateEnrollment(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))

	var req InitiateEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	programID, _ := uuid.Parse(req.ProgramID)

	checkout, err := enrollmentService().Initiate(studentID, programID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyEnrolled) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You are already enrolled in this program"})
		}
		if errors.Is(err, services.ErrProgramUnavailable) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program is not available for enrollment"})
		}
		log.Printf("🔥 Failed to initiate enrollment payment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Payment could not be initiated, please try again."})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"checkout": checkout,
		"key_id":   config.Config("RAZORPAY_KEY_ID"),
	})
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

func VerifyEnrollmentPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	enrollment, err := enrollmentService().ConfirmPayment(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment verification failed"})
		}
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found for this order"})
		}
		// Money has moved; the message carries the payment reference.
		log.Printf("🔥 CRITICAL: Failed to settle order %s: %v", req.OrderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var student models.User
	if err := database.DB.First(&student, "id = ?", enrollment.StudentID).Error; err == nil {
		go notifications.SendEmail(student.FullName, student.Email, "Enrollment Confirmed!",
			"<h1>Success!</h1><p>Your payment was received and your enrollment is now active. Happy learning!</p>")
	}

	publishEvent("enrollments", "UPDATE", enrollment.StudentID, enrollment)

	return c.JSON(fiber.Map{"message": "Enrollment confirmed", "enrollment": enrollment})
}

type PaymentFailureRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	Reason      string `json:"reason" validate:"required,oneof=cancelled failed"`
	Description string `json:"description,omitempty"`
}

// ReportPaymentFailure records a dismissed checkout modal or a gateway-side
// failure so the pending enrollment does not linger.
func ReportPaymentFailure(c *fiber.Ctx) error {
	var req PaymentFailureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Reason == "failed" && req.Description != "" {
		log.Printf("Payment gateway failure for order %s: %s", req.OrderID, req.Description)
	}

	if err := enrollmentService().MarkFailed(req.OrderID, req.Reason); err != nil {
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found for this order"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment failure"})
	}

	return c.JSON(fiber.Map{"message": "Payment failure recorded"})
}

func GetMyEnrollments(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))

	var enrollments []models.Enrollment
	database.DB.
		Preload("Program").
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&enrollments)

	return c.JSON(enrollments)
}

type UpdateProgressRequest struct {
	Progress *int `json:"progress_percentage" validate:"required,min=0,max=100"`
}

func UpdateEnrollmentProgress(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))
	enrollmentID, err := uuid.Parse(c.Params("enrollmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment ID"})
	}

	var req UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	enrollment, err := enrollmentService().UpdateProgress(enrollmentID, studentID, *req.Progress)
	if err != nil {
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(enrollment)
}

func GetEnrollmentReceipt(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))
	enrollmentID := c.Params("enrollmentId")

	var enrollment models.Enrollment
	if err := database.DB.Preload("Program").First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
	}
	if enrollment.StudentID != studentID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your enrollment"})
	}
	if enrollment.PaymentStatus != "completed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Receipts are only available for completed payments"})
	}

	if enrollment.ReceiptURL != nil {
		return c.JSON(fiber.Map{"receipt_url": *enrollment.ReceiptURL})
	}

	var student models.User
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	url, err := services.GenerateEnrollmentReceipt(enrollment, student, enrollment.Program)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt for enrollment %s: %v", enrollment.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate receipt"})
	}

	enrollment.ReceiptURL = &url
	database.DB.Save(&enrollment)

	return c.JSON(fiber.Map{"receipt_url": url})
}
