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
)

type gatewayWebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID          string `json:"id"`
				OrderID     string `json:"order_id"`
				Status      string `json:"status"`
				ErrorCode   string `json:"error_code"`
				ErrorReason string `json:"error_reason"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandlePaymentWebhook processes server-to-server gateway events. The
// signature over the raw body is verified before anything is trusted;
// deliveries are replay-safe because settlement is idempotent.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("X-Razorpay-Signature")
	secret := config.Config("RAZORPAY_WEBHOOK_SECRET")

	if err := payments.VerifyWebhookSignature(body, signature, secret); err != nil {
		log.Printf("🔥 Rejected webhook with invalid signature")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	var payload gatewayWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	payment := payload.Payload.Payment.Entity
	log.Printf("Received webhook event %s for order %s", payload.Event, payment.OrderID)

	switch payload.Event {
	case "payment.captured":
		enrollment, err := enrollmentService().SettleFromWebhook(payment.OrderID, payment.ID)
		if err != nil {
			if errors.Is(err, services.ErrEnrollmentNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found for this order"})
			}
			log.Printf("🔥 CRITICAL: Error settling webhook for order %s: %v", payment.OrderID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
		}

		var student models.User
		if err := database.DB.First(&student, "id = ?", enrollment.StudentID).Error; err == nil {
			go notifications.SendEmail(student.FullName, student.Email, "Enrollment Confirmed!",
				"<h1>Success!</h1><p>Your payment was received and your enrollment is now active. Happy learning!</p>")
		}
		publishEvent("enrollments", "UPDATE", enrollment.StudentID, enrollment)

	case "payment.failed":
		if payment.ErrorReason != "" {
			log.Printf("Gateway reported failure for order %s: %s (%s)", payment.OrderID, payment.ErrorReason, payment.ErrorCode)
		}
		if err := enrollmentService().MarkFailed(payment.OrderID, "gateway failure"); err != nil &&
			!errors.Is(err, services.ErrEnrollmentNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
		}

	default:
		log.Printf("Ignoring unhandled webhook event: %s", payload.Event)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed successfully"})
}
