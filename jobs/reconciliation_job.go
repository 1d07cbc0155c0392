package jobs

import (
	"log"
	"time"

	config "github.com/learnlab/learnlab-backend/configs"
	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/payments"
	"github.com/learnlab/learnlab-backend/services"
)

// ReconcilePendingPayments re-checks enrollments stuck in the pending state
// against the payment gateway. Orders the gateway reports as paid are
// settled, everything older than the threshold without a capture is marked
// failed.
func ReconcilePendingPayments() {
	log.Println("Running job: ReconcilePendingPayments...")

	gateway := payments.NewClientFromEnv()
	if gateway.KeyID == "" {
		log.Println("⚠️ Skipping reconciliation, payment gateway not configured")
		return
	}

	svc := services.NewEnrollmentService(
		services.NewGormEnrollmentStore(database.DB),
		gateway,
		config.ConfigOr("PAYMENT_CURRENCY", "INR"),
	)
	settled, failed := svc.Reconcile(30 * time.Minute)
	if settled > 0 || failed > 0 {
		log.Printf("✅ Reconciliation sweep done: %d settled, %d marked failed", settled, failed)
	}
}
