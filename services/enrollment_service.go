package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/learnlab/learnlab-backend/models"
	"github.com/learnlab/learnlab-backend/payments"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyEnrolled    = errors.New("you are already enrolled in this program")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrProgramUnavailable = errors.New("program is not available for enrollment")
)

// EnrollmentStore is the persistence surface of the purchase workflow.
type EnrollmentStore interface {
	FindProgram(id uuid.UUID) (*models.Program, error)
	FindUser(id uuid.UUID) (*models.User, error)
	HasActiveEnrollment(studentID, programID uuid.UUID) (bool, error)
	CreateEnrollment(e *models.Enrollment) error
	FindEnrollment(id uuid.UUID) (*models.Enrollment, error)
	FindEnrollmentByOrder(orderID string) (*models.Enrollment, error)
	SaveEnrollment(e *models.Enrollment) error
	ListPendingBefore(cutoff time.Time) ([]models.Enrollment, error)
}

// PaymentGateway is the slice of the checkout API the workflow uses.
// *payments.Client satisfies it.
type PaymentGateway interface {
	CreateOrder(amountMinor int64, currency, receipt string, notes map[string]string) (*payments.Order, error)
	FetchOrder(orderID string) (*payments.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
}

type EnrollmentService struct {
	store    EnrollmentStore
	gateway  PaymentGateway
	currency string
}

func NewEnrollmentService(store EnrollmentStore, gateway PaymentGateway, currency string) *EnrollmentService {
	return &EnrollmentService{store: store, gateway: gateway, currency: currency}
}

// Checkout carries what the hosted payment modal needs to open.
type Checkout struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	OrderID      string    `json:"order_id"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Description  string    `json:"description"`
	PrefillName  string    `json:"prefill_name"`
	PrefillEmail string    `json:"prefill_email"`
}

// Initiate starts a program purchase. An existing active enrollment aborts
// the flow before the gateway is ever contacted. Otherwise a gateway order is
// created and a pending enrollment row records the first phase of the
// purchase.
func (s *EnrollmentService) Initiate(studentID, programID uuid.UUID) (*Checkout, error) {
	enrolled, err := s.store.HasActiveEnrollment(studentID, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	program, err := s.store.FindProgram(programID)
	if err != nil {
		return nil, ErrProgramUnavailable
	}
	if !program.IsActive {
		return nil, ErrProgramUnavailable
	}

	student, err := s.store.FindUser(studentID)
	if err != nil {
		return nil, errors.New("student not found")
	}

	enrollmentID := uuid.New()
	amountMinor := int64(math.Round(program.Price * 100))

	order, err := s.gateway.CreateOrder(amountMinor, s.currency, "enroll-"+enrollmentID.String(), map[string]string{
		"program_id": programID.String(),
		"student_id": studentID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}

	// AmountPaid records the purchase-time price on the pending row; the
	// gateway captured this amount, so settlement must not re-read the
	// program, whose price may have changed in the meantime.
	enrollment := &models.Enrollment{
		ID:            enrollmentID,
		StudentID:     studentID,
		ProgramID:     programID,
		PaymentID:     order.ID,
		PaymentStatus: "pending",
		AmountPaid:    program.Price,
	}
	if err := s.store.CreateEnrollment(enrollment); err != nil {
		return nil, fmt.Errorf("failed to record enrollment: %w", err)
	}

	return &Checkout{
		EnrollmentID: enrollmentID,
		OrderID:      order.ID,
		Amount:       amountMinor,
		Currency:     s.currency,
		Description:  program.Title,
		PrefillName:  student.FullName,
		PrefillEmail: student.Email,
	}, nil
}

// ConfirmPayment verifies the checkout signature server-side and settles the
// pending enrollment. Settling an already completed enrollment is a no-op
// success, which makes webhook and verify deliveries safe to replay.
func (s *EnrollmentService) ConfirmPayment(orderID, paymentID, signature string) (*models.Enrollment, error) {
	if err := s.gateway.VerifySignature(orderID, paymentID, signature); err != nil {
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}
	return s.settle(orderID, paymentID)
}

// SettleFromWebhook settles a pending enrollment for a gateway-confirmed
// payment. The caller has already authenticated the webhook.
func (s *EnrollmentService) SettleFromWebhook(orderID, paymentID string) (*models.Enrollment, error) {
	return s.settle(orderID, paymentID)
}

func (s *EnrollmentService) settle(orderID, paymentID string) (*models.Enrollment, error) {
	enrollment, err := s.store.FindEnrollmentByOrder(orderID)
	if err != nil {
		return nil, ErrEnrollmentNotFound
	}
	if enrollment.PaymentStatus == "completed" {
		return enrollment, nil
	}

	now := time.Now()
	enrollment.PaymentStatus = "completed"
	enrollment.PaymentRef = &paymentID
	enrollment.IsActive = true
	enrollment.EnrollmentDate = &now

	if err := s.store.SaveEnrollment(enrollment); err != nil {
		// Money has moved without a matching record. Surface the payment
		// reference so support can reconcile manually; no automatic retry.
		return nil, fmt.Errorf("payment %s was captured but the enrollment could not be recorded, please contact support", paymentID)
	}
	return enrollment, nil
}

// MarkFailed records a dismissed checkout or a gateway-reported failure. A
// settled enrollment is never downgraded.
func (s *EnrollmentService) MarkFailed(orderID, reason string) error {
	enrollment, err := s.store.FindEnrollmentByOrder(orderID)
	if err != nil {
		return ErrEnrollmentNotFound
	}
	if enrollment.PaymentStatus == "completed" {
		log.Printf("Ignoring %s report for settled order %s", reason, orderID)
		return nil
	}

	enrollment.PaymentStatus = "failed"
	enrollment.IsActive = false
	return s.store.SaveEnrollment(enrollment)
}

// Reconcile sweeps enrollments stuck in pending and resolves each against
// the gateway's view of its order: paid orders are settled, abandoned ones
// marked failed.
func (s *EnrollmentService) Reconcile(pendingAge time.Duration) (settled, failed int) {
	cutoff := time.Now().Add(-pendingAge)
	pending, err := s.store.ListPendingBefore(cutoff)
	if err != nil {
		log.Printf("🔥 Reconciliation sweep failed to list pending enrollments: %v", err)
		return
	}

	for i := range pending {
		e := &pending[i]
		order, err := s.gateway.FetchOrder(e.PaymentID)
		if err != nil {
			log.Printf("🔥 Reconciliation could not fetch order %s: %v", e.PaymentID, err)
			continue
		}

		if order.Status == "paid" {
			if _, err := s.settle(e.PaymentID, order.ID); err != nil {
				log.Printf("🔥 Reconciliation failed to settle order %s: %v", e.PaymentID, err)
				continue
			}
			settled++
		} else {
			if err := s.MarkFailed(e.PaymentID, "abandoned checkout"); err != nil {
				log.Printf("🔥 Reconciliation failed to expire order %s: %v", e.PaymentID, err)
				continue
			}
			failed++
		}
	}
	return settled, failed
}

// UpdateProgress sets a student's progress through a program. The completion
// date is stamped exactly when progress first reaches 100.
func (s *EnrollmentService) UpdateProgress(enrollmentID, studentID uuid.UUID, progress int) (*models.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, errors.New("progress must be between 0 and 100")
	}

	enrollment, err := s.store.FindEnrollment(enrollmentID)
	if err != nil {
		return nil, ErrEnrollmentNotFound
	}
	if enrollment.StudentID != studentID {
		return nil, errors.New("this is not your enrollment")
	}
	if enrollment.PaymentStatus != "completed" {
		return nil, errors.New("enrollment is not active")
	}

	wasComplete := enrollment.ProgressPercentage >= 100
	enrollment.ProgressPercentage = progress
	if progress == 100 && !wasComplete {
		now := time.Now()
		enrollment.CompletionDate = &now
	}

	if err := s.store.SaveEnrollment(enrollment); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	return enrollment, nil
}

type gormEnrollmentStore struct {
	db *gorm.DB
}

func NewGormEnrollmentStore(db *gorm.DB) EnrollmentStore {
	return &gormEnrollmentStore{db: db}
}

func (s *gormEnrollmentStore) FindProgram(id uuid.UUID) (*models.Program, error) {
	var program models.Program
	if err := s.db.First(&program, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &program, nil
}

func (s *gormEnrollmentStore) FindUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormEnrollmentStore) HasActiveEnrollment(studentID, programID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Enrollment{}).
		Where("student_id = ? AND program_id = ? AND is_active = ?", studentID, programID, true).
		Count(&count).Error
	return count > 0, err
}

func (s *gormEnrollmentStore) CreateEnrollment(e *models.Enrollment) error {
	return s.db.Create(e).Error
}

func (s *gormEnrollmentStore) FindEnrollment(id uuid.UUID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.db.First(&enrollment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (s *gormEnrollmentStore) FindEnrollmentByOrder(orderID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.db.First(&enrollment, "payment_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (s *gormEnrollmentStore) SaveEnrollment(e *models.Enrollment) error {
	return s.db.Save(e).Error
}

func (s *gormEnrollmentStore) ListPendingBefore(cutoff time.Time) ([]models.Enrollment, error) {
	var pending []models.Enrollment
	err := s.db.Where("payment_status = ? AND created_at < ?", "pending", cutoff).Find(&pending).Error
	return pending, err
}
