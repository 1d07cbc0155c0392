package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/learnlab/learnlab-backend/models"
	"github.com/learnlab/learnlab-backend/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEnrollmentStore struct {
	programs    map[uuid.UUID]models.Program
	users       map[uuid.UUID]models.User
	enrollments map[uuid.UUID]models.Enrollment
	saveErr     error
}

func newMockEnrollmentStore() *mockEnrollmentStore {
	return &mockEnrollmentStore{
		programs:    make(map[uuid.UUID]models.Program),
		users:       make(map[uuid.UUID]models.User),
		enrollments: make(map[uuid.UUID]models.Enrollment),
	}
}

func (m *mockEnrollmentStore) FindProgram(id uuid.UUID) (*models.Program, error) {
	if p, ok := m.programs[id]; ok {
		return &p, nil
	}
	return nil, errors.New("not found")
}

func (m *mockEnrollmentStore) FindUser(id uuid.UUID) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, errors.New("not found")
}

func (m *mockEnrollmentStore) HasActiveEnrollment(studentID, programID uuid.UUID) (bool, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.ProgramID == programID && e.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentStore) CreateEnrollment(e *models.Enrollment) error {
	m.enrollments[e.ID] = *e
	return nil
}

func (m *mockEnrollmentStore) FindEnrollment(id uuid.UUID) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, errors.New("not found")
}

func (m *mockEnrollmentStore) FindEnrollmentByOrder(orderID string) (*models.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.PaymentID == orderID {
			found := e
			return &found, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockEnrollmentStore) SaveEnrollment(e *models.Enrollment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.enrollments[e.ID] = *e
	return nil
}

func (m *mockEnrollmentStore) ListPendingBefore(cutoff time.Time) ([]models.Enrollment, error) {
	var pending []models.Enrollment
	for _, e := range m.enrollments {
		if e.PaymentStatus == "pending" {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

type mockGateway struct {
	orders      map[string]payments.Order
	orderCalls  int
	fetchStatus string
	validSig    string
	createErr   error
}

func newMockGateway() *mockGateway {
	return &mockGateway{orders: make(map[string]payments.Order), validSig: "good-signature"}
}

func (g *mockGateway) CreateOrder(amountMinor int64, currency, receipt string, notes map[string]string) (*payments.Order, error) {
	g.orderCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	order := payments.Order{
		ID:       fmt.Sprintf("order_%d", g.orderCalls),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}
	g.orders[order.ID] = order
	return &order, nil
}

func (g *mockGateway) FetchOrder(orderID string) (*payments.Order, error) {
	order, ok := g.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	if g.fetchStatus != "" {
		order.Status = g.fetchStatus
	}
	return &order, nil
}

func (g *mockGateway) VerifySignature(orderID, paymentID, signature string) error {
	if paymentID == "" || signature != g.validSig {
		return payments.ErrInvalidSignature
	}
	return nil
}

func setupEnrollmentTest() (*mockEnrollmentStore, *mockGateway, *EnrollmentService, uuid.UUID, uuid.UUID) {
	store := newMockEnrollmentStore()
	gateway := newMockGateway()
	svc := NewEnrollmentService(store, gateway, "INR")

	studentID := uuid.New()
	store.users[studentID] = models.User{ID: studentID, FullName: "Test Student", Email: "student@example.com", Role: "student"}

	programID := uuid.New()
	store.programs[programID] = models.Program{ID: programID, Title: "Calculus Bootcamp", Price: 299, IsActive: true}

	return store, gateway, svc, studentID, programID
}

func TestInitiateCreatesPendingEnrollment(t *testing.T) {
	store, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)
	assert.Equal(t, int64(29900), checkout.Amount, "amount is in minor units")
	assert.Equal(t, "INR", checkout.Currency)
	assert.Equal(t, "Calculus Bootcamp", checkout.Description)
	assert.Equal(t, "Test Student", checkout.PrefillName)
	assert.Equal(t, "student@example.com", checkout.PrefillEmail)

	e := store.enrollments[checkout.EnrollmentID]
	assert.Equal(t, "pending", e.PaymentStatus)
	assert.Equal(t, checkout.OrderID, e.PaymentID)
	assert.InDelta(t, 299.0, e.AmountPaid, 1e-9, "pending row records the purchase-time price")
	assert.False(t, e.IsActive)
}

func TestSettleUsesPurchaseTimePrice(t *testing.T) {
	store, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	// The mentor raises the price while the checkout is in flight. The
	// gateway captured the old amount, so that is what must be recorded.
	p := store.programs[programID]
	p.Price = 499
	store.programs[programID] = p

	enrollment, err := svc.ConfirmPayment(checkout.OrderID, "pay_123", "good-signature")
	require.NoError(t, err)
	assert.InDelta(t, 299.0, enrollment.AmountPaid, 1e-9, "amount paid reflects the captured amount, not the current price")
}

func TestInitiateRejectsDuplicateEnrollmentWithoutCallingGateway(t *testing.T) {
	store, gateway, svc, studentID, programID := setupEnrollmentTest()

	existing := models.Enrollment{
		ID:            uuid.New(),
		StudentID:     studentID,
		ProgramID:     programID,
		PaymentStatus: "completed",
		IsActive:      true,
	}
	store.enrollments[existing.ID] = existing

	_, err := svc.Initiate(studentID, programID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.Zero(t, gateway.orderCalls, "gateway must not be contacted when already enrolled")
}

func TestInitiateRejectsInactiveProgram(t *testing.T) {
	store, gateway, svc, studentID, programID := setupEnrollmentTest()
	p := store.programs[programID]
	p.IsActive = false
	store.programs[programID] = p

	_, err := svc.Initiate(studentID, programID)
	assert.ErrorIs(t, err, ErrProgramUnavailable)
	assert.Zero(t, gateway.orderCalls)
}

func TestConfirmPaymentSettlesEnrollment(t *testing.T) {
	store, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	enrollment, err := svc.ConfirmPayment(checkout.OrderID, "pay_123", "good-signature")
	require.NoError(t, err)

	assert.Equal(t, "completed", enrollment.PaymentStatus)
	assert.InDelta(t, 299.0, enrollment.AmountPaid, 1e-9)
	assert.True(t, enrollment.IsActive)
	require.NotNil(t, enrollment.EnrollmentDate)
	require.NotNil(t, enrollment.PaymentRef)
	assert.Equal(t, "pay_123", *enrollment.PaymentRef)

	// Exactly one enrollment row exists for the purchase.
	count := 0
	for _, e := range store.enrollments {
		if e.StudentID == studentID && e.ProgramID == programID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	_, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	first, err := svc.ConfirmPayment(checkout.OrderID, "pay_123", "good-signature")
	require.NoError(t, err)

	second, err := svc.ConfirmPayment(checkout.OrderID, "pay_123", "good-signature")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.InDelta(t, first.AmountPaid, second.AmountPaid, 1e-9)
}

func TestConfirmPaymentRejectsBadSignature(t *testing.T) {
	store, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(checkout.OrderID, "pay_123", "forged")
	require.Error(t, err)
	assert.ErrorIs(t, err, payments.ErrInvalidSignature)

	e := store.enrollments[checkout.EnrollmentID]
	assert.Equal(t, "pending", e.PaymentStatus, "a failed verification must not settle")
}

func TestConfirmPaymentRejectsEmptyReference(t *testing.T) {
	_, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(checkout.OrderID, "", "good-signature")
	assert.ErrorIs(t, err, payments.ErrInvalidSignature)
}

func TestSettleFailureSurfacesPaymentReference(t *testing.T) {
	store, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	store.saveErr = errors.New("connection reset")
	_, err = svc.ConfirmPayment(checkout.OrderID, "pay_lost_777", "good-signature")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pay_lost_777", "error must carry the payment reference for support")
	assert.Contains(t, err.Error(), "contact support")
}

func TestMarkFailedDoesNotDowngradeSettledEnrollment(t *testing.T) {
	store, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(checkout.OrderID, "pay_123", "good-signature")
	require.NoError(t, err)

	require.NoError(t, svc.MarkFailed(checkout.OrderID, "user cancelled"))
	e := store.enrollments[checkout.EnrollmentID]
	assert.Equal(t, "completed", e.PaymentStatus)
	assert.True(t, e.IsActive)
}

func TestMarkFailedOnPendingEnrollment(t *testing.T) {
	store, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	require.NoError(t, svc.MarkFailed(checkout.OrderID, "user cancelled"))
	e := store.enrollments[checkout.EnrollmentID]
	assert.Equal(t, "failed", e.PaymentStatus)
	assert.False(t, e.IsActive)
}

func TestReconcileSettlesPaidOrders(t *testing.T) {
	store, gateway, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	gateway.fetchStatus = "paid"
	settled, failed := svc.Reconcile(0)
	assert.Equal(t, 1, settled)
	assert.Zero(t, failed)

	e := store.enrollments[checkout.EnrollmentID]
	assert.Equal(t, "completed", e.PaymentStatus)
	assert.True(t, e.IsActive)
}

func TestReconcileExpiresAbandonedOrders(t *testing.T) {
	store, gateway, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)

	gateway.fetchStatus = "created"
	settled, failed := svc.Reconcile(0)
	assert.Zero(t, settled)
	assert.Equal(t, 1, failed)

	e := store.enrollments[checkout.EnrollmentID]
	assert.Equal(t, "failed", e.PaymentStatus)
}

func TestUpdateProgressStampsCompletionOnce(t *testing.T) {
	_, _, svc, studentID, programID := setupEnrollmentTest()

	checkout, err := svc.Initiate(studentID, programID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(checkout.OrderID, "pay_123", "good-signature")
	require.NoError(t, err)

	e, err := svc.UpdateProgress(checkout.EnrollmentID, studentID, 50)
	require.NoError(t, err)
	assert.Nil(t, e.CompletionDate)

	e, err = svc.UpdateProgress(checkout.EnrollmentID, studentID, 100)
	require.NoError(t, err)
	require.NotNil(t, e.CompletionDate)
	firstStamp := *e.CompletionDate

	e, err = svc.UpdateProgress(checkout.EnrollmentID, studentID, 100)
	require.NoError(t, err)
	assert.Equal(t, firstStamp, *e.CompletionDate, "completion date is set exactly once")

	_, err = svc.UpdateProgress(checkout.EnrollmentID, studentID, 120)
	assert.Error(t, err)
}
