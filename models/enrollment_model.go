package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment is a two-phase record: created with payment_status "pending"
// when checkout is initiated, settled to "completed" by the verify endpoint,
// the gateway webhook, or the reconciliation sweep.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID `gorm:"not null" json:"student_id"`
	ProgramID uuid.UUID `gorm:"not null" json:"program_id"`

	PaymentID     string  `gorm:"size:255;unique" json:"payment_id"`
	PaymentRef    *string `gorm:"size:255" json:"payment_ref"`
	PaymentStatus string  `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	AmountPaid    float64 `gorm:"type:numeric(10,2);default:0.00" json:"amount_paid"`

	EnrollmentDate     *time.Time `json:"enrollment_date"`
	CompletionDate     *time.Time `json:"completion_date"`
	ProgressPercentage int        `gorm:"default:0" json:"progress_percentage"`
	IsActive           bool       `gorm:"default:false" json:"is_active"`
	ReceiptURL         *string    `gorm:"size:255" json:"receipt_url"`

	Student User    `gorm:"foreignkey:StudentID" json:"-"`
	Program Program `gorm:"foreignkey:ProgramID" json:"program,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
