package models

import (
	"time"

	"github.com/google/uuid"
)

type Earning struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MentorID  uuid.UUID  `gorm:"not null" json:"mentor_id"`
	SessionID uuid.UUID  `gorm:"not null;unique" json:"session_id"`
	Amount    float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status    string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidAt    *time.Time `json:"paid_at"`

	Mentor  User    `gorm:"foreignkey:MentorID" json:"-"`
	Session Session `gorm:"foreignkey:SessionID" json:"session,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
