package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a flat direct message. Conversations are derived per user at
// read time, never stored.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SenderID   uuid.UUID `gorm:"not null" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"not null" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Read       bool      `gorm:"default:false" json:"read"`

	Sender   User `gorm:"foreignkey:SenderID" json:"-"`
	Receiver User `gorm:"foreignkey:ReceiverID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
