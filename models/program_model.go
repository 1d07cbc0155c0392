package models

import (
	"time"

	"github.com/google/uuid"
)

type Program struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Price         float64    `gorm:"type:numeric(10,2);not null" json:"price"`
	DurationWeeks int        `gorm:"not null" json:"duration_weeks"`
	SessionCount  int        `gorm:"not null" json:"session_count"`
	Subjects      []string   `gorm:"serializer:json" json:"subjects"`
	Level         string     `gorm:"size:20;not null;default:'beginner'" json:"level"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	MentorID      *uuid.UUID `json:"mentor_id"`

	Mentor *User `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
