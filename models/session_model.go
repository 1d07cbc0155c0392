package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID `gorm:"not null" json:"student_id"`
	MentorID  uuid.UUID `gorm:"not null" json:"mentor_id"`

	Subject         string  `gorm:"size:100;not null" json:"subject"`
	Date            string  `gorm:"size:10;not null" json:"date"`
	StartTime       string  `gorm:"size:5;not null" json:"start_time"`
	DurationMinutes int     `gorm:"not null" json:"duration_minutes"`
	Status          string  `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	Amount          float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Notes           *string `gorm:"type:text" json:"notes"`
	MeetingLink     *string `gorm:"size:255" json:"meeting_link"`

	Student User `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Mentor  User `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StartsAt combines the stored date and clock time into a single instant.
func (s *Session) StartsAt() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", s.Date+" "+s.StartTime)
}
