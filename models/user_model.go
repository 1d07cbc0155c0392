package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'student'" json:"role"`

	Bio        *string  `gorm:"type:text" json:"bio"`
	Subjects   []string `gorm:"serializer:json" json:"subjects"`
	Rating     float32  `gorm:"default:0" json:"rating"`
	HourlyRate float64  `gorm:"type:numeric(10,2);default:0.00" json:"hourly_rate"`

	TotalSessions int     `gorm:"default:0" json:"total_sessions"`
	TotalEarnings float64 `gorm:"type:numeric(10,2);default:0.00" json:"total_earnings"`

	AvatarURL *string `gorm:"size:255" json:"avatar_url"`
	TimeZone  *string `gorm:"size:100" json:"time_zone"`

	ResetPasswordToken          *string    `gorm:"size:255;unique" json:"-"`
	ResetPasswordTokenExpiresAt *time.Time `json:"-"`
	IsActive                    bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
