package models

import (
	"time"

	"github.com/google/uuid"
)

type FileRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID   uuid.UUID `gorm:"not null" json:"owner_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	FileURL   string    `gorm:"type:text;not null" json:"file_url"`
	FileType  string    `gorm:"size:100" json:"file_type"`
	SizeBytes int64     `json:"size_bytes"`
	PublicID  string    `gorm:"size:255" json:"-"`

	Owner User `gorm:"foreignkey:OwnerID" json:"-"`

	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
