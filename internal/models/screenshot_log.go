package models

import (
	"time"

	"gorm.io/gorm"
)

// ScreenshotLog records one accepted screenshot upload.
type ScreenshotLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SessionID  string         `gorm:"not null;index" json:"session_id"`
	Filename   string         `gorm:"not null" json:"filename"`
	SizeBytes  int            `gorm:"not null;default:0" json:"size_bytes"`
	UploadedAt time.Time      `gorm:"not null;index" json:"uploaded_at"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
