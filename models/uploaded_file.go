package models

import (
	"time"

	"gorm.io/gorm"
)

// UploadedFile records one stored upload. Filename is the sanitized
// client-supplied name kept for display; StorageKey is the opaque
// server-generated name the bytes live under on disk. Rows are never
// mutated or deleted once written.
type UploadedFile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	StorageKey  string    `gorm:"column:file;size:255;not null;index" json:"file"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	TimeCreated time.Time `json:"time_created"`
}

// BeforeCreate stamps TimeCreated at insertion.
func (f *UploadedFile) BeforeCreate(tx *gorm.DB) error {
	if f.TimeCreated.IsZero() {
		f.TimeCreated = time.Now()
	}
	return nil
}
