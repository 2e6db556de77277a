package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrFileNotFound is returned when no upload matches an owner and storage
// key pair. A key owned by a different user yields the same error, hiding
// the key's existence.
var ErrFileNotFound = errors.New("file not found")

// FileStore persists upload metadata. Rows are insert-only.
type FileStore struct {
	db *gorm.DB
}

// NewFileStore creates a FileStore backed by db.
func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db}
}

// Create inserts one upload row.
func (s *FileStore) Create(f *UploadedFile) error {
	return s.db.Create(f).Error
}

// ListByUser returns all uploads owned by userID in insertion order.
func (s *FileStore) ListByUser(userID uint) ([]UploadedFile, error) {
	var files []UploadedFile
	if err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// FindByOwnerAndKey looks up one upload by its owner and storage key.
func (s *FileStore) FindByOwnerAndKey(userID uint, storageKey string) (*UploadedFile, error) {
	var f UploadedFile
	if err := s.db.Where("user_id = ? AND file = ?", userID, storageKey).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &f, nil
}
