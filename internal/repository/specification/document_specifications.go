package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy filters rows by owner
type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByFilename filters by the originating file name
type ByFilename struct {
	Filename string
}

func (s ByFilename) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("filename = ?", s.Filename)
}

// ByCollection filters chunks by their vector collection
type ByCollection struct {
	Collection string
}

func (s ByCollection) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection = ?", s.Collection)
}

// ByDocumentID filters chunks by parent document
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}
