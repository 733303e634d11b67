package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id             uuid.UUID
	Collection     string
	DocumentId     *uuid.UUID
	UserId         *uuid.UUID
	Filename       string
	Content        string
	EmbeddingValue []float32
	ChunkIndex     int
	Metadata       map[string]string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
