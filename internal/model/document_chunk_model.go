package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentChunk holds one embedded slice of a document. Framework material
// has a NULL owner; user document chunks carry the uploader's id.
type DocumentChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection     string          `gorm:"type:varchar(100);not null;index"`
	DocumentId     *uuid.UUID      `gorm:"type:uuid;index"`
	UserId         *uuid.UUID      `gorm:"type:uuid;index"`
	Filename       string          `gorm:"type:varchar(512);not null;index"`
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 / nomic-embed-text dimensionality
	ChunkIndex     int             `gorm:"default:0"` // 0-based index for ordering
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
