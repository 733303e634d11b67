package contract

import (
	"context"

	"doc-chat-be/internal/entity"
	"doc-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk wraps a DocumentChunk with its similarity score
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// SearchFilter narrows a similarity search. Collection is mandatory;
// Filename and UserID are optional metadata filters.
type SearchFilter struct {
	Collection string
	Filename   *string
	UserID     *uuid.UUID
}

// FileChunkCount summarizes how many chunks a stored file contributed.
type FileChunkCount struct {
	Filename   string
	ChunkCount int64
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Advanced
	// SearchSimilarWithScore returns chunks with their similarity scores, filtered by threshold
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, filter SearchFilter, threshold float64) ([]*ScoredChunk, error)
	// CountByFilename returns per-file chunk counts within one collection, optionally scoped to an owner
	CountByFilename(ctx context.Context, collection string, userId *uuid.UUID) ([]FileChunkCount, error)
}
