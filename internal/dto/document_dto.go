package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentRequest struct {
	Filename string `json:"filename" validate:"required,max=512"`
	Content  string `json:"content" validate:"required"`
}

type UploadDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PublishIngestDocumentMessage is the queue payload for an ingestion job.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type DocumentSummaryResponse struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
	ChunkCount int64     `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
