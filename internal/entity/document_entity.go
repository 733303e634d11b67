package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Filename   string
	Content    string
	Status     string
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
