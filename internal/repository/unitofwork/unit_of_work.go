package unitofwork

import (
	"context"

	"doc-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
}
