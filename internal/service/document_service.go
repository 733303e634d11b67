package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"doc-chat-be/internal/constant"
	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/entity"
	"doc-chat-be/internal/model"
	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/repository/specification"
	"doc-chat-be/internal/repository/unitofwork"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/utils"

	"github.com/google/uuid"
)

// IDocumentService manages user document uploads and the shared framework corpus
type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, request *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentSummaryResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error
	// SeedFrameworks loads the shared framework corpus from disk into the
	// vector store. No-op when the collection is already populated.
	SeedFrameworks(ctx context.Context, docsDir string, chunkSize, chunkOverlap int) error
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	publisherService  IPublisherService
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (c *documentService) Upload(ctx context.Context, userId uuid.UUID, request *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	doc := &entity.Document{
		Id:        uuid.New(),
		UserId:    userId,
		Filename:  request.Filename,
		Content:   request.Content,
		Status:    model.DocumentStatusPending,
		CreatedAt: time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	payload := dto.PublishIngestDocumentMessage{DocumentId: doc.Id}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, payloadJson); err != nil {
		return nil, err
	}

	c.logger.Info("document_service", "document queued for ingestion", map[string]interface{}{
		"document_id": doc.Id.String(),
		"filename":    doc.Filename,
	})

	return &dto.UploadDocumentResponse{
		Id:        doc.Id,
		Filename:  doc.Filename,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (c *documentService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentSummaryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	// Chunk counts come from the vector store, the authoritative record of
	// what retrieval can actually see
	counts, err := uow.DocumentChunkRepository().CountByFilename(ctx, constant.CollectionUserDocuments, &userId)
	if err != nil {
		return nil, err
	}
	countByFile := make(map[string]int64, len(counts))
	for _, c := range counts {
		countByFile[c.Filename] = c.ChunkCount
	}

	result := make([]*dto.DocumentSummaryResponse, 0, len(docs))
	for _, doc := range docs {
		result = append(result, &dto.DocumentSummaryResponse{
			Id:         doc.Id,
			Filename:   doc.Filename,
			Status:     doc.Status,
			ChunkCount: countByFile[doc.Filename],
			CreatedAt:  doc.CreatedAt,
		})
	}
	return result, nil
}

func (c *documentService) Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, doc.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func (c *documentService) SeedFrameworks(ctx context.Context, docsDir string, chunkSize, chunkOverlap int) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	count, err := uow.DocumentChunkRepository().Count(ctx, specification.ByCollection{Collection: constant.CollectionFrameworks})
	if err != nil {
		return err
	}
	if count > 0 {
		c.logger.Info("document_service", "framework collection already seeded", map[string]interface{}{
			"chunks": count,
		})
		return nil
	}

	entries, err := os.ReadDir(docsDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Warn("document_service", "framework docs directory missing, skipping seed", map[string]interface{}{
				"dir": docsDir,
			})
			return nil
		}
		return err
	}

	var chunks []*entity.DocumentChunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".md" && ext != ".txt" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(docsDir, entry.Name()))
		if err != nil {
			c.logger.Warn("document_service", "failed to read framework doc", map[string]interface{}{
				"file":  entry.Name(),
				"error": err.Error(),
			})
			continue
		}

		parts := utils.SplitText(string(content), chunkSize, chunkOverlap)
		for i, part := range parts {
			res, err := c.embeddingProvider.Generate(part, embedding.TaskTypeDocument)
			if err != nil {
				return err
			}
			chunks = append(chunks, &entity.DocumentChunk{
				Id:             uuid.New(),
				Collection:     constant.CollectionFrameworks,
				Filename:       entry.Name(),
				Content:        part,
				EmbeddingValue: res.Embedding.Values,
				ChunkIndex:     i,
				Metadata: map[string]string{
					"filename":    entry.Name(),
					"chunk_index": strconv.Itoa(i),
				},
				CreatedAt: time.Now(),
			})
		}
	}

	if len(chunks) == 0 {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	c.logger.Info("document_service", "framework collection seeded", map[string]interface{}{
		"chunks": len(chunks),
	})
	return nil
}
