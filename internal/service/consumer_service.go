package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"doc-chat-be/internal/constant"
	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/entity"
	"doc-chat-be/internal/model"
	"doc-chat-be/internal/repository/specification"
	"doc-chat-be/internal/repository/unitofwork"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/events"
	pkgNats "doc-chat-be/pkg/nats"
	"doc-chat-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pkgNats.Publisher
	chunkSize         int
	chunkOverlap      int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pkgNats.Publisher,
	chunkSize int,
	chunkOverlap int,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing document ingestion for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}
	if doc == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	chunks := utils.SplitText(doc.Content, cs.chunkSize, cs.chunkOverlap)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var newChunks []*entity.DocumentChunk
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskTypeDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d of document %s: %v", i, payload.DocumentId, err)
			cs.markFailed(ctx, doc, err.Error())
			msg.Nack()
			return
		}

		userId := doc.UserId
		docId := doc.Id
		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:             uuid.New(),
			Collection:     constant.CollectionUserDocuments,
			DocumentId:     &docId,
			UserId:         &userId,
			Filename:       doc.Filename,
			Content:        chunk,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     i,
			Metadata: map[string]string{
				"filename":    doc.Filename,
				"chunk_index": strconv.Itoa(i),
			},
			CreatedAt: time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Re-ingestion replaces any prior chunks for this document
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create bulk chunks: %v", err)
			msg.Nack()
			return
		}
	}

	doc.Status = model.DocumentStatusIngested
	doc.ChunkCount = len(newChunks)
	now := time.Now()
	doc.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		log.Printf("[ERROR] Failed to update document status: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIngested(doc.Id.String(), doc.UserId.String(), doc.Filename, len(newChunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish DOCUMENT_INGESTED event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Document processed: %d chunks for DocumentId: %s", len(newChunks), payload.DocumentId)
	msg.Ack()
}

// markFailed records a terminal ingestion failure on the document row.
func (cs *consumerService) markFailed(ctx context.Context, doc *entity.Document, reason string) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc.Status = model.DocumentStatusFailed
	now := time.Now()
	doc.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as failed: %v", doc.Id, err)
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIngestionFailed(doc.Id.String(), doc.UserId.String(), doc.Filename, reason)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish DOCUMENT_INGESTION_FAILED event: %v", err)
		}
	}
}
