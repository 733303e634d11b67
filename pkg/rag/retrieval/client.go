// Package retrieval exposes vector similarity search over the stored
// document chunks as a simple query contract.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"doc-chat-be/internal/repository/contract"
	"doc-chat-be/internal/repository/unitofwork"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/store"

	"github.com/google/uuid"
)

// ErrUnavailable marks retrieval failures: the embedding backend or the
// vector store could not serve the query.
var ErrUnavailable = errors.New("retrieval unavailable")

// Filter narrows a query to one file and/or one owner.
type Filter struct {
	Filename *string
	UserID   *uuid.UUID
}

// Client is the search contract consumed by the context assembler.
type Client interface {
	// Query returns chunks ordered by descending similarity.
	Query(ctx context.Context, collection, text string, limit int, filter *Filter) ([]store.Chunk, error)
}

// VectorClient runs queries against pgvector through the repository layer.
type VectorClient struct {
	embedder  embedding.EmbeddingProvider
	factory   unitofwork.RepositoryFactory
	threshold float64
}

var _ Client = &VectorClient{}

func NewVectorClient(embedder embedding.EmbeddingProvider, factory unitofwork.RepositoryFactory, threshold float64) *VectorClient {
	return &VectorClient{
		embedder:  embedder,
		factory:   factory,
		threshold: threshold,
	}
}

func (c *VectorClient) Query(ctx context.Context, collection, text string, limit int, filter *Filter) ([]store.Chunk, error) {
	embeddingRes, err := c.embedder.Generate(text, embedding.TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding generation failed: %v", ErrUnavailable, err)
	}

	searchFilter := contract.SearchFilter{Collection: collection}
	if filter != nil {
		searchFilter.Filename = filter.Filename
		searchFilter.UserID = filter.UserID
	}

	uow := c.factory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		limit,
		searchFilter,
		c.threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search failed: %v", ErrUnavailable, err)
	}

	chunks := make([]store.Chunk, 0, len(scored))
	for _, s := range scored {
		metadata := map[string]string{
			"filename": s.Chunk.Filename,
			"chunk":    strconv.Itoa(s.Chunk.ChunkIndex),
		}
		for k, v := range s.Chunk.Metadata {
			metadata[k] = v
		}
		chunks = append(chunks, store.Chunk{
			Text:     s.Chunk.Content,
			Score:    float32(s.Similarity),
			Metadata: metadata,
		})
	}
	return chunks, nil
}
