package implementation

import (
	"context"
	"errors"

	"doc-chat-be/internal/entity"
	"doc-chat-be/internal/mapper"
	"doc-chat-be/internal/model"
	"doc-chat-be/internal/repository/contract"
	"doc-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DocumentChunk{}, id).Error
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	var m model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.DocumentChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns chunks with similarity scores, filtered by threshold
func (r *DocumentChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, filter contract.SearchFilter, threshold float64) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("collection = ?", filter.Collection).
		Where("deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold)

	if filter.Filename != nil {
		query = query.Where("filename = ?", *filter.Filename)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&res.DocumentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

// CountByFilename returns per-file chunk counts within one collection
func (r *DocumentChunkRepositoryImpl) CountByFilename(ctx context.Context, collection string, userId *uuid.UUID) ([]contract.FileChunkCount, error) {
	type row struct {
		Filename   string
		ChunkCount int64
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("filename, count(*) as chunk_count").
		Where("collection = ?", collection).
		Where("deleted_at IS NULL")

	if userId != nil {
		query = query.Where("user_id = ?", *userId)
	}

	if err := query.Group("filename").Order("filename ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make([]contract.FileChunkCount, len(rows))
	for i, r := range rows {
		counts[i] = contract.FileChunkCount{Filename: r.Filename, ChunkCount: r.ChunkCount}
	}
	return counts, nil
}
