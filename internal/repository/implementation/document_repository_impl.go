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
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Document{}).Count(&count).Error
	return count, err
}
