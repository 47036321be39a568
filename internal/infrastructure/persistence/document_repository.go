package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/content"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by ID within a tenant
func (r *GormDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*content.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEntity finds documents attached to an entity
func (r *GormDocumentRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID, filter shared.Filter) ([]content.Document, error) {
	var docModels []models.DocumentModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&docModels).Error; err != nil {
		return nil, err
	}

	docs := make([]content.Document, len(docModels))
	for i, model := range docModels {
		docs[i] = *model.ToDomain()
	}
	return docs, nil
}

// FindByStorageKey finds a document by its storage key
func (r *GormDocumentRepository) FindByStorageKey(ctx context.Context, tenantID uuid.UUID, storageKey string) (*content.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND storage_key = ?", tenantID, storageKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *content.Document) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a document's metadata
func (r *GormDocumentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DocumentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByEntity counts documents attached to an entity
func (r *GormDocumentRepository) CountByEntity(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ content.DocumentRepository = (*GormDocumentRepository)(nil)
