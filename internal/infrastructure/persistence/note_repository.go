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

// GormNoteRepository implements NoteRepository using GORM
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a new GormNoteRepository
func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

// FindByID finds a note by ID within a tenant
func (r *GormNoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*content.Note, error) {
	var model models.NoteModel
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

// FindByEntity finds notes attached to an entity, pinned first
func (r *GormNoteRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID, filter shared.Filter) ([]content.Note, error) {
	var noteModels []models.NoteModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Order("is_pinned DESC, created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&noteModels).Error; err != nil {
		return nil, err
	}

	notes := make([]content.Note, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// Save creates or updates a note
func (r *GormNoteRepository) Save(ctx context.Context, note *content.Note) error {
	model := models.NoteModelFromDomain(note)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a note
func (r *GormNoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.NoteModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByEntity counts notes attached to an entity
func (r *GormNoteRepository) CountByEntity(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NoteModel{}).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByEntity deletes all notes attached to an entity
func (r *GormNoteRepository) DeleteByEntity(ctx context.Context, tenantID uuid.UUID, entityType content.EntityType, entityID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Delete(&models.NoteModel{}).Error
}

// Ensure GormNoteRepository implements NoteRepository
var _ content.NoteRepository = (*GormNoteRepository)(nil)
