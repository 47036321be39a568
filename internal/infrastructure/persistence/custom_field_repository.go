package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomFieldRepository implements CustomFieldRepository using GORM
type GormCustomFieldRepository struct {
	db *gorm.DB
}

// NewGormCustomFieldRepository creates a new GormCustomFieldRepository
func NewGormCustomFieldRepository(db *gorm.DB) *GormCustomFieldRepository {
	return &GormCustomFieldRepository{db: db}
}

// FindByID finds a field by ID within a tenant
func (r *GormCustomFieldRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*layout.CustomField, error) {
	var model models.CustomFieldModel
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

// FindByKey finds a field by module and key within a tenant
func (r *GormCustomFieldRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, module layout.Module, key string) (*layout.CustomField, error) {
	var model models.CustomFieldModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ? AND key = ?", tenantID, module, key).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByModule finds all fields of a module, ordered by sort order
func (r *GormCustomFieldRepository) FindByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomField, error) {
	var fieldModels []models.CustomFieldModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ?", tenantID, module).
		Order("sort_order ASC, key ASC").
		Find(&fieldModels).Error; err != nil {
		return nil, err
	}
	return toCustomFieldSlice(fieldModels), nil
}

// FindActiveByModule finds the active fields of a module, ordered by sort order
func (r *GormCustomFieldRepository) FindActiveByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomField, error) {
	var fieldModels []models.CustomFieldModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ? AND is_active = ?", tenantID, module, true).
		Order("sort_order ASC, key ASC").
		Find(&fieldModels).Error; err != nil {
		return nil, err
	}
	return toCustomFieldSlice(fieldModels), nil
}

// FindDependents finds fields that depend on the given parent key
func (r *GormCustomFieldRepository) FindDependents(ctx context.Context, tenantID uuid.UUID, module layout.Module, parentKey string) ([]layout.CustomField, error) {
	var fieldModels []models.CustomFieldModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ? AND depends_on = ?", tenantID, module, parentKey).
		Order("sort_order ASC, key ASC").
		Find(&fieldModels).Error; err != nil {
		return nil, err
	}
	return toCustomFieldSlice(fieldModels), nil
}

// Save creates or updates a field
func (r *GormCustomFieldRepository) Save(ctx context.Context, field *layout.CustomField) error {
	model := models.CustomFieldModelFromDomain(field)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a field definition
func (r *GormCustomFieldRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomFieldModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByKey checks if a field with the given key exists on the module
func (r *GormCustomFieldRepository) ExistsByKey(ctx context.Context, tenantID uuid.UUID, module layout.Module, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomFieldModel{}).
		Where("tenant_id = ? AND module = ? AND key = ?", tenantID, module, key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func toCustomFieldSlice(fieldModels []models.CustomFieldModel) []layout.CustomField {
	fields := make([]layout.CustomField, len(fieldModels))
	for i, model := range fieldModels {
		fields[i] = *model.ToDomain()
	}
	return fields
}

// Ensure GormCustomFieldRepository implements CustomFieldRepository
var _ layout.CustomFieldRepository = (*GormCustomFieldRepository)(nil)
