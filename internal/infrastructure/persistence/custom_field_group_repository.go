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

// GormCustomFieldGroupRepository implements CustomFieldGroupRepository using GORM
type GormCustomFieldGroupRepository struct {
	db *gorm.DB
}

// NewGormCustomFieldGroupRepository creates a new GormCustomFieldGroupRepository
func NewGormCustomFieldGroupRepository(db *gorm.DB) *GormCustomFieldGroupRepository {
	return &GormCustomFieldGroupRepository{db: db}
}

// FindByID finds a field group by ID within a tenant
func (r *GormCustomFieldGroupRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*layout.CustomFieldGroup, error) {
	var model models.CustomFieldGroupModel
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

// FindByModule finds all field groups of a module, ordered by sort order
func (r *GormCustomFieldGroupRepository) FindByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomFieldGroup, error) {
	var groupModels []models.CustomFieldGroupModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ?", tenantID, module).
		Order("sort_order ASC, name ASC").
		Find(&groupModels).Error; err != nil {
		return nil, err
	}
	return toCustomFieldGroupSlice(groupModels), nil
}

// FindByTab finds the field groups placed on a tab
func (r *GormCustomFieldGroupRepository) FindByTab(ctx context.Context, tenantID, tabID uuid.UUID) ([]layout.CustomFieldGroup, error) {
	var groupModels []models.CustomFieldGroupModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND tab_id = ?", tenantID, tabID).
		Order("sort_order ASC, name ASC").
		Find(&groupModels).Error; err != nil {
		return nil, err
	}
	return toCustomFieldGroupSlice(groupModels), nil
}

// Save creates or updates a field group
func (r *GormCustomFieldGroupRepository) Save(ctx context.Context, group *layout.CustomFieldGroup) error {
	model := models.CustomFieldGroupModelFromDomain(group)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a field group
func (r *GormCustomFieldGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomFieldGroupModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toCustomFieldGroupSlice(groupModels []models.CustomFieldGroupModel) []layout.CustomFieldGroup {
	groups := make([]layout.CustomFieldGroup, len(groupModels))
	for i, model := range groupModels {
		groups[i] = *model.ToDomain()
	}
	return groups
}

// Ensure GormCustomFieldGroupRepository implements CustomFieldGroupRepository
var _ layout.CustomFieldGroupRepository = (*GormCustomFieldGroupRepository)(nil)
