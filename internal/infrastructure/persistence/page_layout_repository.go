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

// GormPageLayoutRepository implements PageLayoutRepository using GORM
type GormPageLayoutRepository struct {
	db *gorm.DB
}

// NewGormPageLayoutRepository creates a new GormPageLayoutRepository
func NewGormPageLayoutRepository(db *gorm.DB) *GormPageLayoutRepository {
	return &GormPageLayoutRepository{db: db}
}

// FindByID finds a layout by ID within a tenant
func (r *GormPageLayoutRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*layout.PageLayout, error) {
	var model models.PageLayoutModel
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

// FindByModule finds all layouts of a module
func (r *GormPageLayoutRepository) FindByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module, filter shared.Filter) ([]layout.PageLayout, error) {
	var layoutModels []models.PageLayoutModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ?", tenantID, module).
		Order("layout_type ASC, is_default DESC, name ASC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&layoutModels).Error; err != nil {
		return nil, err
	}

	layouts := make([]layout.PageLayout, len(layoutModels))
	for i, model := range layoutModels {
		layouts[i] = *model.ToDomain()
	}
	return layouts, nil
}

// FindByName finds a layout by module, layout type, and name
func (r *GormPageLayoutRepository) FindByName(ctx context.Context, tenantID uuid.UUID, module layout.Module, layoutType layout.LayoutType, name string) (*layout.PageLayout, error) {
	var model models.PageLayoutModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ? AND layout_type = ? AND name = ?", tenantID, module, layoutType, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDefault finds the default layout for a module and layout type
func (r *GormPageLayoutRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, module layout.Module, layoutType layout.LayoutType) (*layout.PageLayout, error) {
	var model models.PageLayoutModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ? AND layout_type = ? AND is_default = ?", tenantID, module, layoutType, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a layout
func (r *GormPageLayoutRepository) Save(ctx context.Context, pl *layout.PageLayout) error {
	model := models.PageLayoutModelFromDomain(pl)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a layout
func (r *GormPageLayoutRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PageLayoutModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName checks uniqueness of (module, layout type, name)
func (r *GormPageLayoutRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, module layout.Module, layoutType layout.LayoutType, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PageLayoutModel{}).
		Where("tenant_id = ? AND module = ? AND layout_type = ? AND name = ?", tenantID, module, layoutType, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormPageLayoutRepository implements PageLayoutRepository
var _ layout.PageLayoutRepository = (*GormPageLayoutRepository)(nil)
