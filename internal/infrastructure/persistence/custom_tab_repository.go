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

// GormCustomTabRepository implements CustomTabRepository using GORM
type GormCustomTabRepository struct {
	db *gorm.DB
}

// NewGormCustomTabRepository creates a new GormCustomTabRepository
func NewGormCustomTabRepository(db *gorm.DB) *GormCustomTabRepository {
	return &GormCustomTabRepository{db: db}
}

// FindByID finds a tab by ID within a tenant
func (r *GormCustomTabRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*layout.CustomTab, error) {
	var model models.CustomTabModel
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

// FindByModule finds all tabs of a module, ordered by sort order
func (r *GormCustomTabRepository) FindByModule(ctx context.Context, tenantID uuid.UUID, module layout.Module) ([]layout.CustomTab, error) {
	var tabModels []models.CustomTabModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ?", tenantID, module).
		Order("sort_order ASC, name ASC").
		Find(&tabModels).Error; err != nil {
		return nil, err
	}
	tabs := make([]layout.CustomTab, len(tabModels))
	for i, model := range tabModels {
		tabs[i] = *model.ToDomain()
	}
	return tabs, nil
}

// Save creates or updates a tab
func (r *GormCustomTabRepository) Save(ctx context.Context, tab *layout.CustomTab) error {
	model := models.CustomTabModelFromDomain(tab)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a tab
func (r *GormCustomTabRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomTabModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCustomTabRepository implements CustomTabRepository
var _ layout.CustomTabRepository = (*GormCustomTabRepository)(nil)
