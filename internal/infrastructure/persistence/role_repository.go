package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoleRepository implements RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByID finds a role by ID within a tenant
func (r *GormRoleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	role := model.ToDomain()
	if err := r.loadAssociations(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// FindByCode finds a role by code within a tenant
func (r *GormRoleRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	role := model.ToDomain()
	if err := r.loadAssociations(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// FindByIDs finds roles by a list of IDs within a tenant
func (r *GormRoleRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]identity.Role, error) {
	if len(ids) == 0 {
		return []identity.Role{}, nil
	}
	var roleModels []models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("sort_order ASC, code ASC").
		Find(&roleModels).Error; err != nil {
		return nil, err
	}
	return r.toRoleSlice(ctx, roleModels)
}

// FindAll finds all roles within a tenant matching the filter
func (r *GormRoleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Role, error) {
	var roleModels []models.RoleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.RoleModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&roleModels).Error; err != nil {
		return nil, err
	}
	return r.toRoleSlice(ctx, roleModels)
}

// FindEnabled finds all enabled roles within a tenant
func (r *GormRoleRepository) FindEnabled(ctx context.Context, tenantID uuid.UUID) ([]identity.Role, error) {
	var roleModels []models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_enabled = ?", tenantID, true).
		Order("sort_order ASC, code ASC").
		Find(&roleModels).Error; err != nil {
		return nil, err
	}
	return r.toRoleSlice(ctx, roleModels)
}

// Save creates or updates a role, including permissions and data scopes
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.RoleModelFromDomain(role)
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		// Replace permissions
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		if len(role.Permissions) > 0 {
			permRows := make([]models.RolePermissionModel, len(role.Permissions))
			for i, p := range role.Permissions {
				permRows[i].FromDomain(role.ID, role.TenantID, p)
			}
			if err := tx.Create(&permRows).Error; err != nil {
				return err
			}
		}

		// Replace data scopes
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RoleDataScopeModel{}).Error; err != nil {
			return err
		}
		if len(role.DataScopes) > 0 {
			scopeRows := make([]models.RoleDataScopeModel, len(role.DataScopes))
			for i, ds := range role.DataScopes {
				scopeRows[i].FromDomain(role.ID, role.TenantID, ds)
			}
			if err := tx.Create(&scopeRows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a role
func (r *GormRoleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.RoleDataScopeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.RoleModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts roles within a tenant matching the filter
func (r *GormRoleRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.RoleModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a role with the given code exists in the tenant
func (r *GormRoleRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RoleModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// loadAssociations loads permissions and data scopes for a single role
func (r *GormRoleRepository) loadAssociations(ctx context.Context, role *identity.Role) error {
	var permRows []models.RolePermissionModel
	if err := r.db.WithContext(ctx).
		Where("role_id = ?", role.ID).
		Order("code ASC").
		Find(&permRows).Error; err != nil {
		return err
	}
	role.Permissions = make([]identity.Permission, len(permRows))
	for i, row := range permRows {
		role.Permissions[i] = row.ToDomain()
	}

	var scopeRows []models.RoleDataScopeModel
	if err := r.db.WithContext(ctx).
		Where("role_id = ?", role.ID).
		Order("resource ASC").
		Find(&scopeRows).Error; err != nil {
		return err
	}
	role.DataScopes = make([]identity.DataScope, len(scopeRows))
	for i, row := range scopeRows {
		role.DataScopes[i] = row.ToDomain()
	}
	return nil
}

// toRoleSlice converts models to domain roles with associations loaded
func (r *GormRoleRepository) toRoleSlice(ctx context.Context, roleModels []models.RoleModel) ([]identity.Role, error) {
	roles := make([]identity.Role, len(roleModels))
	for i, model := range roleModels {
		role := model.ToDomain()
		if err := r.loadAssociations(ctx, role); err != nil {
			return nil, err
		}
		roles[i] = *role
	}
	return roles, nil
}

// applyFilter applies filter options to the query
func (r *GormRoleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "sort_order")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("sort_order ASC, code ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormRoleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_enabled":
			query = query.Where("is_enabled = ?", value)
		case "is_system_role":
			query = query.Where("is_system_role = ?", value)
		}
	}

	return query
}

// Ensure GormRoleRepository implements RoleRepository
var _ identity.RoleRepository = (*GormRoleRepository)(nil)
