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

// GormDepartmentRepository implements DepartmentRepository using GORM
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewGormDepartmentRepository creates a new GormDepartmentRepository
func NewGormDepartmentRepository(db *gorm.DB) *GormDepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

// FindByID finds a department by ID within a tenant
func (r *GormDepartmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.Department, error) {
	var model models.DepartmentModel
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

// FindByCode finds a department by code within a tenant
func (r *GormDepartmentRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*identity.Department, error) {
	var model models.DepartmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all departments within a tenant matching the filter
func (r *GormDepartmentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Department, error) {
	var deptModels []models.DepartmentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.DepartmentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&deptModels).Error; err != nil {
		return nil, err
	}
	return toDepartmentSlice(deptModels), nil
}

// FindRoots finds all root departments (no parent) within a tenant
func (r *GormDepartmentRepository) FindRoots(ctx context.Context, tenantID uuid.UUID) ([]identity.Department, error) {
	var deptModels []models.DepartmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id IS NULL", tenantID).
		Order("sort_order ASC, code ASC").
		Find(&deptModels).Error; err != nil {
		return nil, err
	}
	return toDepartmentSlice(deptModels), nil
}

// FindChildren finds the direct children of a department
func (r *GormDepartmentRepository) FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]identity.Department, error) {
	var deptModels []models.DepartmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id = ?", tenantID, parentID).
		Order("sort_order ASC, code ASC").
		Find(&deptModels).Error; err != nil {
		return nil, err
	}
	return toDepartmentSlice(deptModels), nil
}

// FindDescendants finds all descendants of a department using its materialized path
func (r *GormDepartmentRepository) FindDescendants(ctx context.Context, tenantID uuid.UUID, path string) ([]identity.Department, error) {
	var deptModels []models.DepartmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND path LIKE ? AND path != ?", tenantID, path+"%", path).
		Order("path ASC, sort_order ASC").
		Find(&deptModels).Error; err != nil {
		return nil, err
	}
	return toDepartmentSlice(deptModels), nil
}

// Save creates or updates a department
func (r *GormDepartmentRepository) Save(ctx context.Context, dept *identity.Department) error {
	model := models.DepartmentModelFromDomain(dept)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a department
func (r *GormDepartmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DepartmentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts departments within a tenant matching the filter
func (r *GormDepartmentRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.DepartmentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountChildren counts the direct children of a department
func (r *GormDepartmentRepository) CountChildren(ctx context.Context, tenantID, parentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DepartmentModel{}).
		Where("tenant_id = ? AND parent_id = ?", tenantID, parentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a department with the given code exists in the tenant
func (r *GormDepartmentRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DepartmentModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func toDepartmentSlice(deptModels []models.DepartmentModel) []identity.Department {
	depts := make([]identity.Department, len(deptModels))
	for i, model := range deptModels {
		depts[i] = *model.ToDomain()
	}
	return depts
}

// applyFilter applies filter options to the query
func (r *GormDepartmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "sort_order")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("level ASC, sort_order ASC, code ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDepartmentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "parent_id":
			query = query.Where("parent_id = ?", value)
		case "level":
			query = query.Where("level = ?", value)
		case "manager_id":
			query = query.Where("manager_id = ?", value)
		}
	}

	return query
}

// Ensure GormDepartmentRepository implements DepartmentRepository
var _ identity.DepartmentRepository = (*GormDepartmentRepository)(nil)
