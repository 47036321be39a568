package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID within a tenant
func (r *GormAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Account, error) {
	var model models.AccountModel
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

// FindByName finds an account by exact name within a tenant
func (r *GormAccountRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*crm.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all accounts within a tenant matching the filter
func (r *GormAccountRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Account, error) {
	var accountModels []models.AccountModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AccountModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}
	return toAccountSlice(accountModels), nil
}

// FindByOwner finds accounts assigned to an owner
func (r *GormAccountRepository) FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]crm.Account, error) {
	var accountModels []models.AccountModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AccountModel{}).
			Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID),
		filter,
	)
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}
	return toAccountSlice(accountModels), nil
}

// FindChildren finds the direct child accounts of a parent account
func (r *GormAccountRepository) FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]crm.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_account_id = ?", tenantID, parentID).
		Order("name ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	return toAccountSlice(accountModels), nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *crm.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an account
func (r *GormAccountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AccountModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts accounts within a tenant matching the filter
func (r *GormAccountRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.AccountModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks if an account with the given name exists in the tenant
func (r *GormAccountRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func toAccountSlice(accountModels []models.AccountModel) []crm.Account {
	accounts := make([]crm.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts
}

// applyFilter applies filter options to the query
func (r *GormAccountRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AccountSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAccountRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR industry ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "industry":
			query = query.Where("industry = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "team_id":
			query = query.Where("team_id = ?", value)
		case "parent_account_id":
			query = query.Where("parent_account_id = ?", value)
		}
	}

	return query
}

// Ensure GormAccountRepository implements AccountRepository
var _ crm.AccountRepository = (*GormAccountRepository)(nil)
