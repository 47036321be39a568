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

// GormOpportunityRepository implements OpportunityRepository using GORM
type GormOpportunityRepository struct {
	db *gorm.DB
}

// NewGormOpportunityRepository creates a new GormOpportunityRepository
func NewGormOpportunityRepository(db *gorm.DB) *GormOpportunityRepository {
	return &GormOpportunityRepository{db: db}
}

// FindByID finds an opportunity by ID within a tenant
func (r *GormOpportunityRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Opportunity, error) {
	var model models.OpportunityModel
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

// FindAll finds all opportunities within a tenant matching the filter
func (r *GormOpportunityRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Opportunity, error) {
	var oppModels []models.OpportunityModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OpportunityModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&oppModels).Error; err != nil {
		return nil, err
	}
	return toOpportunitySlice(oppModels), nil
}

// FindByStatus finds opportunities by status within a tenant
func (r *GormOpportunityRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status crm.OpportunityStatus, filter shared.Filter) ([]crm.Opportunity, error) {
	var oppModels []models.OpportunityModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OpportunityModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Find(&oppModels).Error; err != nil {
		return nil, err
	}
	return toOpportunitySlice(oppModels), nil
}

// FindByAccount finds opportunities belonging to an account
func (r *GormOpportunityRepository) FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]crm.Opportunity, error) {
	var oppModels []models.OpportunityModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OpportunityModel{}).
			Where("tenant_id = ? AND account_id = ?", tenantID, accountID),
		filter,
	)
	if err := query.Find(&oppModels).Error; err != nil {
		return nil, err
	}
	return toOpportunitySlice(oppModels), nil
}

// FindByOwner finds opportunities assigned to an owner
func (r *GormOpportunityRepository) FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]crm.Opportunity, error) {
	var oppModels []models.OpportunityModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OpportunityModel{}).
			Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID),
		filter,
	)
	if err := query.Find(&oppModels).Error; err != nil {
		return nil, err
	}
	return toOpportunitySlice(oppModels), nil
}

// FindByStage finds opportunities currently on a pipeline stage
func (r *GormOpportunityRepository) FindByStage(ctx context.Context, tenantID, stageID uuid.UUID, filter shared.Filter) ([]crm.Opportunity, error) {
	var oppModels []models.OpportunityModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OpportunityModel{}).
			Where("tenant_id = ? AND stage_id = ?", tenantID, stageID),
		filter,
	)
	if err := query.Find(&oppModels).Error; err != nil {
		return nil, err
	}
	return toOpportunitySlice(oppModels), nil
}

// Save creates or updates an opportunity
func (r *GormOpportunityRepository) Save(ctx context.Context, opp *crm.Opportunity) error {
	model := models.OpportunityModelFromDomain(opp)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an opportunity
func (r *GormOpportunityRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OpportunityModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts opportunities within a tenant matching the filter
func (r *GormOpportunityRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.OpportunityModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts opportunities by status
func (r *GormOpportunityRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status crm.OpportunityStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OpportunityModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenByStage counts open opportunities on a stage
func (r *GormOpportunityRepository) CountOpenByStage(ctx context.Context, tenantID, stageID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OpportunityModel{}).
		Where("tenant_id = ? AND stage_id = ? AND status = ?", tenantID, stageID, crm.OpportunityStatusOpen).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toOpportunitySlice(oppModels []models.OpportunityModel) []crm.Opportunity {
	opps := make([]crm.Opportunity, len(oppModels))
	for i, model := range oppModels {
		opps[i] = *model.ToDomain()
	}
	return opps
}

// applyFilter applies filter options to the query
func (r *GormOpportunityRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OpportunitySortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOpportunityRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR next_step ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "account_id":
			query = query.Where("account_id = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "team_id":
			query = query.Where("team_id = ?", value)
		case "pipeline_id":
			query = query.Where("pipeline_id = ?", value)
		case "stage_id":
			query = query.Where("stage_id = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		}
	}

	return query
}

// Ensure GormOpportunityRepository implements OpportunityRepository
var _ crm.OpportunityRepository = (*GormOpportunityRepository)(nil)
