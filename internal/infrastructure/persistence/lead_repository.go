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

// GormLeadRepository implements LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead by ID within a tenant
func (r *GormLeadRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Lead, error) {
	var model models.LeadModel
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

// FindAll finds all leads within a tenant matching the filter
func (r *GormLeadRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Lead, error) {
	var leadModels []models.LeadModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&leadModels).Error; err != nil {
		return nil, err
	}
	return toLeadSlice(leadModels), nil
}

// FindByStatus finds leads by status within a tenant
func (r *GormLeadRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status crm.LeadStatus, filter shared.Filter) ([]crm.Lead, error) {
	var leadModels []models.LeadModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Find(&leadModels).Error; err != nil {
		return nil, err
	}
	return toLeadSlice(leadModels), nil
}

// FindByOwner finds leads assigned to an owner
func (r *GormLeadRepository) FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]crm.Lead, error) {
	var leadModels []models.LeadModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).
			Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID),
		filter,
	)
	if err := query.Find(&leadModels).Error; err != nil {
		return nil, err
	}
	return toLeadSlice(leadModels), nil
}

// FindByStage finds leads currently on a pipeline stage
func (r *GormLeadRepository) FindByStage(ctx context.Context, tenantID, stageID uuid.UUID, filter shared.Filter) ([]crm.Lead, error) {
	var leadModels []models.LeadModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).
			Where("tenant_id = ? AND stage_id = ?", tenantID, stageID),
		filter,
	)
	if err := query.Find(&leadModels).Error; err != nil {
		return nil, err
	}
	return toLeadSlice(leadModels), nil
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	model := models.LeadModelFromDomain(lead)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a lead
func (r *GormLeadRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LeadModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts leads within a tenant matching the filter
func (r *GormLeadRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts leads by status
func (r *GormLeadRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status crm.LeadStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenByStage counts non-terminal leads on a stage
func (r *GormLeadRepository) CountOpenByStage(ctx context.Context, tenantID, stageID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND stage_id = ? AND status NOT IN ?",
			tenantID, stageID, []crm.LeadStatus{crm.LeadStatusConverted, crm.LeadStatusDisqualified}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toLeadSlice(leadModels []models.LeadModel) []crm.Lead {
	leads := make([]crm.Lead, len(leadModels))
	for i, model := range leadModels {
		leads[i] = *model.ToDomain()
	}
	return leads
}

// applyFilter applies filter options to the query
func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, LeadSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLeadRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR company ILIKE ? OR email ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "rating":
			query = query.Where("rating = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "team_id":
			query = query.Where("team_id = ?", value)
		case "pipeline_id":
			query = query.Where("pipeline_id = ?", value)
		case "stage_id":
			query = query.Where("stage_id = ?", value)
		}
	}

	return query
}

// Ensure GormLeadRepository implements LeadRepository
var _ crm.LeadRepository = (*GormLeadRepository)(nil)
