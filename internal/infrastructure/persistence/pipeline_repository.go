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

// GormPipelineRepository implements PipelineRepository using GORM
type GormPipelineRepository struct {
	db *gorm.DB
}

// NewGormPipelineRepository creates a new GormPipelineRepository
func NewGormPipelineRepository(db *gorm.DB) *GormPipelineRepository {
	return &GormPipelineRepository{db: db}
}

// FindByID finds a pipeline by ID within a tenant
func (r *GormPipelineRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Pipeline, error) {
	var model models.PipelineModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	pipeline := model.ToDomain()
	if err := r.loadStages(ctx, pipeline); err != nil {
		return nil, err
	}
	return pipeline, nil
}

// FindAll finds all pipelines within a tenant matching the filter
func (r *GormPipelineRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Pipeline, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.PipelineModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	return r.findPipelines(ctx, query)
}

// FindByType finds pipelines of the given type within a tenant
func (r *GormPipelineRepository) FindByType(ctx context.Context, tenantID uuid.UUID, pipelineType crm.PipelineType) ([]crm.Pipeline, error) {
	query := r.db.WithContext(ctx).Model(&models.PipelineModel{}).
		Where("tenant_id = ? AND type = ?", tenantID, pipelineType).
		Order("is_default DESC, name ASC")
	return r.findPipelines(ctx, query)
}

// FindDefault finds the default pipeline for the given type
func (r *GormPipelineRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, pipelineType crm.PipelineType) (*crm.Pipeline, error) {
	var model models.PipelineModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND is_default = ?", tenantID, pipelineType, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	pipeline := model.ToDomain()
	if err := r.loadStages(ctx, pipeline); err != nil {
		return nil, err
	}
	return pipeline, nil
}

// Save creates or updates a pipeline, including its stages
func (r *GormPipelineRepository) Save(ctx context.Context, pipeline *crm.Pipeline) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PipelineModelFromDomain(pipeline)
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		// Replace stage rows
		if err := tx.Where("pipeline_id = ?", pipeline.ID).Delete(&models.PipelineStageModel{}).Error; err != nil {
			return err
		}
		if len(pipeline.Stages) > 0 {
			stageRows := make([]models.PipelineStageModel, len(pipeline.Stages))
			for i, stage := range pipeline.Stages {
				stageRows[i].FromDomain(pipeline.ID, pipeline.TenantID, stage)
			}
			if err := tx.Create(&stageRows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a pipeline and its stages
func (r *GormPipelineRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pipeline_id = ?", id).Delete(&models.PipelineStageModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.PipelineModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts pipelines within a tenant matching the filter
func (r *GormPipelineRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.PipelineModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks if a pipeline with the given name and type exists
func (r *GormPipelineRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, pipelineType crm.PipelineType, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PipelineModel{}).
		Where("tenant_id = ? AND type = ? AND name = ?", tenantID, pipelineType, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// findPipelines executes the query and loads stages for each result
func (r *GormPipelineRepository) findPipelines(ctx context.Context, query *gorm.DB) ([]crm.Pipeline, error) {
	var pipelineModels []models.PipelineModel
	if err := query.Find(&pipelineModels).Error; err != nil {
		return nil, err
	}

	pipelines := make([]crm.Pipeline, len(pipelineModels))
	for i, model := range pipelineModels {
		pipelines[i] = *model.ToDomain()
	}
	if err := r.loadStagesBatch(ctx, pipelines); err != nil {
		return nil, err
	}
	return pipelines, nil
}

// loadStages loads the ordered stage rows for a single pipeline
func (r *GormPipelineRepository) loadStages(ctx context.Context, pipeline *crm.Pipeline) error {
	var stageRows []models.PipelineStageModel
	if err := r.db.WithContext(ctx).
		Where("pipeline_id = ?", pipeline.ID).
		Order("sort_order ASC").
		Find(&stageRows).Error; err != nil {
		return err
	}
	pipeline.Stages = make([]crm.Stage, len(stageRows))
	for i, row := range stageRows {
		pipeline.Stages[i] = row.ToDomain()
	}
	return nil
}

// loadStagesBatch loads stage rows for a slice of pipelines
func (r *GormPipelineRepository) loadStagesBatch(ctx context.Context, pipelines []crm.Pipeline) error {
	if len(pipelines) == 0 {
		return nil
	}
	pipelineIDs := make([]uuid.UUID, len(pipelines))
	for i, p := range pipelines {
		pipelineIDs[i] = p.ID
	}

	var stageRows []models.PipelineStageModel
	if err := r.db.WithContext(ctx).
		Where("pipeline_id IN ?", pipelineIDs).
		Order("sort_order ASC").
		Find(&stageRows).Error; err != nil {
		return err
	}
	stagesByPipeline := make(map[uuid.UUID][]crm.Stage)
	for _, row := range stageRows {
		stagesByPipeline[row.PipelineID] = append(stagesByPipeline[row.PipelineID], row.ToDomain())
	}

	for i := range pipelines {
		pipelines[i].Stages = stagesByPipeline[pipelines[i].ID]
		if pipelines[i].Stages == nil {
			pipelines[i].Stages = make([]crm.Stage, 0)
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormPipelineRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("type ASC, is_default DESC, name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPipelineRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "is_default":
			query = query.Where("is_default = ?", value)
		case "is_archived":
			query = query.Where("is_archived = ?", value)
		}
	}

	return query
}

// Ensure GormPipelineRepository implements PipelineRepository
var _ crm.PipelineRepository = (*GormPipelineRepository)(nil)
