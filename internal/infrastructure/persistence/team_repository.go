package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTeamRepository implements TeamRepository using GORM
type GormTeamRepository struct {
	db *gorm.DB
}

// NewGormTeamRepository creates a new GormTeamRepository
func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

// FindByID finds a team by ID within a tenant
func (r *GormTeamRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.Team, error) {
	var model models.TeamModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	team := model.ToDomain()
	if err := r.loadMemberIDs(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// FindByName finds a team by name within a tenant
func (r *GormTeamRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*identity.Team, error) {
	var model models.TeamModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	team := model.ToDomain()
	if err := r.loadMemberIDs(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// FindAll finds all teams within a tenant matching the filter
func (r *GormTeamRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Team, error) {
	var teamModels []models.TeamModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TeamModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&teamModels).Error; err != nil {
		return nil, err
	}
	return r.toTeamSlice(ctx, teamModels)
}

// FindByMember finds teams that a user belongs to
func (r *GormTeamRepository) FindByMember(ctx context.Context, tenantID, userID uuid.UUID) ([]identity.Team, error) {
	var teamModels []models.TeamModel
	if err := r.db.WithContext(ctx).
		Model(&models.TeamModel{}).
		Select("teams.*").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("teams.tenant_id = ? AND team_members.user_id = ?", tenantID, userID).
		Order("teams.sort_order ASC, teams.name ASC").
		Find(&teamModels).Error; err != nil {
		return nil, err
	}
	return r.toTeamSlice(ctx, teamModels)
}

// Save creates or updates a team, including its membership rows
func (r *GormTeamRepository) Save(ctx context.Context, team *identity.Team) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.TeamModelFromDomain(team)
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		// Replace membership rows
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMemberModel{}).Error; err != nil {
			return err
		}
		if len(team.MemberIDs) == 0 {
			return nil
		}
		rows := make([]models.TeamMemberModel, len(team.MemberIDs))
		for i, userID := range team.MemberIDs {
			rows[i] = models.TeamMemberModel{
				TeamID:    team.ID,
				UserID:    userID,
				TenantID:  team.TenantID,
				CreatedAt: time.Now(),
			}
		}
		return tx.Create(&rows).Error
	})
}

// Delete deletes a team
func (r *GormTeamRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND team_id = ?", tenantID, id).
			Delete(&models.TeamMemberModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.TeamModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts teams within a tenant matching the filter
func (r *GormTeamRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.TeamModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks if a team with the given name exists in the tenant
func (r *GormTeamRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeamModel{}).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// loadMemberIDs loads the membership rows for a single team
func (r *GormTeamRepository) loadMemberIDs(ctx context.Context, team *identity.Team) error {
	var memberIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.TeamMemberModel{}).
		Where("team_id = ?", team.ID).
		Order("created_at ASC").
		Pluck("user_id", &memberIDs).Error; err != nil {
		return err
	}
	team.MemberIDs = memberIDs
	return nil
}

// toTeamSlice converts models to domain teams with members loaded
func (r *GormTeamRepository) toTeamSlice(ctx context.Context, teamModels []models.TeamModel) ([]identity.Team, error) {
	teams := make([]identity.Team, len(teamModels))
	for i, model := range teamModels {
		team := model.ToDomain()
		if err := r.loadMemberIDs(ctx, team); err != nil {
			return nil, err
		}
		teams[i] = *team
	}
	return teams, nil
}

// applyFilter applies filter options to the query
func (r *GormTeamRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "sort_order")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("sort_order ASC, name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTeamRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "lead_user_id":
			query = query.Where("lead_user_id = ?", value)
		}
	}

	return query
}

// Ensure GormTeamRepository implements TeamRepository
var _ identity.TeamRepository = (*GormTeamRepository)(nil)
