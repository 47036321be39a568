package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID within a tenant
func (r *GormUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user := model.ToDomain()
	if err := r.loadRoleIDs(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByUsername finds a user by username within a tenant
func (r *GormUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(username) = ?", tenantID, strings.ToLower(username)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user := model.ToDomain()
	if err := r.loadRoleIDs(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail finds a user by email within a tenant
func (r *GormUserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*identity.User, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(email) = ?", tenantID, strings.ToLower(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user := model.ToDomain()
	if err := r.loadRoleIDs(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindAll finds all users within a tenant matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.UserModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	return r.findUsers(ctx, query)
}

// FindByStatus finds users by status within a tenant
func (r *GormUserRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status identity.UserStatus, filter shared.Filter) ([]identity.User, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.UserModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	return r.findUsers(ctx, query)
}

// FindByDepartment finds users belonging to a department
func (r *GormUserRepository) FindByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.UserModel{}).
			Where("tenant_id = ? AND department_id = ?", tenantID, departmentID),
		filter,
	)
	return r.findUsers(ctx, query)
}

// FindByTeam finds users belonging to a team
func (r *GormUserRepository) FindByTeam(ctx context.Context, tenantID, teamID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.UserModel{}).
			Where("tenant_id = ? AND team_id = ?", tenantID, teamID),
		filter,
	)
	return r.findUsers(ctx, query)
}

// FindByRole finds users holding a role
func (r *GormUserRepository) FindByRole(ctx context.Context, tenantID, roleID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	// Columns are table-qualified because the join makes created_at ambiguous
	query := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Select("users.*").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("users.tenant_id = ? AND user_roles.role_id = ?", tenantID, roleID)
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, UserSortFields, "created_at")
	query = query.Order("users." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return r.findUsers(ctx, query)
}

// Save creates or updates a user, including its role assignments
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.UserModelFromDomain(user)
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		// Replace role assignments
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		if len(user.RoleIDs) == 0 {
			return nil
		}
		rows := make([]models.UserRoleModel, len(user.RoleIDs))
		for i, roleID := range user.RoleIDs {
			rows[i] = models.UserRoleModel{
				UserID:    user.ID,
				RoleID:    roleID,
				TenantID:  user.TenantID,
				CreatedAt: time.Now(),
			}
		}
		return tx.Create(&rows).Error
	})
}

// Delete deletes a user
func (r *GormUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND user_id = ?", tenantID, id).
			Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.UserModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts users within a tenant matching the filter
func (r *GormUserRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.UserModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByUsername checks if a user with the given username exists in the tenant
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("tenant_id = ? AND LOWER(username) = ?", tenantID, strings.ToLower(username)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByEmail checks if a user with the given email exists in the tenant
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("tenant_id = ? AND LOWER(email) = ?", tenantID, strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// findUsers executes the query and loads role assignments for each result
func (r *GormUserRepository) findUsers(ctx context.Context, query *gorm.DB) ([]identity.User, error) {
	var userModels []models.UserModel
	if err := query.Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]identity.User, len(userModels))
	for i, model := range userModels {
		users[i] = *model.ToDomain()
	}
	if err := r.loadRoleIDsBatch(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// loadRoleIDs loads the role assignments for a single user
func (r *GormUserRepository) loadRoleIDs(ctx context.Context, user *identity.User) error {
	var roleIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.UserRoleModel{}).
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Pluck("role_id", &roleIDs).Error; err != nil {
		return err
	}
	user.RoleIDs = roleIDs
	return nil
}

// loadRoleIDsBatch loads role assignments for a slice of users in one query
func (r *GormUserRepository) loadRoleIDsBatch(ctx context.Context, users []identity.User) error {
	if len(users) == 0 {
		return nil
	}
	userIDs := make([]uuid.UUID, len(users))
	for i, u := range users {
		userIDs[i] = u.ID
	}

	var rows []models.UserRoleModel
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return err
	}

	byUser := make(map[uuid.UUID][]uuid.UUID, len(users))
	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], row.RoleID)
	}
	for i := range users {
		if roleIDs, ok := byUser[users[i].ID]; ok {
			users[i].RoleIDs = roleIDs
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormUserRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, UserSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormUserRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR display_name ILIKE ? OR email ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "department_id":
			query = query.Where("department_id = ?", value)
		case "team_id":
			query = query.Where("team_id = ?", value)
		case "must_change_password":
			query = query.Where("must_change_password = ?", value)
		}
	}

	return query
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
