package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username within a tenant
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*User, error)

	// FindByEmail finds a user by email within a tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)

	// FindAll finds all users within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]User, error)

	// FindByStatus finds users by status within a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status UserStatus, filter shared.Filter) ([]User, error)

	// FindByDepartment finds users belonging to a department
	FindByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID, filter shared.Filter) ([]User, error)

	// FindByTeam finds users belonging to a team
	FindByTeam(ctx context.Context, tenantID, teamID uuid.UUID, filter shared.Filter) ([]User, error)

	// FindByRole finds users holding a role
	FindByRole(ctx context.Context, tenantID, roleID uuid.UUID, filter shared.Filter) ([]User, error)

	// Save creates or updates a user, including its role assignments
	Save(ctx context.Context, user *User) error

	// Delete deletes a user
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts users within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByUsername checks if a user with the given username exists in the tenant
	ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists in the tenant
	ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)
}
