package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RoleRepository defines the interface for role persistence
type RoleRepository interface {
	// FindByID finds a role by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Role, error)

	// FindByCode finds a role by code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Role, error)

	// FindByIDs finds roles by a list of IDs within a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Role, error)

	// FindAll finds all roles within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Role, error)

	// FindEnabled finds all enabled roles within a tenant
	FindEnabled(ctx context.Context, tenantID uuid.UUID) ([]Role, error)

	// Save creates or updates a role, including permissions and data scopes
	Save(ctx context.Context, role *Role) error

	// Delete deletes a role
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts roles within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a role with the given code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
