package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TeamRepository defines the interface for team persistence
type TeamRepository interface {
	// FindByID finds a team by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Team, error)

	// FindByName finds a team by name within a tenant
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Team, error)

	// FindAll finds all teams within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Team, error)

	// FindByMember finds teams that a user belongs to
	FindByMember(ctx context.Context, tenantID, userID uuid.UUID) ([]Team, error)

	// Save creates or updates a team, including its membership rows
	Save(ctx context.Context, team *Team) error

	// Delete deletes a team
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts teams within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByName checks if a team with the given name exists in the tenant
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error)
}
