package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OpportunityRepository defines the interface for opportunity persistence
type OpportunityRepository interface {
	// FindByID finds an opportunity by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Opportunity, error)

	// FindAll finds all opportunities within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Opportunity, error)

	// FindByStatus finds opportunities by status within a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status OpportunityStatus, filter shared.Filter) ([]Opportunity, error)

	// FindByAccount finds opportunities belonging to an account
	FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]Opportunity, error)

	// FindByOwner finds opportunities assigned to an owner
	FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]Opportunity, error)

	// FindByStage finds opportunities currently on a pipeline stage
	FindByStage(ctx context.Context, tenantID, stageID uuid.UUID, filter shared.Filter) ([]Opportunity, error)

	// Save creates or updates an opportunity
	Save(ctx context.Context, opp *Opportunity) error

	// Delete deletes an opportunity
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts opportunities within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts opportunities by status
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status OpportunityStatus) (int64, error)

	// CountOpenByStage counts open opportunities on a stage. Used to guard
	// stage removal.
	CountOpenByStage(ctx context.Context, tenantID, stageID uuid.UUID) (int64, error)
}
