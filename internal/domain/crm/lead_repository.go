package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadRepository defines the interface for lead persistence
type LeadRepository interface {
	// FindByID finds a lead by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Lead, error)

	// FindAll finds all leads within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Lead, error)

	// FindByStatus finds leads by status within a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status LeadStatus, filter shared.Filter) ([]Lead, error)

	// FindByOwner finds leads assigned to an owner
	FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]Lead, error)

	// FindByStage finds leads currently on a pipeline stage
	FindByStage(ctx context.Context, tenantID, stageID uuid.UUID, filter shared.Filter) ([]Lead, error)

	// Save creates or updates a lead
	Save(ctx context.Context, lead *Lead) error

	// Delete deletes a lead
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts leads within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts leads by status
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status LeadStatus) (int64, error)

	// CountOpenByStage counts non-terminal leads on a stage. Used to guard
	// stage removal.
	CountOpenByStage(ctx context.Context, tenantID, stageID uuid.UUID) (int64, error)
}
