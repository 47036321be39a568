package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PipelineRepository defines the interface for pipeline persistence
type PipelineRepository interface {
	// FindByID finds a pipeline by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Pipeline, error)

	// FindAll finds all pipelines within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Pipeline, error)

	// FindByType finds pipelines of the given type within a tenant
	FindByType(ctx context.Context, tenantID uuid.UUID, pipelineType PipelineType) ([]Pipeline, error)

	// FindDefault finds the default pipeline for the given type
	FindDefault(ctx context.Context, tenantID uuid.UUID, pipelineType PipelineType) (*Pipeline, error)

	// Save creates or updates a pipeline, including its stages
	Save(ctx context.Context, pipeline *Pipeline) error

	// Delete deletes a pipeline
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts pipelines within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByName checks if a pipeline with the given name and type exists
	ExistsByName(ctx context.Context, tenantID uuid.UUID, pipelineType PipelineType, name string) (bool, error)
}
