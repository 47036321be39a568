package content

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NoteRepository defines the interface for note persistence
type NoteRepository interface {
	// FindByID finds a note by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Note, error)

	// FindByEntity finds notes attached to an entity, pinned first
	FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID, filter shared.Filter) ([]Note, error)

	// Save creates or updates a note
	Save(ctx context.Context, note *Note) error

	// Delete deletes a note
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// CountByEntity counts notes attached to an entity
	CountByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID) (int64, error)

	// DeleteByEntity deletes all notes attached to an entity
	DeleteByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID) error
}
