package content

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentRepository defines the interface for document metadata persistence
type DocumentRepository interface {
	// FindByID finds a document by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)

	// FindByEntity finds documents attached to an entity
	FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID, filter shared.Filter) ([]Document, error)

	// FindByStorageKey finds a document by its storage key
	FindByStorageKey(ctx context.Context, tenantID uuid.UUID, storageKey string) (*Document, error)

	// Save creates or updates a document
	Save(ctx context.Context, doc *Document) error

	// Delete deletes a document's metadata
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// CountByEntity counts documents attached to an entity
	CountByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID) (int64, error)
}
