package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// FindByID finds an account by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)

	// FindByName finds an account by exact name within a tenant. Used by
	// lead conversion to reuse an existing company record.
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Account, error)

	// FindAll finds all accounts within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Account, error)

	// FindByOwner finds accounts assigned to an owner
	FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]Account, error)

	// FindChildren finds the direct child accounts of a parent account
	FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// Delete deletes an account
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts accounts within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByName checks if an account with the given name exists in the tenant
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error)
}
