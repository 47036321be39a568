package catalog

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)

	// FindAll finds all products within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindActive finds all active products within a tenant
	FindActive(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts products within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a product with the given code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
