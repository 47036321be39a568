package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DepartmentRepository defines the interface for department persistence
type DepartmentRepository interface {
	// FindByID finds a department by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Department, error)

	// FindByCode finds a department by code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Department, error)

	// FindAll finds all departments within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Department, error)

	// FindRoots finds all root departments (no parent) within a tenant
	FindRoots(ctx context.Context, tenantID uuid.UUID) ([]Department, error)

	// FindChildren finds the direct children of a department
	FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]Department, error)

	// FindDescendants finds all descendants of a department using its materialized path
	FindDescendants(ctx context.Context, tenantID uuid.UUID, path string) ([]Department, error)

	// Save creates or updates a department
	Save(ctx context.Context, dept *Department) error

	// Delete deletes a department
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts departments within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountChildren counts the direct children of a department
	CountChildren(ctx context.Context, tenantID, parentID uuid.UUID) (int64, error)

	// ExistsByCode checks if a department with the given code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
