package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	// FindByID finds a contact by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Contact, error)

	// FindByEmail finds a contact whose primary email matches
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Contact, error)

	// FindAll finds all contacts within a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Contact, error)

	// FindByAccount finds contacts linked to an account
	FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]Contact, error)

	// FindByOwner finds contacts assigned to an owner
	FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]Contact, error)

	// Save creates or updates a contact, including methods and account links
	Save(ctx context.Context, contact *Contact) error

	// Delete deletes a contact
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts contacts within a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByAccount counts contacts linked to an account
	CountByAccount(ctx context.Context, tenantID, accountID uuid.UUID) (int64, error)
}
