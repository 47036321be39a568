package layout

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomFieldRepository defines the interface for custom field persistence
type CustomFieldRepository interface {
	// FindByID finds a field by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomField, error)

	// FindByKey finds a field by module and key within a tenant
	FindByKey(ctx context.Context, tenantID uuid.UUID, module Module, key string) (*CustomField, error)

	// FindByModule finds all fields of a module, ordered by sort order
	FindByModule(ctx context.Context, tenantID uuid.UUID, module Module) ([]CustomField, error)

	// FindActiveByModule finds the active fields of a module, ordered by
	// sort order. The resolver runs over this set.
	FindActiveByModule(ctx context.Context, tenantID uuid.UUID, module Module) ([]CustomField, error)

	// FindDependents finds fields that depend on the given parent key
	FindDependents(ctx context.Context, tenantID uuid.UUID, module Module, parentKey string) ([]CustomField, error)

	// Save creates or updates a field
	Save(ctx context.Context, field *CustomField) error

	// Delete deletes a field definition
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// ExistsByKey checks if a field with the given key exists on the module
	ExistsByKey(ctx context.Context, tenantID uuid.UUID, module Module, key string) (bool, error)
}

// CustomTabRepository defines the interface for tab persistence
type CustomTabRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomTab, error)
	FindByModule(ctx context.Context, tenantID uuid.UUID, module Module) ([]CustomTab, error)
	Save(ctx context.Context, tab *CustomTab) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CustomFieldGroupRepository defines the interface for field group persistence
type CustomFieldGroupRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomFieldGroup, error)
	FindByModule(ctx context.Context, tenantID uuid.UUID, module Module) ([]CustomFieldGroup, error)
	FindByTab(ctx context.Context, tenantID, tabID uuid.UUID) ([]CustomFieldGroup, error)
	Save(ctx context.Context, group *CustomFieldGroup) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PageLayoutRepository defines the interface for page layout persistence
type PageLayoutRepository interface {
	// FindByID finds a layout by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PageLayout, error)

	// FindByModule finds all layouts of a module
	FindByModule(ctx context.Context, tenantID uuid.UUID, module Module, filter shared.Filter) ([]PageLayout, error)

	// FindByName finds a layout by module, layout type, and name
	FindByName(ctx context.Context, tenantID uuid.UUID, module Module, layoutType LayoutType, name string) (*PageLayout, error)

	// FindDefault finds the default layout for a module and layout type
	FindDefault(ctx context.Context, tenantID uuid.UUID, module Module, layoutType LayoutType) (*PageLayout, error)

	// Save creates or updates a layout
	Save(ctx context.Context, pl *PageLayout) error

	// Delete deletes a layout
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// ExistsByName checks uniqueness of (module, layout type, name)
	ExistsByName(ctx context.Context, tenantID uuid.UUID, module Module, layoutType LayoutType, name string) (bool, error)
}
