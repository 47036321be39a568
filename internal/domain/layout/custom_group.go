package layout

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomFieldGroup is a named ordered container for custom fields within
// a tab.
type CustomFieldGroup struct {
	shared.TenantAggregateRoot
	Module    Module
	Name      string
	TabID     *uuid.UUID
	SortOrder int
	Columns   int // 1 or 2 column rendering
}

// NewCustomFieldGroup creates a new field group
func NewCustomFieldGroup(tenantID uuid.UUID, module Module, name string) (*CustomFieldGroup, error) {
	if !ValidModule(module) {
		return nil, shared.NewDomainError("INVALID_MODULE", "Unknown module for field group")
	}
	if err := validateContainerName(name); err != nil {
		return nil, err
	}

	return &CustomFieldGroup{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Module:              module,
		Name:                strings.TrimSpace(name),
		Columns:             2,
	}, nil
}

// Rename renames the group
func (g *CustomFieldGroup) Rename(name string) error {
	if err := validateContainerName(name); err != nil {
		return err
	}

	g.Name = strings.TrimSpace(name)
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	return nil
}

// SetTab places the group in a tab
func (g *CustomFieldGroup) SetTab(tabID *uuid.UUID) {
	g.TabID = tabID
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
}

// SetSortOrder sets the display order
func (g *CustomFieldGroup) SetSortOrder(order int) {
	g.SortOrder = order
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
}

// SetColumns sets the column count used when rendering the group
func (g *CustomFieldGroup) SetColumns(columns int) error {
	if columns < 1 || columns > 4 {
		return shared.NewDomainError("INVALID_COLUMNS", "Group columns must be between 1 and 4")
	}

	g.Columns = columns
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	return nil
}

// CustomTab is a named ordered container for field groups on a record
// page.
type CustomTab struct {
	shared.TenantAggregateRoot
	Module    Module
	Name      string
	SortOrder int
	IsActive  bool
}

// NewCustomTab creates a new tab
func NewCustomTab(tenantID uuid.UUID, module Module, name string) (*CustomTab, error) {
	if !ValidModule(module) {
		return nil, shared.NewDomainError("INVALID_MODULE", "Unknown module for tab")
	}
	if err := validateContainerName(name); err != nil {
		return nil, err
	}

	return &CustomTab{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Module:              module,
		Name:                strings.TrimSpace(name),
		IsActive:            true,
	}, nil
}

// Rename renames the tab
func (t *CustomTab) Rename(name string) error {
	if err := validateContainerName(name); err != nil {
		return err
	}

	t.Name = strings.TrimSpace(name)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetSortOrder sets the display order
func (t *CustomTab) SetSortOrder(order int) {
	t.SortOrder = order
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Activate re-enables the tab
func (t *CustomTab) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Deactivate hides the tab
func (t *CustomTab) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

func validateContainerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}
