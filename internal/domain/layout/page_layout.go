package layout

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LayoutType represents which screen a layout arranges
type LayoutType string

const (
	LayoutTypeDetail LayoutType = "detail"
	LayoutTypeEdit   LayoutType = "edit"
	LayoutTypeCreate LayoutType = "create"
	LayoutTypeList   LayoutType = "list"
)

// ValidLayoutType reports whether the layout type is supported
func ValidLayoutType(t LayoutType) bool {
	switch t {
	case LayoutTypeDetail, LayoutTypeEdit, LayoutTypeCreate, LayoutTypeList:
		return true
	default:
		return false
	}
}

// LayoutGroup is one group placement inside a layout tab
type LayoutGroup struct {
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	FieldKeys []string   `json:"field_keys"` // Ordered; standard and custom field keys
}

// LayoutTab is one tab placement inside a layout body
type LayoutTab struct {
	TabID  *uuid.UUID    `json:"tab_id,omitempty"`
	Title  string        `json:"title,omitempty"`
	Groups []LayoutGroup `json:"groups"`
}

// PageLayout arranges tabs, groups, and fields for a module screen.
// Uniqueness of (module, layout type, name) and the single-default rule
// are enforced by the service against the repository.
type PageLayout struct {
	shared.TenantAggregateRoot
	Module     Module
	LayoutType LayoutType
	Name       string
	IsDefault  bool
	Body       []LayoutTab // Ordered arrangement, stored as JSON
}

// NewPageLayout creates a new page layout
func NewPageLayout(tenantID uuid.UUID, module Module, layoutType LayoutType, name string) (*PageLayout, error) {
	if !ValidModule(module) {
		return nil, shared.NewDomainError("INVALID_MODULE", "Unknown module for page layout")
	}
	if !ValidLayoutType(layoutType) {
		return nil, shared.NewDomainError("INVALID_LAYOUT_TYPE", "Unknown layout type")
	}
	if err := validateContainerName(name); err != nil {
		return nil, err
	}

	return &PageLayout{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Module:              module,
		LayoutType:          layoutType,
		Name:                strings.TrimSpace(name),
		Body:                make([]LayoutTab, 0),
	}, nil
}

// Rename renames the layout
func (p *PageLayout) Rename(name string) error {
	if err := validateContainerName(name); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetBody replaces the layout arrangement. A field key may appear at
// most once across the whole layout.
func (p *PageLayout) SetBody(body []LayoutTab) error {
	seen := make(map[string]bool)
	for _, tab := range body {
		for _, group := range tab.Groups {
			for _, key := range group.FieldKeys {
				key = strings.ToLower(strings.TrimSpace(key))
				if key == "" {
					return shared.NewDomainError("INVALID_LAYOUT_BODY", "Layout field keys cannot be empty")
				}
				if seen[key] {
					return shared.NewDomainError("INVALID_LAYOUT_BODY", "Field '"+key+"' is placed more than once")
				}
				seen[key] = true
			}
		}
	}

	p.Body = body
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// MarkDefault flags this layout as the default for its module and
// layout type. Unsetting the previous default is handled by the service.
func (p *PageLayout) MarkDefault() {
	p.IsDefault = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// ClearDefault removes the default flag
func (p *PageLayout) ClearDefault() {
	p.IsDefault = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// FieldKeys returns every field key placed in the layout, in render order
func (p *PageLayout) FieldKeys() []string {
	keys := make([]string, 0)
	for _, tab := range p.Body {
		for _, group := range tab.Groups {
			keys = append(keys, group.FieldKeys...)
		}
	}
	return keys
}

// ContainsField reports whether the layout places the given field key
func (p *PageLayout) ContainsField(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, k := range p.FieldKeys() {
		if k == key {
			return true
		}
	}
	return false
}
