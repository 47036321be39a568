package layout

import (
	"time"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/google/uuid"
)

// CustomFieldDTO represents a field definition returned to clients
type CustomFieldDTO struct {
	ID                 uuid.UUID           `json:"id"`
	TenantID           uuid.UUID           `json:"tenant_id"`
	Module             string              `json:"module"`
	Key                string              `json:"key"`
	Label              string              `json:"label"`
	Type               string              `json:"type"`
	Required           bool                `json:"required"`
	DefaultValue       string              `json:"default_value,omitempty"`
	Options            []string            `json:"options,omitempty"`
	DependsOn          string              `json:"depends_on,omitempty"`
	ConditionalOptions map[string][]string `json:"conditional_options,omitempty"`
	SortOrder          int                 `json:"sort_order"`
	GroupID            *uuid.UUID          `json:"group_id,omitempty"`
	IsActive           bool                `json:"is_active"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func toCustomFieldDTO(f *layout.CustomField) *CustomFieldDTO {
	return &CustomFieldDTO{
		ID:                 f.ID,
		TenantID:           f.TenantID,
		Module:             string(f.Module),
		Key:                f.Key,
		Label:              f.Label,
		Type:               string(f.Type),
		Required:           f.Required,
		DefaultValue:       f.DefaultValue,
		Options:            f.Options,
		DependsOn:          f.DependsOn,
		ConditionalOptions: f.ConditionalOptions,
		SortOrder:          f.SortOrder,
		GroupID:            f.GroupID,
		IsActive:           f.IsActive,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
}

// CustomTabDTO represents a tab container returned to clients
type CustomTabDTO struct {
	ID        uuid.UUID `json:"id"`
	Module    string    `json:"module"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
}

func toCustomTabDTO(t *layout.CustomTab) *CustomTabDTO {
	return &CustomTabDTO{
		ID:        t.ID,
		Module:    string(t.Module),
		Name:      t.Name,
		SortOrder: t.SortOrder,
		IsActive:  t.IsActive,
	}
}

// CustomFieldGroupDTO represents a field group returned to clients
type CustomFieldGroupDTO struct {
	ID        uuid.UUID  `json:"id"`
	Module    string     `json:"module"`
	Name      string     `json:"name"`
	TabID     *uuid.UUID `json:"tab_id,omitempty"`
	SortOrder int        `json:"sort_order"`
	Columns   int        `json:"columns"`
}

func toCustomFieldGroupDTO(g *layout.CustomFieldGroup) *CustomFieldGroupDTO {
	return &CustomFieldGroupDTO{
		ID:        g.ID,
		Module:    string(g.Module),
		Name:      g.Name,
		TabID:     g.TabID,
		SortOrder: g.SortOrder,
		Columns:   g.Columns,
	}
}

// PageLayoutDTO represents a page layout returned to clients
type PageLayoutDTO struct {
	ID         uuid.UUID          `json:"id"`
	TenantID   uuid.UUID          `json:"tenant_id"`
	Module     string             `json:"module"`
	LayoutType string             `json:"layout_type"`
	Name       string             `json:"name"`
	IsDefault  bool               `json:"is_default"`
	Body       []layout.LayoutTab `json:"body"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func toPageLayoutDTO(p *layout.PageLayout) *PageLayoutDTO {
	return &PageLayoutDTO{
		ID:         p.ID,
		TenantID:   p.TenantID,
		Module:     string(p.Module),
		LayoutType: string(p.LayoutType),
		Name:       p.Name,
		IsDefault:  p.IsDefault,
		Body:       p.Body,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
