package models

import (
	"encoding/json"

	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomFieldModel is the persistence model for the CustomField domain entity.
type CustomFieldModel struct {
	TenantAggregateModel
	Module             layout.Module    `gorm:"type:varchar(20);not null;index:idx_custom_fields_module"`
	Key                string           `gorm:"type:varchar(100);not null;index:idx_custom_fields_module"`
	Label              string           `gorm:"type:varchar(200);not null"`
	Type               layout.FieldType `gorm:"type:varchar(20);not null"`
	Required           bool             `gorm:"not null;default:false"`
	DefaultValue       string           `gorm:"type:varchar(500)"`
	Options            string           `gorm:"type:jsonb;default:'[]'"`
	DependsOn          string           `gorm:"type:varchar(100);index"`
	ConditionalOptions string           `gorm:"type:jsonb;default:'{}'"`
	SortOrder          int              `gorm:"not null;default:0"`
	GroupID            *uuid.UUID       `gorm:"type:uuid;index"`
	IsActive           bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomFieldModel) TableName() string {
	return "custom_fields"
}

// ToDomain converts the persistence model to a domain CustomField entity.
func (m *CustomFieldModel) ToDomain() *layout.CustomField {
	return &layout.CustomField{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Module:             m.Module,
		Key:                m.Key,
		Label:              m.Label,
		Type:               m.Type,
		Required:           m.Required,
		DefaultValue:       m.DefaultValue,
		Options:            unmarshalStringSlice(m.Options),
		DependsOn:          m.DependsOn,
		ConditionalOptions: unmarshalOptionSets(m.ConditionalOptions),
		SortOrder:          m.SortOrder,
		GroupID:            m.GroupID,
		IsActive:           m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain CustomField entity.
func (m *CustomFieldModel) FromDomain(f *layout.CustomField) {
	m.FromDomainTenantAggregateRoot(f.TenantAggregateRoot)
	m.Module = f.Module
	m.Key = f.Key
	m.Label = f.Label
	m.Type = f.Type
	m.Required = f.Required
	m.DefaultValue = f.DefaultValue
	m.Options = marshalJSON(f.Options, "[]")
	m.DependsOn = f.DependsOn
	m.ConditionalOptions = marshalJSON(f.ConditionalOptions, "{}")
	m.SortOrder = f.SortOrder
	m.GroupID = f.GroupID
	m.IsActive = f.IsActive
}

// CustomFieldModelFromDomain creates a new persistence model from a domain CustomField entity.
func CustomFieldModelFromDomain(f *layout.CustomField) *CustomFieldModel {
	m := &CustomFieldModel{}
	m.FromDomain(f)
	return m
}

// CustomTabModel is the persistence model for the CustomTab domain entity.
type CustomTabModel struct {
	TenantAggregateModel
	Module    layout.Module `gorm:"type:varchar(20);not null;index"`
	Name      string        `gorm:"type:varchar(100);not null"`
	SortOrder int           `gorm:"not null;default:0"`
	IsActive  bool          `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomTabModel) TableName() string {
	return "custom_tabs"
}

// ToDomain converts the persistence model to a domain CustomTab entity.
func (m *CustomTabModel) ToDomain() *layout.CustomTab {
	return &layout.CustomTab{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Module:    m.Module,
		Name:      m.Name,
		SortOrder: m.SortOrder,
		IsActive:  m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain CustomTab entity.
func (m *CustomTabModel) FromDomain(t *layout.CustomTab) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Module = t.Module
	m.Name = t.Name
	m.SortOrder = t.SortOrder
	m.IsActive = t.IsActive
}

// CustomTabModelFromDomain creates a new persistence model from a domain CustomTab entity.
func CustomTabModelFromDomain(t *layout.CustomTab) *CustomTabModel {
	m := &CustomTabModel{}
	m.FromDomain(t)
	return m
}

// CustomFieldGroupModel is the persistence model for the CustomFieldGroup domain entity.
type CustomFieldGroupModel struct {
	TenantAggregateModel
	Module    layout.Module `gorm:"type:varchar(20);not null;index"`
	Name      string        `gorm:"type:varchar(100);not null"`
	TabID     *uuid.UUID    `gorm:"type:uuid;index"`
	SortOrder int           `gorm:"not null;default:0"`
	Columns   int           `gorm:"not null;default:2"`
}

// TableName returns the table name for GORM
func (CustomFieldGroupModel) TableName() string {
	return "custom_field_groups"
}

// ToDomain converts the persistence model to a domain CustomFieldGroup entity.
func (m *CustomFieldGroupModel) ToDomain() *layout.CustomFieldGroup {
	return &layout.CustomFieldGroup{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Module:    m.Module,
		Name:      m.Name,
		TabID:     m.TabID,
		SortOrder: m.SortOrder,
		Columns:   m.Columns,
	}
}

// FromDomain populates the persistence model from a domain CustomFieldGroup entity.
func (m *CustomFieldGroupModel) FromDomain(g *layout.CustomFieldGroup) {
	m.FromDomainTenantAggregateRoot(g.TenantAggregateRoot)
	m.Module = g.Module
	m.Name = g.Name
	m.TabID = g.TabID
	m.SortOrder = g.SortOrder
	m.Columns = g.Columns
}

// CustomFieldGroupModelFromDomain creates a new persistence model from a domain CustomFieldGroup entity.
func CustomFieldGroupModelFromDomain(g *layout.CustomFieldGroup) *CustomFieldGroupModel {
	m := &CustomFieldGroupModel{}
	m.FromDomain(g)
	return m
}

// PageLayoutModel is the persistence model for the PageLayout domain entity.
type PageLayoutModel struct {
	TenantAggregateModel
	Module     layout.Module     `gorm:"type:varchar(20);not null;index:idx_page_layouts_module"`
	LayoutType layout.LayoutType `gorm:"type:varchar(20);not null;index:idx_page_layouts_module"`
	Name       string            `gorm:"type:varchar(100);not null"`
	IsDefault  bool              `gorm:"not null;default:false"`
	Body       string            `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (PageLayoutModel) TableName() string {
	return "page_layouts"
}

// ToDomain converts the persistence model to a domain PageLayout entity.
func (m *PageLayoutModel) ToDomain() *layout.PageLayout {
	var body []layout.LayoutTab
	if m.Body != "" && m.Body != "[]" {
		if err := json.Unmarshal([]byte(m.Body), &body); err != nil {
			modelLogger.Warn("failed to parse page layout body", zap.String("raw_json", m.Body), zap.Error(err))
			body = nil
		}
	}
	return &layout.PageLayout{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Module:     m.Module,
		LayoutType: m.LayoutType,
		Name:       m.Name,
		IsDefault:  m.IsDefault,
		Body:       body,
	}
}

// FromDomain populates the persistence model from a domain PageLayout entity.
func (m *PageLayoutModel) FromDomain(p *layout.PageLayout) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Module = p.Module
	m.LayoutType = p.LayoutType
	m.Name = p.Name
	m.IsDefault = p.IsDefault
	m.Body = marshalJSON(p.Body, "[]")
}

// PageLayoutModelFromDomain creates a new persistence model from a domain PageLayout entity.
func PageLayoutModelFromDomain(p *layout.PageLayout) *PageLayoutModel {
	m := &PageLayoutModel{}
	m.FromDomain(p)
	return m
}
