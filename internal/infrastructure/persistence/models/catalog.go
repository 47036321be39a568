package models

import (
	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	TenantAggregateModel
	Code        string          `gorm:"type:varchar(50);not null;index"`
	Name        string          `gorm:"type:varchar(200);not null;index"`
	SKU         string          `gorm:"type:varchar(100)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency    string          `gorm:"type:varchar(10);not null;default:'USD'"`
	IsActive    bool            `gorm:"not null;default:true"`
	Category    string          `gorm:"type:varchar(100);index"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
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
		Code:        m.Code,
		Name:        m.Name,
		SKU:         m.SKU,
		UnitPrice:   m.UnitPrice,
		Currency:    m.Currency,
		IsActive:    m.IsActive,
		Category:    m.Category,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.SKU = p.SKU
	m.UnitPrice = p.UnitPrice
	m.Currency = p.Currency
	m.IsActive = p.IsActive
	m.Category = p.Category
	m.Description = p.Description
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
