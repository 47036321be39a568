package catalog

import (
	"time"

	"github.com/crm/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO represents product data returned to clients
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"is_active"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toProductDTO(p *catalog.Product) *ProductDTO {
	return &ProductDTO{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Code:        p.Code,
		Name:        p.Name,
		SKU:         p.SKU,
		UnitPrice:   p.UnitPrice,
		Currency:    p.Currency,
		IsActive:    p.IsActive,
		Category:    p.Category,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
