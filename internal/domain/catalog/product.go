package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable product or service referenced by
// opportunities and quotes.
// It is the aggregate root for product-related operations
type Product struct {
	shared.TenantAggregateRoot
	Code        string // Unique per tenant
	Name        string
	SKU         string
	UnitPrice   decimal.Decimal
	Currency    string
	IsActive    bool
	Category    string
	Description string
}

// NewProduct creates a new product with required fields
func NewProduct(tenantID uuid.UUID, code, name string, unitPrice decimal.Decimal, currency string) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if err := validateProductCurrency(currency); err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		UnitPrice:           unitPrice,
		Currency:            strings.ToUpper(strings.TrimSpace(currency)),
		IsActive:            true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, sku, category, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if len(sku) > 100 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 100 characters")
	}

	p.Name = strings.TrimSpace(name)
	p.SKU = strings.TrimSpace(sku)
	p.Category = strings.TrimSpace(category)
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPrice sets the unit price and currency
func (p *Product) SetPrice(unitPrice decimal.Decimal, currency string) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if err := validateProductCurrency(currency); err != nil {
		return err
	}

	p.UnitPrice = unitPrice
	p.Currency = strings.ToUpper(strings.TrimSpace(currency))
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Activate makes the product available for selection
func (p *Product) Activate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}

	p.IsActive = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Deactivate retires the product
func (p *Product) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}

	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Validation functions

var productCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-]*$`)

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot exceed 50 characters")
	}
	if !productCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateProductCurrency(currency string) error {
	if len(strings.TrimSpace(currency)) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	return nil
}
