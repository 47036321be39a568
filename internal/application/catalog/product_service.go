package catalog

import (
	"context"

	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product catalog management
type ProductService struct {
	productRepo catalog.ProductRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo catalog.ProductRepository, publisher shared.EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateProductInput contains input for creating a product
type CreateProductInput struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	SKU         string
	UnitPrice   decimal.Decimal
	Currency    string
	Category    string
	Description string
	CreatedBy   *uuid.UUID
}

// UpdateProductInput contains input for updating a product
type UpdateProductInput struct {
	TenantID    uuid.UUID
	ID          uuid.UUID
	Name        string
	SKU         string
	Category    string
	Description string
	UnitPrice   *decimal.Decimal
	Currency    string
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	s.logger.Info("Creating product",
		zap.String("code", input.Code),
		zap.String("tenant_id", input.TenantID.String()))

	exists, err := s.productRepo.ExistsByCode(ctx, input.TenantID, input.Code)
	if err != nil {
		s.logger.Error("Failed to check product code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check product code availability")
	}
	if exists {
		return nil, shared.NewDomainError("PRODUCT_CODE_EXISTS", "A product with this code already exists")
	}

	product, err := catalog.NewProduct(input.TenantID, input.Code, input.Name, input.UnitPrice, input.Currency)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		product.SetCreatedBy(*input.CreatedBy)
	}

	if input.SKU != "" || input.Category != "" || input.Description != "" {
		if err := product.Update(input.Name, input.SKU, input.Category, input.Description); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create product")
	}

	s.publishDomainEvents(ctx, product)

	s.logger.Info("Product created", zap.String("product_id", product.ID.String()))

	return toProductDTO(product), nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toProductDTO(product), nil
}

// GetByCode retrieves a product by its code
func (s *ProductService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ProductDTO, error) {
	product, err := s.productRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find product")
	}
	return toProductDTO(product), nil
}

// List retrieves a paginated list of products
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ProductDTO], error) {
	products, err := s.productRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list products")
	}

	total, err := s.productRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count products")
	}

	dtos := make([]ProductDTO, len(products))
	for i := range products {
		dtos[i] = *toProductDTO(&products[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListActive retrieves active products for selection lists
func (s *ProductService) ListActive(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ProductDTO, error) {
	products, err := s.productRepo.FindActive(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list active products", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list products")
	}

	dtos := make([]ProductDTO, len(products))
	for i := range products {
		dtos[i] = *toProductDTO(&products[i])
	}
	return dtos, nil
}

// Update updates a product's details and optionally its price
func (s *ProductService) Update(ctx context.Context, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := product.Update(input.Name, input.SKU, input.Category, input.Description); err != nil {
		return nil, err
	}
	if input.UnitPrice != nil {
		currency := input.Currency
		if currency == "" {
			currency = product.Currency
		}
		if err := product.SetPrice(*input.UnitPrice, currency); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to update product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update product")
	}

	s.publishDomainEvents(ctx, product)

	return toProductDTO(product), nil
}

// Activate makes a product selectable again
func (s *ProductService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*ProductDTO, error) {
	return s.transition(ctx, tenantID, id, func(p *catalog.Product) error { return p.Activate() })
}

// Deactivate retires a product from selection lists
func (s *ProductService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*ProductDTO, error) {
	return s.transition(ctx, tenantID, id, func(p *catalog.Product) error { return p.Deactivate() })
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.findProduct(ctx, tenantID, id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete product", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete product")
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))

	return nil
}

func (s *ProductService) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*catalog.Product) error) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save product")
	}

	s.publishDomainEvents(ctx, product)

	return toProductDTO(product), nil
}

func (s *ProductService) findProduct(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		s.logger.Error("Failed to find product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find product")
	}
	return product, nil
}

func (s *ProductService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	if s.publisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	product.ClearDomainEvents()
}
