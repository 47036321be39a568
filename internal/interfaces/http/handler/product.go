package handler

import (
	"context"

	catalogapp "github.com/crm/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product catalog API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code        string  `json:"code" binding:"required,min=1,max=50"`
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	SKU         string  `json:"sku" binding:"max=100"`
	UnitPrice   float64 `json:"unit_price" binding:"min=0"`
	Currency    string  `json:"currency" binding:"omitempty,len=3"`
	Category    string  `json:"category" binding:"max=100"`
	Description string  `json:"description" binding:"max=2000"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=200"`
	SKU         string   `json:"sku" binding:"max=100"`
	Category    string   `json:"category" binding:"max=100"`
	Description string   `json:"description" binding:"max=2000"`
	UnitPrice   *float64 `json:"unit_price" binding:"omitempty,min=0"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
}

// Create creates a new product
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.CreateProductInput{
		TenantID:    tenantID,
		Code:        req.Code,
		Name:        req.Name,
		SKU:         req.SKU,
		UnitPrice:   decimal.NewFromFloat(req.UnitPrice),
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	product, err := h.productService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID retrieves a product by ID
func (h *ProductHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetByCode retrieves a product by its unique code
func (h *ProductHandler) GetByCode(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Product code is required")
		return
	}

	product, err := h.productService.GetByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List retrieves a paginated list of products
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := parseFilter(c, "status", "category")

	result, err := h.productService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListActive retrieves all active products, for pickers
func (h *ProductHandler) ListActive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	products, err := h.productService.ListActive(c.Request.Context(), tenantID, parseFilter(c, "category"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// Update updates a product's editable fields
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.UpdateProductInput{
		TenantID:    tenantID,
		ID:          productID,
		Name:        req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
		Description: req.Description,
		Currency:    req.Currency,
	}
	if req.UnitPrice != nil {
		input.UnitPrice = toDecimalPtr(*req.UnitPrice)
	}

	product, err := h.productService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Activate re-enables a deactivated product
func (h *ProductHandler) Activate(c *gin.Context) {
	h.transition(c, h.productService.Activate)
}

// Deactivate removes the product from active price lists
func (h *ProductHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.productService.Deactivate)
}

// Delete removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), tenantID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ProductHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*catalogapp.ProductDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := fn(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}
