package handler

import (
	"context"
	"time"

	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantHandler handles tenant lifecycle API endpoints.
// These routes are platform-level and not scoped to the caller's tenant.
type TenantHandler struct {
	BaseHandler
	tenantService *identityapp.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *identityapp.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// CreateTenantRequest represents a request to register a new tenant
type CreateTenantRequest struct {
	Code         string `json:"code" binding:"required,min=2,max=50"`
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Plan         string `json:"plan" binding:"omitempty,oneof=trial basic professional enterprise"`
	TrialDays    int    `json:"trial_days" binding:"omitempty,min=1,max=365"`
	ContactName  string `json:"contact_name" binding:"max=100"`
	ContactPhone string `json:"contact_phone" binding:"max=50"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email,max=200"`
	Domain       string `json:"domain" binding:"max=200"`
}

// UpdateTenantRequest represents a request to rename a tenant
type UpdateTenantRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// SetTenantPlanRequest changes a tenant's subscription plan
type SetTenantPlanRequest struct {
	Plan      string     `json:"plan" binding:"required,oneof=trial basic professional enterprise"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Create registers a new tenant and starts schema provisioning
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), identityapp.CreateTenantInput{
		Code:         req.Code,
		Name:         req.Name,
		Plan:         req.Plan,
		TrialDays:    req.TrialDays,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Domain:       req.Domain,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tenant)
}

// GetByID retrieves a tenant by ID
func (h *TenantHandler) GetByID(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// GetByCode retrieves a tenant by its unique code
func (h *TenantHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Tenant code is required")
		return
	}

	tenant, err := h.tenantService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// List retrieves a paginated list of tenants
func (h *TenantHandler) List(c *gin.Context) {
	filter := parseFilter(c, "status", "plan")

	result, err := h.tenantService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update renames a tenant
func (h *TenantHandler) Update(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), tenantID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// SetPlan changes the tenant's subscription plan and expiry
func (h *TenantHandler) SetPlan(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req SetTenantPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.SetPlan(c.Request.Context(), tenantID, req.Plan, req.ExpiresAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// Provision retries schema provisioning for a tenant stuck in pending
func (h *TenantHandler) Provision(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	tenant, err := h.tenantService.Provision(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// Activate activates a provisioned or suspended tenant
func (h *TenantHandler) Activate(c *gin.Context) {
	h.transition(c, h.tenantService.Activate)
}

// Deactivate deactivates a tenant; its users can no longer log in
func (h *TenantHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.tenantService.Deactivate)
}

// Suspend suspends a tenant, typically for non-payment
func (h *TenantHandler) Suspend(c *gin.Context) {
	h.transition(c, h.tenantService.Suspend)
}

func (h *TenantHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*identityapp.TenantDTO, error)) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	tenant, err := fn(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}
