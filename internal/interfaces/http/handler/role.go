package handler

import (
	"context"

	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoleHandler handles role and permission management API endpoints
type RoleHandler struct {
	BaseHandler
	roleService *identityapp.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *identityapp.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

// CreateRoleRequest represents a request to create a new role
type CreateRoleRequest struct {
	Code        string   `json:"code" binding:"required,min=2,max=50"`
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions"`
	SortOrder   int      `json:"sort_order"`
}

// UpdateRoleRequest represents a request to update a role
type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// SetPermissionsRequest replaces the role's permission set
type SetPermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// SetDataScopeRequest configures row-level access for one resource
type SetDataScopeRequest struct {
	Resource    string   `json:"resource" binding:"required,min=1,max=100"`
	ScopeType   string   `json:"scope_type" binding:"required,oneof=all self team department custom"`
	ScopeValues []string `json:"scope_values"`
}

// Create creates a new role with the given permissions
func (h *RoleHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), identityapp.CreateRoleInput{
		TenantID:    tenantID,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, role)
}

// GetByID retrieves a role by ID
func (h *RoleHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), tenantID, roleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, role)
}

// List retrieves a paginated list of roles
func (h *RoleHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := parseFilter(c, "is_enabled")

	result, err := h.roleService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update updates a role's name and description
func (h *RoleHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), identityapp.UpdateRoleInput{
		TenantID:    tenantID,
		ID:          roleID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, role)
}

// SetPermissions replaces the role's permission set
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	var req SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.SetPermissions(c.Request.Context(), tenantID, roleID, req.Permissions)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, role)
}

// SetDataScope configures the role's data scope for a resource
func (h *RoleHandler) SetDataScope(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	var req SetDataScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.SetDataScope(c.Request.Context(), identityapp.SetDataScopeInput{
		TenantID:    tenantID,
		RoleID:      roleID,
		Resource:    req.Resource,
		ScopeType:   req.ScopeType,
		ScopeValues: req.ScopeValues,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, role)
}

// RemoveDataScope removes the role's data scope for a resource
func (h *RoleHandler) RemoveDataScope(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	resource := c.Param("resource")
	if resource == "" {
		h.BadRequest(c, "Resource is required")
		return
	}

	role, err := h.roleService.RemoveDataScope(c.Request.Context(), tenantID, roleID, resource)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, role)
}

// Enable enables a disabled role
func (h *RoleHandler) Enable(c *gin.Context) {
	h.transition(c, h.roleService.Enable)
}

// Disable disables a role; users holding it lose its permissions
func (h *RoleHandler) Disable(c *gin.Context) {
	h.transition(c, h.roleService.Disable)
}

// Delete removes a non-system role
func (h *RoleHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), tenantID, roleID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *RoleHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*identityapp.RoleDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid role ID format")
		return
	}

	role, err := fn(c.Request.Context(), tenantID, roleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, role)
}
