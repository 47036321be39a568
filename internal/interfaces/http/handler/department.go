package handler

import (
	"context"

	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DepartmentHandler handles department hierarchy API endpoints
type DepartmentHandler struct {
	BaseHandler
	departmentService *identityapp.DepartmentService
}

// NewDepartmentHandler creates a new DepartmentHandler
func NewDepartmentHandler(departmentService *identityapp.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{
		departmentService: departmentService,
	}
}

// CreateDepartmentRequest represents a request to create a new department
type CreateDepartmentRequest struct {
	Code        string  `json:"code" binding:"required,min=2,max=50"`
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description" binding:"max=500"`
	ParentID    *string `json:"parent_id" binding:"omitempty,uuid"`
	ManagerID   *string `json:"manager_id" binding:"omitempty,uuid"`
	SortOrder   int     `json:"sort_order"`
}

// UpdateDepartmentRequest represents a request to update a department
type UpdateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// MoveDepartmentRequest re-parents a department; a null parent moves it to the root
type MoveDepartmentRequest struct {
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
}

// SetDepartmentManagerRequest assigns or clears the department manager
type SetDepartmentManagerRequest struct {
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
}

// Create creates a new department
func (h *DepartmentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := identityapp.CreateDepartmentInput{
		TenantID:    tenantID,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    parseOptionalUUID(req.ParentID),
		ManagerID:   parseOptionalUUID(req.ManagerID),
		SortOrder:   req.SortOrder,
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	dept, err := h.departmentService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dept)
}

// GetByID retrieves a department by ID
func (h *DepartmentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid department ID format")
		return
	}

	dept, err := h.departmentService.GetByID(c.Request.Context(), tenantID, deptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dept)
}

// List retrieves a paginated list of departments
func (h *DepartmentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := parseFilter(c, "status", "parent_id")

	result, err := h.departmentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetTree retrieves the full department hierarchy as nested nodes
func (h *DepartmentHandler) GetTree(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tree, err := h.departmentService.GetTree(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tree)
}

// Update updates a department's name and description
func (h *DepartmentHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid department ID format")
		return
	}

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	dept, err := h.departmentService.Update(c.Request.Context(), tenantID, deptID, req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dept)
}

// Move re-parents a department within the hierarchy
func (h *DepartmentHandler) Move(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid department ID format")
		return
	}

	var req MoveDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	dept, err := h.departmentService.Move(c.Request.Context(), tenantID, deptID, parseOptionalUUID(req.ParentID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dept)
}

// SetManager assigns or clears the department manager
func (h *DepartmentHandler) SetManager(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid department ID format")
		return
	}

	var req SetDepartmentManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	dept, err := h.departmentService.SetManager(c.Request.Context(), tenantID, deptID, parseOptionalUUID(req.ManagerID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dept)
}

// Activate re-enables a deactivated department
func (h *DepartmentHandler) Activate(c *gin.Context) {
	h.transition(c, h.departmentService.Activate)
}

// Deactivate deactivates a department
func (h *DepartmentHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.departmentService.Deactivate)
}

// Delete removes a department without children or members
func (h *DepartmentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid department ID format")
		return
	}

	if err := h.departmentService.Delete(c.Request.Context(), tenantID, deptID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *DepartmentHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*identityapp.DepartmentDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid department ID format")
		return
	}

	dept, err := fn(c.Request.Context(), tenantID, deptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dept)
}
