package handler

import (
	layoutapp "github.com/crm/backend/internal/application/layout"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContainerHandler handles custom tab and field group API endpoints
type ContainerHandler struct {
	BaseHandler
	containerService *layoutapp.ContainerService
}

// NewContainerHandler creates a new ContainerHandler
func NewContainerHandler(containerService *layoutapp.ContainerService) *ContainerHandler {
	return &ContainerHandler{
		containerService: containerService,
	}
}

// CreateTabRequest represents a request to create a custom tab
type CreateTabRequest struct {
	Module    string `json:"module" binding:"required,oneof=account contact lead opportunity product"`
	Name      string `json:"name" binding:"required,min=1,max=100"`
	SortOrder int    `json:"sort_order"`
}

// RenameRequest renames a tab or group
type RenameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// SetTabActiveRequest shows or hides a tab
type SetTabActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ReorderRequest reorders tabs or groups on a module
type ReorderRequest struct {
	Module string   `json:"module" binding:"required,oneof=account contact lead opportunity product"`
	IDs    []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

// CreateGroupRequest represents a request to create a field group
type CreateGroupRequest struct {
	Module    string  `json:"module" binding:"required,oneof=account contact lead opportunity product"`
	Name      string  `json:"name" binding:"required,min=1,max=100"`
	TabID     *string `json:"tab_id" binding:"omitempty,uuid"`
	SortOrder int     `json:"sort_order"`
	Columns   int     `json:"columns" binding:"omitempty,min=1,max=4"`
}

// SetGroupTabRequest moves a group to a tab; null detaches it
type SetGroupTabRequest struct {
	TabID *string `json:"tab_id" binding:"omitempty,uuid"`
}

// SetGroupColumnsRequest changes a group's column count
type SetGroupColumnsRequest struct {
	Columns int `json:"columns" binding:"required,min=1,max=4"`
}

// CreateTab creates a new custom tab on a module
func (h *ContainerHandler) CreateTab(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tab, err := h.containerService.CreateTab(c.Request.Context(), tenantID, req.Module, req.Name, req.SortOrder)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tab)
}

// ListTabs retrieves the custom tabs on a module
func (h *ContainerHandler) ListTabs(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	module := c.Query("module")
	if module == "" {
		h.BadRequest(c, "module is required")
		return
	}

	tabs, err := h.containerService.ListTabs(c.Request.Context(), tenantID, module)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tabs)
}

// RenameTab renames a custom tab
func (h *ContainerHandler) RenameTab(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tab ID format")
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tab, err := h.containerService.RenameTab(c.Request.Context(), tenantID, tabID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tab)
}

// SetTabActive shows or hides a custom tab
func (h *ContainerHandler) SetTabActive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tab ID format")
		return
	}

	var req SetTabActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tab, err := h.containerService.SetTabActive(c.Request.Context(), tenantID, tabID, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tab)
}

// ReorderTabs reorders a module's custom tabs
func (h *ContainerHandler) ReorderTabs(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ids := parseUUIDSlice(req.IDs)
	if len(ids) != len(req.IDs) {
		h.BadRequest(c, "Invalid tab ID format")
		return
	}

	if err := h.containerService.ReorderTabs(c.Request.Context(), tenantID, req.Module, ids); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Tabs reordered"})
}

// DeleteTab removes an empty custom tab
func (h *ContainerHandler) DeleteTab(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tab ID format")
		return
	}

	if err := h.containerService.DeleteTab(c.Request.Context(), tenantID, tabID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateGroup creates a new field group on a module
func (h *ContainerHandler) CreateGroup(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.containerService.CreateGroup(c.Request.Context(), layoutapp.CreateGroupInput{
		TenantID:  tenantID,
		Module:    req.Module,
		Name:      req.Name,
		TabID:     parseOptionalUUID(req.TabID),
		SortOrder: req.SortOrder,
		Columns:   req.Columns,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, group)
}

// ListGroups retrieves the field groups on a module
func (h *ContainerHandler) ListGroups(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	module := c.Query("module")
	if module == "" {
		h.BadRequest(c, "module is required")
		return
	}

	groups, err := h.containerService.ListGroups(c.Request.Context(), tenantID, module)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, groups)
}

// RenameGroup renames a field group
func (h *ContainerHandler) RenameGroup(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.containerService.RenameGroup(c.Request.Context(), tenantID, groupID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, group)
}

// SetGroupTab moves a field group onto a tab
func (h *ContainerHandler) SetGroupTab(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	var req SetGroupTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.containerService.SetGroupTab(c.Request.Context(), tenantID, groupID, parseOptionalUUID(req.TabID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, group)
}

// SetGroupColumns changes a group's column count
func (h *ContainerHandler) SetGroupColumns(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	var req SetGroupColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.containerService.SetGroupColumns(c.Request.Context(), tenantID, groupID, req.Columns)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, group)
}

// ReorderGroups reorders a module's field groups
func (h *ContainerHandler) ReorderGroups(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ids := parseUUIDSlice(req.IDs)
	if len(ids) != len(req.IDs) {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	if err := h.containerService.ReorderGroups(c.Request.Context(), tenantID, req.Module, ids); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Groups reordered"})
}

// DeleteGroup removes an empty field group
func (h *ContainerHandler) DeleteGroup(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	if err := h.containerService.DeleteGroup(c.Request.Context(), tenantID, groupID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
