package handler

import (
	"context"

	layoutapp "github.com/crm/backend/internal/application/layout"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomFieldHandler handles custom field definition API endpoints
type CustomFieldHandler struct {
	BaseHandler
	fieldService *layoutapp.CustomFieldService
}

// NewCustomFieldHandler creates a new CustomFieldHandler
func NewCustomFieldHandler(fieldService *layoutapp.CustomFieldService) *CustomFieldHandler {
	return &CustomFieldHandler{
		fieldService: fieldService,
	}
}

// CreateCustomFieldRequest represents a request to define a custom field
type CreateCustomFieldRequest struct {
	Module             string              `json:"module" binding:"required,oneof=account contact lead opportunity product"`
	Key                string              `json:"key" binding:"required,min=1,max=50"`
	Label              string              `json:"label" binding:"required,min=1,max=100"`
	Type               string              `json:"type" binding:"required,oneof=text textarea number decimal date datetime boolean select multiselect url email phone"`
	Required           bool                `json:"required"`
	DefaultValue       string              `json:"default_value" binding:"max=500"`
	Options            []string            `json:"options"`
	DependsOn          string              `json:"depends_on" binding:"max=50"`
	ConditionalOptions map[string][]string `json:"conditional_options"`
	GroupID            *string             `json:"group_id" binding:"omitempty,uuid"`
	SortOrder          int                 `json:"sort_order"`
}

// UpdateCustomFieldRequest represents a request to update a custom field
type UpdateCustomFieldRequest struct {
	Label        string  `json:"label" binding:"required,min=1,max=100"`
	Required     bool    `json:"required"`
	DefaultValue string  `json:"default_value" binding:"max=500"`
	SortOrder    *int    `json:"sort_order"`
	GroupID      *string `json:"group_id" binding:"omitempty,uuid"`
	ClearGroup   bool    `json:"clear_group"`
}

// SetFieldOptionsRequest replaces a select field's option list
type SetFieldOptionsRequest struct {
	Options []string `json:"options" binding:"required,min=1"`
}

// SetFieldDependencyRequest makes the field's options depend on a parent field
type SetFieldDependencyRequest struct {
	ParentKey          string              `json:"parent_key" binding:"required,min=1,max=50"`
	ConditionalOptions map[string][]string `json:"conditional_options" binding:"required"`
}

// Create defines a new custom field on a module
func (h *CustomFieldHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateCustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	field, err := h.fieldService.Create(c.Request.Context(), layoutapp.CreateFieldInput{
		TenantID:           tenantID,
		Module:             req.Module,
		Key:                req.Key,
		Label:              req.Label,
		Type:               req.Type,
		Required:           req.Required,
		DefaultValue:       req.DefaultValue,
		Options:            req.Options,
		DependsOn:          req.DependsOn,
		ConditionalOptions: req.ConditionalOptions,
		GroupID:            parseOptionalUUID(req.GroupID),
		SortOrder:          req.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, field)
}

// GetByID retrieves a custom field definition by ID
func (h *CustomFieldHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid field ID format")
		return
	}

	field, err := h.fieldService.GetByID(c.Request.Context(), tenantID, fieldID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, field)
}

// ListByModule retrieves all custom fields defined on a module
func (h *CustomFieldHandler) ListByModule(c *gin.Context) {
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

	fields, err := h.fieldService.ListByModule(c.Request.Context(), tenantID, module)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fields)
}

// Update updates a field's label, required flag, default and placement
func (h *CustomFieldHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid field ID format")
		return
	}

	var req UpdateCustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	field, err := h.fieldService.Update(c.Request.Context(), layoutapp.UpdateFieldInput{
		TenantID:     tenantID,
		FieldID:      fieldID,
		Label:        req.Label,
		Required:     req.Required,
		DefaultValue: req.DefaultValue,
		SortOrder:    req.SortOrder,
		GroupID:      parseOptionalUUID(req.GroupID),
		ClearGroup:   req.ClearGroup,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, field)
}

// SetOptions replaces a select field's option list
func (h *CustomFieldHandler) SetOptions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid field ID format")
		return
	}

	var req SetFieldOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	field, err := h.fieldService.SetOptions(c.Request.Context(), tenantID, fieldID, req.Options)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, field)
}

// SetDependency makes the field's options depend on a parent field's value
func (h *CustomFieldHandler) SetDependency(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid field ID format")
		return
	}

	var req SetFieldDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	field, err := h.fieldService.SetDependency(c.Request.Context(), tenantID, fieldID, req.ParentKey, req.ConditionalOptions)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, field)
}

// Activate re-enables a deactivated field
func (h *CustomFieldHandler) Activate(c *gin.Context) {
	h.transition(c, h.fieldService.Activate)
}

// Deactivate hides the field from forms without losing stored values
func (h *CustomFieldHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.fieldService.Deactivate)
}

// Delete removes a field definition no other field depends on
func (h *CustomFieldHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid field ID format")
		return
	}

	if err := h.fieldService.Delete(c.Request.Context(), tenantID, fieldID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *CustomFieldHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*layoutapp.CustomFieldDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid field ID format")
		return
	}

	field, err := fn(c.Request.Context(), tenantID, fieldID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, field)
}
