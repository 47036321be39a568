package handler

import (
	"context"

	layoutapp "github.com/crm/backend/internal/application/layout"
	"github.com/crm/backend/internal/domain/layout"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PageLayoutHandler handles page layout and form rendering API endpoints
type PageLayoutHandler struct {
	BaseHandler
	layoutService *layoutapp.PageLayoutService
	renderService *layoutapp.RenderService
}

// NewPageLayoutHandler creates a new PageLayoutHandler
func NewPageLayoutHandler(layoutService *layoutapp.PageLayoutService, renderService *layoutapp.RenderService) *PageLayoutHandler {
	return &PageLayoutHandler{
		layoutService: layoutService,
		renderService: renderService,
	}
}

// CreatePageLayoutRequest represents a request to create a page layout
type CreatePageLayoutRequest struct {
	Module     string             `json:"module" binding:"required,oneof=account contact lead opportunity product"`
	LayoutType string             `json:"layout_type" binding:"required,oneof=detail edit create list"`
	Name       string             `json:"name" binding:"required,min=1,max=100"`
	Body       []layout.LayoutTab `json:"body"`
	IsDefault  bool               `json:"is_default"`
}

// SetLayoutBodyRequest replaces a layout's tab and group arrangement
type SetLayoutBodyRequest struct {
	Body []layout.LayoutTab `json:"body" binding:"required"`
}

// DescribeFormRequest resolves field states against draft values
type DescribeFormRequest struct {
	Values map[string]any `json:"values"`
}

// Create creates a new page layout
func (h *PageLayoutHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreatePageLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pl, err := h.layoutService.Create(c.Request.Context(), layoutapp.CreateLayoutInput{
		TenantID:   tenantID,
		Module:     req.Module,
		LayoutType: req.LayoutType,
		Name:       req.Name,
		Body:       req.Body,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, pl)
}

// GetByID retrieves a page layout by ID
func (h *PageLayoutHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	layoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid layout ID format")
		return
	}

	pl, err := h.layoutService.GetByID(c.Request.Context(), tenantID, layoutID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pl)
}

// GetDefault retrieves the default layout for a module and layout type
func (h *PageLayoutHandler) GetDefault(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	module := c.Query("module")
	layoutType := c.Query("layout_type")
	if module == "" || layoutType == "" {
		h.BadRequest(c, "module and layout_type are required")
		return
	}

	pl, err := h.layoutService.GetDefault(c.Request.Context(), tenantID, module, layoutType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pl)
}

// ListByModule retrieves the layouts defined on a module
func (h *PageLayoutHandler) ListByModule(c *gin.Context) {
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

	layouts, err := h.layoutService.ListByModule(c.Request.Context(), tenantID, module, parseFilter(c, "layout_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, layouts)
}

// Rename renames a page layout
func (h *PageLayoutHandler) Rename(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	layoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid layout ID format")
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pl, err := h.layoutService.Rename(c.Request.Context(), tenantID, layoutID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pl)
}

// SetBody replaces a layout's tab and group arrangement
func (h *PageLayoutHandler) SetBody(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	layoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid layout ID format")
		return
	}

	var req SetLayoutBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pl, err := h.layoutService.SetBody(c.Request.Context(), tenantID, layoutID, req.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pl)
}

// SetDefault marks the layout as the default for its module and type
func (h *PageLayoutHandler) SetDefault(c *gin.Context) {
	h.transition(c, h.layoutService.SetDefault)
}

// Delete removes a non-default page layout
func (h *PageLayoutHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	layoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid layout ID format")
		return
	}

	if err := h.layoutService.Delete(c.Request.Context(), tenantID, layoutID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// DescribeForm assembles the full form description for a module screen,
// including per-field states resolved against the posted draft values
func (h *PageLayoutHandler) DescribeForm(c *gin.Context) {
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
	layoutType := c.DefaultQuery("layout_type", "detail")

	var req DescribeFormRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	form, err := h.renderService.DescribeForm(c.Request.Context(), tenantID, module, layoutType, req.Values)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, form)
}

// ResolveStates resolves per-field visibility and option states against
// the posted draft values
func (h *PageLayoutHandler) ResolveStates(c *gin.Context) {
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

	var req DescribeFormRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	states, err := h.renderService.Resolve(c.Request.Context(), tenantID, module, req.Values)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, states)
}

func (h *PageLayoutHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*layoutapp.PageLayoutDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	layoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid layout ID format")
		return
	}

	pl, err := fn(c.Request.Context(), tenantID, layoutID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pl)
}
