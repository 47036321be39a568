package handler

import (
	"context"

	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadHandler handles lead capture and qualification API endpoints
type LeadHandler struct {
	BaseHandler
	leadService *crmapp.LeadService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *crmapp.LeadService) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
	}
}

// CreateLeadRequest represents a request to create a new lead
type CreateLeadRequest struct {
	FirstName    string         `json:"first_name" binding:"max=100"`
	LastName     string         `json:"last_name" binding:"required,min=1,max=100"`
	Title        string         `json:"title" binding:"max=100"`
	Company      string         `json:"company" binding:"max=200"`
	Email        string         `json:"email" binding:"omitempty,email,max=200"`
	Phone        string         `json:"phone" binding:"max=50"`
	Website      string         `json:"website" binding:"max=200"`
	Source       string         `json:"source" binding:"max=50"`
	Rating       string         `json:"rating" binding:"omitempty,oneof=hot warm cold"`
	OwnerID      *string        `json:"owner_id" binding:"omitempty,uuid"`
	TeamID       *string        `json:"team_id" binding:"omitempty,uuid"`
	Description  string         `json:"description" binding:"max=2000"`
	CustomValues map[string]any `json:"custom_values"`
}

// UpdateLeadRequest represents a request to update a lead
type UpdateLeadRequest struct {
	FirstName    string         `json:"first_name" binding:"max=100"`
	LastName     string         `json:"last_name" binding:"required,min=1,max=100"`
	Title        string         `json:"title" binding:"max=100"`
	Company      string         `json:"company" binding:"max=200"`
	Email        string         `json:"email" binding:"omitempty,email,max=200"`
	Phone        string         `json:"phone" binding:"max=50"`
	Website      string         `json:"website" binding:"max=200"`
	Description  string         `json:"description" binding:"max=2000"`
	Source       *string        `json:"source" binding:"omitempty,max=50"`
	Rating       *string        `json:"rating" binding:"omitempty,oneof=hot warm cold"`
	CustomValues map[string]any `json:"custom_values"`
}

// ChangeLeadStageRequest moves the lead to a stage in a lead pipeline
type ChangeLeadStageRequest struct {
	PipelineID string `json:"pipeline_id" binding:"required,uuid"`
	StageID    string `json:"stage_id" binding:"required,uuid"`
}

// DisqualifyLeadRequest disqualifies a lead with a reason
type DisqualifyLeadRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AssignLeadOwnerRequest assigns the owning user and team
type AssignLeadOwnerRequest struct {
	OwnerID *string `json:"owner_id" binding:"omitempty,uuid"`
	TeamID  *string `json:"team_id" binding:"omitempty,uuid"`
}

// ConvertLeadRequest converts a qualified lead into CRM records
type ConvertLeadRequest struct {
	CreateAccount     bool     `json:"create_account"`
	CreateOpportunity bool     `json:"create_opportunity"`
	OpportunityName   string   `json:"opportunity_name" binding:"max=200"`
	OpportunityAmount *float64 `json:"opportunity_amount" binding:"omitempty,min=0"`
	Currency          string   `json:"currency" binding:"omitempty,len=3"`
	PipelineID        *string  `json:"pipeline_id" binding:"omitempty,uuid"`
}

// Create creates a new lead
func (h *LeadHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := crmapp.CreateLeadInput{
		TenantID:     tenantID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Title:        req.Title,
		Company:      req.Company,
		Email:        req.Email,
		Phone:        req.Phone,
		Website:      req.Website,
		Source:       req.Source,
		Rating:       req.Rating,
		OwnerID:      parseOptionalUUID(req.OwnerID),
		TeamID:       parseOptionalUUID(req.TeamID),
		Description:  req.Description,
		CustomValues: req.CustomValues,
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	lead, err := h.leadService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, lead)
}

// GetByID retrieves a lead by ID
func (h *LeadHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	lead, err := h.leadService.GetByID(c.Request.Context(), tenantID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lead)
}

// List retrieves a paginated list of leads
func (h *LeadHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := parseFilter(c, "status", "source", "rating", "owner_id", "team_id")

	result, err := h.leadService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update updates a lead's profile fields
func (h *LeadHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.Update(c.Request.Context(), crmapp.UpdateLeadInput{
		TenantID:     tenantID,
		ID:           leadID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Title:        req.Title,
		Company:      req.Company,
		Email:        req.Email,
		Phone:        req.Phone,
		Website:      req.Website,
		Description:  req.Description,
		Source:       req.Source,
		Rating:       req.Rating,
		CustomValues: req.CustomValues,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lead)
}

// AssignOwner assigns the lead's owning user and team
func (h *LeadHandler) AssignOwner(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req AssignLeadOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.AssignOwner(c.Request.Context(), tenantID, leadID,
		parseOptionalUUID(req.OwnerID), parseOptionalUUID(req.TeamID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lead)
}

// ChangeStage moves the lead to a stage in a lead pipeline
func (h *LeadHandler) ChangeStage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req ChangeLeadStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pipelineID, err := uuid.Parse(req.PipelineID)
	if err != nil {
		h.BadRequest(c, "Invalid pipeline ID format")
		return
	}
	stageID, err := uuid.Parse(req.StageID)
	if err != nil {
		h.BadRequest(c, "Invalid stage ID format")
		return
	}

	lead, err := h.leadService.ChangeStage(c.Request.Context(), tenantID, leadID, pipelineID, stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lead)
}

// StartWorking marks a new lead as being worked
func (h *LeadHandler) StartWorking(c *gin.Context) {
	h.transition(c, h.leadService.StartWorking)
}

// Qualify marks a lead qualified and ready for conversion
func (h *LeadHandler) Qualify(c *gin.Context) {
	h.transition(c, h.leadService.Qualify)
}

// Reopen returns a disqualified lead to the working state
func (h *LeadHandler) Reopen(c *gin.Context) {
	h.transition(c, h.leadService.Reopen)
}

// Disqualify disqualifies a lead with a reason
func (h *LeadHandler) Disqualify(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req DisqualifyLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.Disqualify(c.Request.Context(), tenantID, leadID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lead)
}

// Convert converts a qualified lead into a contact and optionally
// an account and opportunity
func (h *LeadHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := crmapp.ConvertLeadInput{
		TenantID:          tenantID,
		LeadID:            leadID,
		CreateAccount:     req.CreateAccount,
		CreateOpportunity: req.CreateOpportunity,
		OpportunityName:   req.OpportunityName,
		Currency:          req.Currency,
		PipelineID:        parseOptionalUUID(req.PipelineID),
	}
	if req.OpportunityAmount != nil {
		input.OpportunityAmount = toDecimalPtr(*req.OpportunityAmount)
	}
	if userID, err := getUserID(c); err == nil {
		input.ActorID = &userID
	}

	result, err := h.leadService.Convert(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete removes an unconverted lead
func (h *LeadHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	if err := h.leadService.Delete(c.Request.Context(), tenantID, leadID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *LeadHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*crmapp.LeadDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	lead, err := fn(c.Request.Context(), tenantID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lead)
}
