package handler

import (
	"context"
	"time"

	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpportunityHandler handles sales opportunity API endpoints
type OpportunityHandler struct {
	BaseHandler
	opportunityService *crmapp.OpportunityService
}

// NewOpportunityHandler creates a new OpportunityHandler
func NewOpportunityHandler(opportunityService *crmapp.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{
		opportunityService: opportunityService,
	}
}

// CreateOpportunityRequest represents a request to create a new opportunity
type CreateOpportunityRequest struct {
	Name              string         `json:"name" binding:"required,min=1,max=200"`
	AccountID         string         `json:"account_id" binding:"required,uuid"`
	PrimaryContactID  *string        `json:"primary_contact_id" binding:"omitempty,uuid"`
	Amount            *float64       `json:"amount" binding:"omitempty,min=0"`
	Currency          string         `json:"currency" binding:"omitempty,len=3"`
	ExpectedCloseDate *time.Time     `json:"expected_close_date"`
	PipelineID        *string        `json:"pipeline_id" binding:"omitempty,uuid"`
	StageID           *string        `json:"stage_id" binding:"omitempty,uuid"`
	Source            string         `json:"source" binding:"max=50"`
	OwnerID           *string        `json:"owner_id" binding:"omitempty,uuid"`
	TeamID            *string        `json:"team_id" binding:"omitempty,uuid"`
	Description       string         `json:"description" binding:"max=2000"`
	NextStep          string         `json:"next_step" binding:"max=500"`
	CustomValues      map[string]any `json:"custom_values"`
}

// UpdateOpportunityRequest represents a request to update an opportunity
type UpdateOpportunityRequest struct {
	Name              string         `json:"name" binding:"required,min=1,max=200"`
	Description       string         `json:"description" binding:"max=2000"`
	NextStep          string         `json:"next_step" binding:"max=500"`
	Amount            *float64       `json:"amount" binding:"omitempty,min=0"`
	Currency          string         `json:"currency" binding:"omitempty,len=3"`
	ExpectedCloseDate *time.Time     `json:"expected_close_date"`
	PrimaryContactID  *string        `json:"primary_contact_id" binding:"omitempty,uuid"`
	Source            *string        `json:"source" binding:"omitempty,max=50"`
	CustomValues      map[string]any `json:"custom_values"`
}

// ChangeOpportunityStageRequest moves the opportunity to a pipeline stage
type ChangeOpportunityStageRequest struct {
	PipelineID string `json:"pipeline_id" binding:"required,uuid"`
	StageID    string `json:"stage_id" binding:"required,uuid"`
}

// PinProbabilityRequest overrides the stage-derived win probability
type PinProbabilityRequest struct {
	Probability int `json:"probability" binding:"min=0,max=100"`
}

// CloseWonRequest closes the opportunity as won
type CloseWonRequest struct {
	FinalAmount *float64 `json:"final_amount" binding:"omitempty,min=0"`
}

// CloseLostRequest closes the opportunity as lost with a reason
type CloseLostRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ReopenOpportunityRequest reopens a closed opportunity into a stage
type ReopenOpportunityRequest struct {
	StageID string `json:"stage_id" binding:"required,uuid"`
}

// AssignOpportunityOwnerRequest assigns the owning user and team
type AssignOpportunityOwnerRequest struct {
	OwnerID *string `json:"owner_id" binding:"omitempty,uuid"`
	TeamID  *string `json:"team_id" binding:"omitempty,uuid"`
}

// Create creates a new opportunity on an account
func (h *OpportunityHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	input := crmapp.CreateOpportunityInput{
		TenantID:          tenantID,
		Name:              req.Name,
		AccountID:         accountID,
		PrimaryContactID:  parseOptionalUUID(req.PrimaryContactID),
		Currency:          req.Currency,
		ExpectedCloseDate: req.ExpectedCloseDate,
		PipelineID:        parseOptionalUUID(req.PipelineID),
		StageID:           parseOptionalUUID(req.StageID),
		Source:            req.Source,
		OwnerID:           parseOptionalUUID(req.OwnerID),
		TeamID:            parseOptionalUUID(req.TeamID),
		Description:       req.Description,
		NextStep:          req.NextStep,
		CustomValues:      req.CustomValues,
	}
	if req.Amount != nil {
		input.Amount = toDecimalPtr(*req.Amount)
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	opp, err := h.opportunityService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, opp)
}

// GetByID retrieves an opportunity by ID
func (h *OpportunityHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	opp, err := h.opportunityService.GetByID(c.Request.Context(), tenantID, oppID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}

// List retrieves a paginated list of opportunities
func (h *OpportunityHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := parseFilter(c, "status", "pipeline_id", "stage_id", "account_id", "owner_id", "team_id", "source")

	result, err := h.opportunityService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListByAccount retrieves all opportunities on an account
func (h *OpportunityHandler) ListByAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	opps, err := h.opportunityService.ListByAccount(c.Request.Context(), tenantID, accountID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opps)
}

// Update updates an opportunity's editable fields
func (h *OpportunityHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	var req UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := crmapp.UpdateOpportunityInput{
		TenantID:          tenantID,
		ID:                oppID,
		Name:              req.Name,
		Description:       req.Description,
		NextStep:          req.NextStep,
		Currency:          req.Currency,
		ExpectedCloseDate: req.ExpectedCloseDate,
		PrimaryContactID:  parseOptionalUUID(req.PrimaryContactID),
		Source:            req.Source,
		CustomValues:      req.CustomValues,
	}
	if req.Amount != nil {
		input.Amount = toDecimalPtr(*req.Amount)
	}

	opp, err := h.opportunityService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}

// AssignOwner assigns the opportunity's owning user and team
func (h *OpportunityHandler) AssignOwner(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	var req AssignOpportunityOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	opp, err := h.opportunityService.AssignOwner(c.Request.Context(), tenantID, oppID,
		parseOptionalUUID(req.OwnerID), parseOptionalUUID(req.TeamID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}

// ChangeStage moves the opportunity to a stage in its pipeline
func (h *OpportunityHandler) ChangeStage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	var req ChangeOpportunityStageRequest
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

	opp, err := h.opportunityService.ChangeStage(c.Request.Context(), tenantID, oppID, pipelineID, stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}

// PinProbability overrides the stage-derived win probability
func (h *OpportunityHandler) PinProbability(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	var req PinProbabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	opp, err := h.opportunityService.PinProbability(c.Request.Context(), tenantID, oppID, req.Probability)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}

// UnpinProbability restores the stage-derived win probability
func (h *OpportunityHandler) UnpinProbability(c *gin.Context) {
	h.transition(c, h.opportunityService.UnpinProbability)
}

// CloseWon closes the opportunity as won
func (h *OpportunityHandler) CloseWon(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	var req CloseWonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var closedBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		closedBy = &userID
	}

	var finalAmount *decimal.Decimal
	if req.FinalAmount != nil {
		finalAmount = toDecimalPtr(*req.FinalAmount)
	}

	opp, err := h.opportunityService.CloseWon(c.Request.Context(), tenantID, oppID, finalAmount, closedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}

// CloseLost closes the opportunity as lost with a reason
func (h *OpportunityHandler) CloseLost(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	var req CloseLostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var closedBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		closedBy = &userID
	}

	opp, err := h.opportunityService.CloseLost(c.Request.Context(), tenantID, oppID, req.Reason, closedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}

// Reopen reopens a closed opportunity into the given stage
func (h *OpportunityHandler) Reopen(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	var req ReopenOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stageID, err := uuid.Parse(req.StageID)
	if err != nil {
		h.BadRequest(c, "Invalid stage ID format")
		return
	}

	opp, err := h.opportunityService.Reopen(c.Request.Context(), tenantID, oppID, stageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}

// Delete removes an open opportunity
func (h *OpportunityHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	if err := h.opportunityService.Delete(c.Request.Context(), tenantID, oppID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *OpportunityHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*crmapp.OpportunityDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID format")
		return
	}

	opp, err := fn(c.Request.Context(), tenantID, oppID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opp)
}
