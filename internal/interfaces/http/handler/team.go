package handler

import (
	"context"

	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TeamHandler handles sales team management API endpoints
type TeamHandler struct {
	BaseHandler
	teamService *identityapp.TeamService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamService *identityapp.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeamRequest represents a request to create a new team
type CreateTeamRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"max=500"`
	LeadUserID  *string  `json:"lead_user_id" binding:"omitempty,uuid"`
	MemberIDs   []string `json:"member_ids" binding:"omitempty,dive,uuid"`
}

// UpdateTeamRequest represents a request to update a team
type UpdateTeamRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// SetTeamLeadRequest assigns or clears the team lead
type SetTeamLeadRequest struct {
	LeadUserID *string `json:"lead_user_id" binding:"omitempty,uuid"`
}

// TeamMemberRequest identifies a user to add or remove
type TeamMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// Create creates a new team
func (h *TeamHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := identityapp.CreateTeamInput{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		LeadUserID:  parseOptionalUUID(req.LeadUserID),
		MemberIDs:   parseUUIDSlice(req.MemberIDs),
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	team, err := h.teamService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, team)
}

// GetByID retrieves a team by ID
func (h *TeamHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid team ID format")
		return
	}

	team, err := h.teamService.GetByID(c.Request.Context(), tenantID, teamID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, team)
}

// List retrieves a paginated list of teams
func (h *TeamHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := parseFilter(c, "status")

	result, err := h.teamService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update updates a team's name and description
func (h *TeamHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid team ID format")
		return
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), tenantID, teamID, req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, team)
}

// SetLead assigns or clears the team lead
func (h *TeamHandler) SetLead(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid team ID format")
		return
	}

	var req SetTeamLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	team, err := h.teamService.SetLead(c.Request.Context(), tenantID, teamID, parseOptionalUUID(req.LeadUserID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, team)
}

// AddMember adds a user to the team
func (h *TeamHandler) AddMember(c *gin.Context) {
	h.memberChange(c, h.teamService.AddMember)
}

// RemoveMember removes a user from the team
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	h.memberChange(c, h.teamService.RemoveMember)
}

// Activate re-enables a deactivated team
func (h *TeamHandler) Activate(c *gin.Context) {
	h.transition(c, h.teamService.Activate)
}

// Deactivate deactivates a team
func (h *TeamHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.teamService.Deactivate)
}

// Delete removes a team
func (h *TeamHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid team ID format")
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), tenantID, teamID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *TeamHandler) memberChange(c *gin.Context, fn func(ctx context.Context, tenantID, teamID, userID uuid.UUID) (*identityapp.TeamDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid team ID format")
		return
	}

	var req TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	team, err := fn(c.Request.Context(), tenantID, teamID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, team)
}

func (h *TeamHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*identityapp.TeamDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid team ID format")
		return
	}

	team, err := fn(c.Request.Context(), tenantID, teamID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, team)
}
