package handler

import (
	"context"
	"time"

	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContactHandler handles person contact API endpoints
type ContactHandler struct {
	BaseHandler
	contactService *crmapp.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *crmapp.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

// ContactMethodRequest represents one communication channel in a request
type ContactMethodRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=email phone mobile fax wechat linkedin other"`
	Value     string `json:"value" binding:"required,min=1,max=200"`
	Label     string `json:"label" binding:"max=50"`
	IsPrimary bool   `json:"is_primary"`
}

// CreateContactRequest represents a request to create a new contact
type CreateContactRequest struct {
	FirstName    string                 `json:"first_name" binding:"max=100"`
	LastName     string                 `json:"last_name" binding:"required,min=1,max=100"`
	Title        string                 `json:"title" binding:"max=100"`
	Birthdate    *time.Time             `json:"birthdate"`
	OwnerID      *string                `json:"owner_id" binding:"omitempty,uuid"`
	TeamID       *string                `json:"team_id" binding:"omitempty,uuid"`
	Methods      []ContactMethodRequest `json:"methods" binding:"omitempty,dive"`
	AccountID    *string                `json:"account_id" binding:"omitempty,uuid"`
	AccountRole  string                 `json:"account_role" binding:"max=100"`
	Address      *AddressRequest        `json:"address"`
	Description  string                 `json:"description" binding:"max=2000"`
	CustomValues map[string]any         `json:"custom_values"`
}

// UpdateContactRequest represents a request to update a contact
type UpdateContactRequest struct {
	FirstName    string          `json:"first_name" binding:"max=100"`
	LastName     string          `json:"last_name" binding:"required,min=1,max=100"`
	Title        string          `json:"title" binding:"max=100"`
	Birthdate    *time.Time      `json:"birthdate"`
	Address      *AddressRequest `json:"address"`
	Description  string          `json:"description" binding:"max=2000"`
	CustomValues map[string]any  `json:"custom_values"`
}

// LinkAccountRequest links the contact to an account
type LinkAccountRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Role      string `json:"role" binding:"max=100"`
	IsPrimary bool   `json:"is_primary"`
}

// AssignContactOwnerRequest assigns the owning user and team
type AssignContactOwnerRequest struct {
	OwnerID *string `json:"owner_id" binding:"omitempty,uuid"`
	TeamID  *string `json:"team_id" binding:"omitempty,uuid"`
}

// Create creates a new contact
func (h *ContactHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := crmapp.CreateContactInput{
		TenantID:     tenantID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Title:        req.Title,
		Birthdate:    req.Birthdate,
		OwnerID:      parseOptionalUUID(req.OwnerID),
		TeamID:       parseOptionalUUID(req.TeamID),
		AccountID:    parseOptionalUUID(req.AccountID),
		AccountRole:  req.AccountRole,
		Address:      req.Address.toDTO(),
		Description:  req.Description,
		CustomValues: req.CustomValues,
	}
	for _, m := range req.Methods {
		input.Methods = append(input.Methods, crmapp.ContactMethodInput{
			Kind:      m.Kind,
			Value:     m.Value,
			Label:     m.Label,
			IsPrimary: m.IsPrimary,
		})
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	contact, err := h.contactService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, contact)
}

// GetByID retrieves a contact by ID
func (h *ContactHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	contact, err := h.contactService.GetByID(c.Request.Context(), tenantID, contactID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// List retrieves a paginated list of contacts
func (h *ContactHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := parseFilter(c, "owner_id", "team_id", "account_id")

	result, err := h.contactService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListByAccount retrieves all contacts linked to an account
func (h *ContactHandler) ListByAccount(c *gin.Context) {
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

	contacts, err := h.contactService.ListByAccount(c.Request.Context(), tenantID, accountID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contacts)
}

// Update updates a contact's profile fields
func (h *ContactHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contact, err := h.contactService.Update(c.Request.Context(), crmapp.UpdateContactInput{
		TenantID:     tenantID,
		ID:           contactID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Title:        req.Title,
		Description:  req.Description,
		Birthdate:    req.Birthdate,
		Address:      req.Address.toDTO(),
		CustomValues: req.CustomValues,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// AddMethod adds a communication channel to the contact
func (h *ContactHandler) AddMethod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	var req ContactMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contact, err := h.contactService.AddMethod(c.Request.Context(), tenantID, contactID, crmapp.ContactMethodInput{
		Kind:      req.Kind,
		Value:     req.Value,
		Label:     req.Label,
		IsPrimary: req.IsPrimary,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// RemoveMethod removes a communication channel from the contact
func (h *ContactHandler) RemoveMethod(c *gin.Context) {
	h.methodChange(c, h.contactService.RemoveMethod)
}

// SetPrimaryMethod marks a channel primary within its kind
func (h *ContactHandler) SetPrimaryMethod(c *gin.Context) {
	h.methodChange(c, h.contactService.SetPrimaryMethod)
}

// LinkAccount links the contact to an account with a role
func (h *ContactHandler) LinkAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	var req LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	contact, err := h.contactService.LinkAccount(c.Request.Context(), tenantID, contactID, accountID, req.Role, req.IsPrimary)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// UnlinkAccount removes the contact's link to an account
func (h *ContactHandler) UnlinkAccount(c *gin.Context) {
	h.accountChange(c, h.contactService.UnlinkAccount)
}

// SetPrimaryAccount marks an already-linked account as primary
func (h *ContactHandler) SetPrimaryAccount(c *gin.Context) {
	h.accountChange(c, h.contactService.SetPrimaryAccount)
}

// AssignOwner assigns the contact's owning user and team
func (h *ContactHandler) AssignOwner(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	var req AssignContactOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contact, err := h.contactService.AssignOwner(c.Request.Context(), tenantID, contactID,
		parseOptionalUUID(req.OwnerID), parseOptionalUUID(req.TeamID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// Delete removes a contact
func (h *ContactHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), tenantID, contactID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// methodChange runs an operation addressed by contact and method path params
func (h *ContactHandler) methodChange(c *gin.Context, fn func(ctx context.Context, tenantID, contactID, methodID uuid.UUID) (*crmapp.ContactDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	methodID, err := uuid.Parse(c.Param("methodId"))
	if err != nil {
		h.BadRequest(c, "Invalid method ID format")
		return
	}

	contact, err := fn(c.Request.Context(), tenantID, contactID, methodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// accountChange runs an operation addressed by contact and account path params
func (h *ContactHandler) accountChange(c *gin.Context, fn func(ctx context.Context, tenantID, contactID, accountID uuid.UUID) (*crmapp.ContactDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	contact, err := fn(c.Request.Context(), tenantID, contactID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}
