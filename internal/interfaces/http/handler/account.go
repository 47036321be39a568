package handler

import (
	"context"

	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountHandler handles company account API endpoints
type AccountHandler struct {
	BaseHandler
	accountService *crmapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *crmapp.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// AddressRequest represents a postal address in a request body
type AddressRequest struct {
	Street     string `json:"street" binding:"max=200"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

func (r *AddressRequest) toDTO() *crmapp.AddressDTO {
	if r == nil {
		return nil
	}
	return &crmapp.AddressDTO{
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// CreateAccountRequest represents a request to create a new account
type CreateAccountRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Industry        string          `json:"industry" binding:"max=100"`
	Website         string          `json:"website" binding:"max=200"`
	Phone           string          `json:"phone" binding:"max=50"`
	Fax             string          `json:"fax" binding:"max=50"`
	Email           string          `json:"email" binding:"omitempty,email,max=200"`
	BillingAddress  *AddressRequest `json:"billing_address"`
	ShippingAddress *AddressRequest `json:"shipping_address"`
	ParentAccountID *string         `json:"parent_account_id" binding:"omitempty,uuid"`
	OwnerID         *string         `json:"owner_id" binding:"omitempty,uuid"`
	TeamID          *string         `json:"team_id" binding:"omitempty,uuid"`
	AnnualRevenue   *float64        `json:"annual_revenue" binding:"omitempty,min=0"`
	EmployeeCount   *int            `json:"employee_count" binding:"omitempty,min=0"`
	Description     string          `json:"description" binding:"max=2000"`
	CustomValues    map[string]any  `json:"custom_values"`
}

// UpdateAccountRequest represents a request to update an account
type UpdateAccountRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Industry        string          `json:"industry" binding:"max=100"`
	Website         string          `json:"website" binding:"max=200"`
	Phone           string          `json:"phone" binding:"max=50"`
	Fax             string          `json:"fax" binding:"max=50"`
	Email           string          `json:"email" binding:"omitempty,email,max=200"`
	BillingAddress  *AddressRequest `json:"billing_address"`
	ShippingAddress *AddressRequest `json:"shipping_address"`
	AnnualRevenue   *float64        `json:"annual_revenue" binding:"omitempty,min=0"`
	EmployeeCount   *int            `json:"employee_count" binding:"omitempty,min=0"`
	Description     string          `json:"description" binding:"max=2000"`
	CustomValues    map[string]any  `json:"custom_values"`
}

// SetAccountParentRequest re-parents an account; a null parent detaches it
type SetAccountParentRequest struct {
	ParentAccountID *string `json:"parent_account_id" binding:"omitempty,uuid"`
}

// AssignAccountOwnerRequest assigns the owning user and team
type AssignAccountOwnerRequest struct {
	OwnerID *string `json:"owner_id" binding:"omitempty,uuid"`
	TeamID  *string `json:"team_id" binding:"omitempty,uuid"`
}

// Create creates a new account
func (h *AccountHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := crmapp.CreateAccountInput{
		TenantID:        tenantID,
		Name:            req.Name,
		Industry:        req.Industry,
		Website:         req.Website,
		Phone:           req.Phone,
		Fax:             req.Fax,
		Email:           req.Email,
		BillingAddress:  req.BillingAddress.toDTO(),
		ShippingAddress: req.ShippingAddress.toDTO(),
		ParentAccountID: parseOptionalUUID(req.ParentAccountID),
		OwnerID:         parseOptionalUUID(req.OwnerID),
		TeamID:          parseOptionalUUID(req.TeamID),
		EmployeeCount:   req.EmployeeCount,
		Description:     req.Description,
		CustomValues:    req.CustomValues,
	}
	if req.AnnualRevenue != nil {
		input.AnnualRevenue = toDecimalPtr(*req.AnnualRevenue)
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	account, err := h.accountService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, account)
}

// GetByID retrieves an account by ID
func (h *AccountHandler) GetByID(c *gin.Context) {
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

	account, err := h.accountService.GetByID(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// List retrieves a paginated list of accounts
func (h *AccountHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := parseFilter(c, "status", "industry", "owner_id", "team_id", "parent_account_id")

	result, err := h.accountService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update updates an account's profile fields
func (h *AccountHandler) Update(c *gin.Context) {
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

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := crmapp.UpdateAccountInput{
		TenantID:        tenantID,
		ID:              accountID,
		Name:            req.Name,
		Industry:        req.Industry,
		Website:         req.Website,
		Phone:           req.Phone,
		Fax:             req.Fax,
		Email:           req.Email,
		Description:     req.Description,
		BillingAddress:  req.BillingAddress.toDTO(),
		ShippingAddress: req.ShippingAddress.toDTO(),
		EmployeeCount:   req.EmployeeCount,
		CustomValues:    req.CustomValues,
	}
	if req.AnnualRevenue != nil {
		d := decimal.NewFromFloat(*req.AnnualRevenue)
		input.AnnualRevenue = &d
	}

	account, err := h.accountService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// SetParent re-parents an account within the hierarchy
func (h *AccountHandler) SetParent(c *gin.Context) {
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

	var req SetAccountParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.SetParent(c.Request.Context(), tenantID, accountID, parseOptionalUUID(req.ParentAccountID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// AssignOwner assigns the account's owning user and team
func (h *AccountHandler) AssignOwner(c *gin.Context) {
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

	var req AssignAccountOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.AssignOwner(c.Request.Context(), tenantID, accountID,
		parseOptionalUUID(req.OwnerID), parseOptionalUUID(req.TeamID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// Activate re-enables a deactivated account
func (h *AccountHandler) Activate(c *gin.Context) {
	h.transition(c, h.accountService.Activate)
}

// Deactivate deactivates an account without deleting it
func (h *AccountHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.accountService.Deactivate)
}

// Delete removes an account with no linked contacts or open opportunities
func (h *AccountHandler) Delete(c *gin.Context) {
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

	if err := h.accountService.Delete(c.Request.Context(), tenantID, accountID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *AccountHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*crmapp.AccountDTO, error)) {
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

	account, err := fn(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}
