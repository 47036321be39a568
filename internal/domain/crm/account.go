package crm

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the status of an account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Address is a value object holding a postal address
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// IsEmpty returns true if no address field is set
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.PostalCode == "" && a.Country == ""
}

// Account represents a company record.
// It is the aggregate root for account-related operations
type Account struct {
	shared.TenantAggregateRoot
	Name            string
	Industry        string
	Website         string
	Phone           string
	Fax             string
	Email           string
	LogoURL         string
	BillingAddress  Address
	ShippingAddress Address
	ParentAccountID *uuid.UUID // No self-reference
	OwnerID         *uuid.UUID
	TeamID          *uuid.UUID
	AnnualRevenue   *decimal.Decimal
	EmployeeCount   *int
	Status          AccountStatus
	Description     string
	CustomValues    map[string]any
}

// NewAccount creates a new account with required fields
func NewAccount(tenantID uuid.UUID, name string) (*Account, error) {
	if err := validateAccountName(name); err != nil {
		return nil, err
	}

	account := &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Status:              AccountStatusActive,
		CustomValues:        make(map[string]any),
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// Update updates the account's basic information
func (a *Account) Update(name, industry, website, phone, fax, email, description string) error {
	if err := validateAccountName(name); err != nil {
		return err
	}
	if website != "" {
		if err := validateURL(website); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateCRMEmail(email); err != nil {
			return err
		}
	}
	if err := validatePhone(phone); err != nil {
		return err
	}

	a.Name = strings.TrimSpace(name)
	a.Industry = strings.TrimSpace(industry)
	a.Website = strings.TrimSpace(website)
	a.Phone = strings.TrimSpace(phone)
	a.Fax = strings.TrimSpace(fax)
	a.Email = strings.ToLower(strings.TrimSpace(email))
	a.Description = description
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountUpdatedEvent(a))

	return nil
}

// SetBillingAddress sets the billing address
func (a *Account) SetBillingAddress(addr Address) {
	a.BillingAddress = addr
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// SetShippingAddress sets the shipping address
func (a *Account) SetShippingAddress(addr Address) {
	a.ShippingAddress = addr
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// CopyBillingToShipping copies the billing address to the shipping address
func (a *Account) CopyBillingToShipping() {
	a.ShippingAddress = a.BillingAddress
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// SetParent sets the parent account
func (a *Account) SetParent(parentID *uuid.UUID) error {
	if parentID != nil && *parentID == a.ID {
		return shared.NewDomainError("INVALID_PARENT", "Account cannot be its own parent")
	}

	a.ParentAccountID = parentID
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// AssignOwner assigns the account to an owner and optionally a team
func (a *Account) AssignOwner(ownerID, teamID *uuid.UUID) {
	a.OwnerID = ownerID
	a.TeamID = teamID
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// SetFinancials sets the optional revenue/headcount figures
func (a *Account) SetFinancials(annualRevenue *decimal.Decimal, employeeCount *int) error {
	if annualRevenue != nil && annualRevenue.IsNegative() {
		return shared.NewDomainError("INVALID_REVENUE", "Annual revenue cannot be negative")
	}
	if employeeCount != nil && *employeeCount < 0 {
		return shared.NewDomainError("INVALID_EMPLOYEE_COUNT", "Employee count cannot be negative")
	}

	a.AnnualRevenue = annualRevenue
	a.EmployeeCount = employeeCount
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetLogoURL sets the account logo URL
func (a *Account) SetLogoURL(url string) error {
	if url != "" && len(url) > 500 {
		return shared.NewDomainError("INVALID_LOGO_URL", "Logo URL cannot exceed 500 characters")
	}

	a.LogoURL = url
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetCustomValues replaces the account's custom field values. Values are
// expected to be normalized against field metadata before this call.
func (a *Account) SetCustomValues(values map[string]any) {
	if values == nil {
		values = make(map[string]any)
	}
	a.CustomValues = values
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// Activate activates the account
func (a *Account) Activate() error {
	if a.Status == AccountStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Account is already active")
	}

	a.Status = AccountStatusActive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Deactivate deactivates the account
func (a *Account) Deactivate() error {
	if a.Status == AccountStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Account is already inactive")
	}

	a.Status = AccountStatusInactive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// IsActive returns true if the account is active
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

func validateAccountName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot exceed 200 characters")
	}
	return nil
}
