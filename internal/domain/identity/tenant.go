package identity

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended" // Suspended due to payment/violation issues
	TenantStatusTrial     TenantStatus = "trial"     // Trial period
)

// TenantPlan represents the subscription plan of a tenant
type TenantPlan string

const (
	TenantPlanFree       TenantPlan = "free"
	TenantPlanStarter    TenantPlan = "starter"
	TenantPlanPro        TenantPlan = "pro"
	TenantPlanEnterprise TenantPlan = "enterprise"
)

// ProvisioningStatus tracks whether the tenant's database schema has been created
type ProvisioningStatus string

const (
	ProvisioningPending     ProvisioningStatus = "pending"
	ProvisioningProvisioned ProvisioningStatus = "provisioned"
	ProvisioningFailed      ProvisioningStatus = "failed"
)

// TenantConfig holds configurable settings for a tenant
type TenantConfig struct {
	MaxUsers     int    `json:"max_users"`     // Maximum number of users allowed
	MaxPipelines int    `json:"max_pipelines"` // Maximum number of sales pipelines
	Features     string `json:"features"`      // JSON object of enabled features
	Settings     string `json:"settings"`      // JSON object of tenant settings
	Currency     string `json:"currency"`      // Default currency code
	Timezone     string `json:"timezone"`      // Tenant timezone
	Locale       string `json:"locale"`        // Tenant locale (e.g., en-US)
}

// DefaultTenantConfig returns the default configuration for a new tenant
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		MaxUsers:     5,
		MaxPipelines: 3,
		Features:     "{}",
		Settings:     "{}",
		Currency:     "USD",
		Timezone:     "UTC",
		Locale:       "en-US",
	}
}

// Tenant represents a customer organization in the multi-tenant CRM.
// It is the aggregate root for tenant-related operations. Each tenant owns
// a dedicated database schema whose name is derived from the code at
// creation time and never changes afterwards.
type Tenant struct {
	shared.BaseAggregateRoot
	Code               string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name               string             `gorm:"type:varchar(200);not null"`
	Status             TenantStatus       `gorm:"type:varchar(20);not null;default:'active'"`
	Plan               TenantPlan         `gorm:"type:varchar(20);not null;default:'free'"`
	SchemaName         string             `gorm:"type:varchar(63);not null;uniqueIndex"`
	ProvisioningStatus ProvisioningStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ProvisioningError  string             `gorm:"type:text"`
	ContactName        string             `gorm:"type:varchar(100)"`
	ContactPhone       string             `gorm:"type:varchar(50)"`
	ContactEmail       string             `gorm:"type:varchar(200)"`
	LogoURL            string             `gorm:"type:varchar(500)"`
	Domain             string             `gorm:"type:varchar(200);uniqueIndex"` // Custom subdomain
	ExpiresAt          *time.Time         `gorm:"index"`                         // Subscription expiry date
	TrialEndsAt        *time.Time         // Trial period end date
	Config             TenantConfig       `gorm:"embedded;embeddedPrefix:config_"`
	Notes              string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant with required fields
func NewTenant(code, name string) (*Tenant, error) {
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if err := validateTenantName(name); err != nil {
		return nil, err
	}

	code = strings.ToUpper(code)
	tenant := &Tenant{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Code:               code,
		Name:               name,
		Status:             TenantStatusActive,
		Plan:               TenantPlanFree,
		SchemaName:         SchemaNameForCode(code),
		ProvisioningStatus: ProvisioningPending,
		Config:             DefaultTenantConfig(),
	}

	tenant.AddDomainEvent(NewTenantCreatedEvent(tenant))

	return tenant, nil
}

// NewTrialTenant creates a new tenant in trial status
func NewTrialTenant(code, name string, trialDays int) (*Tenant, error) {
	if trialDays <= 0 {
		return nil, shared.NewDomainError("INVALID_TRIAL_DAYS", "Trial days must be positive")
	}

	tenant, err := NewTenant(code, name)
	if err != nil {
		return nil, err
	}

	tenant.Status = TenantStatusTrial
	trialEnds := time.Now().AddDate(0, 0, trialDays)
	tenant.TrialEndsAt = &trialEnds

	return tenant, nil
}

// SchemaNameForCode derives a schema identifier from a tenant code.
// Postgres identifiers are limited to 63 bytes and must not start with a digit.
func SchemaNameForCode(code string) string {
	name := "tenant_" + strings.ToLower(code)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// Update updates the tenant's basic information
func (t *Tenant) Update(name string) error {
	if err := validateTenantName(name); err != nil {
		return err
	}

	t.Name = name
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantUpdatedEvent(t))

	return nil
}

// SetContact sets the tenant's contact information
func (t *Tenant) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	t.ContactName = contactName
	t.ContactPhone = phone
	t.ContactEmail = email
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetDomain sets the tenant's custom subdomain
func (t *Tenant) SetDomain(domain string) error {
	if domain != "" && len(domain) > 200 {
		return shared.NewDomainError("INVALID_DOMAIN", "Domain cannot exceed 200 characters")
	}

	t.Domain = strings.ToLower(domain)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetLogoURL sets the tenant's logo URL
func (t *Tenant) SetLogoURL(url string) error {
	if url != "" && len(url) > 500 {
		return shared.NewDomainError("INVALID_LOGO_URL", "Logo URL cannot exceed 500 characters")
	}

	t.LogoURL = url
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// UpdateConfig updates the tenant's configuration
func (t *Tenant) UpdateConfig(config TenantConfig) error {
	if config.MaxUsers < 0 {
		return shared.NewDomainError("INVALID_CONFIG", "Max users cannot be negative")
	}
	if config.MaxPipelines < 0 {
		return shared.NewDomainError("INVALID_CONFIG", "Max pipelines cannot be negative")
	}

	t.Config = config
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetPlan changes the tenant's subscription plan
func (t *Tenant) SetPlan(plan TenantPlan, expiresAt *time.Time) error {
	if err := validateTenantPlan(plan); err != nil {
		return err
	}

	oldPlan := t.Plan
	t.Plan = plan
	t.ExpiresAt = expiresAt
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantPlanChangedEvent(t, oldPlan, plan))

	return nil
}

// MarkProvisioned records that the tenant's schema has been created
func (t *Tenant) MarkProvisioned() {
	t.ProvisioningStatus = ProvisioningProvisioned
	t.ProvisioningError = ""
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantProvisionedEvent(t))
}

// MarkProvisioningFailed records a schema provisioning failure.
// The tenant record stays intact so provisioning can be retried.
func (t *Tenant) MarkProvisioningFailed(reason string) {
	t.ProvisioningStatus = ProvisioningFailed
	t.ProvisioningError = reason
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// IsProvisioned returns true if the tenant schema exists
func (t *Tenant) IsProvisioned() bool {
	return t.ProvisioningStatus == ProvisioningProvisioned
}

// Activate activates the tenant
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}

	oldStatus := t.Status
	t.Status = TenantStatusActive
	t.TrialEndsAt = nil
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusActive))

	return nil
}

// Deactivate deactivates the tenant
func (t *Tenant) Deactivate() error {
	if t.Status == TenantStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Tenant is already inactive")
	}

	oldStatus := t.Status
	t.Status = TenantStatusInactive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusInactive))

	return nil
}

// Suspend suspends the tenant
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}

	oldStatus := t.Status
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusSuspended))

	return nil
}

// SetNotes sets the tenant's notes
func (t *Tenant) SetNotes(notes string) {
	t.Notes = notes
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// IsActive returns true if the tenant is active or in trial
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive || t.Status == TenantStatusTrial
}

// IsSuspended returns true if the tenant is suspended
func (t *Tenant) IsSuspended() bool {
	return t.Status == TenantStatusSuspended
}

// IsTrialExpired returns true if the tenant's trial period has ended
func (t *Tenant) IsTrialExpired() bool {
	return t.Status == TenantStatusTrial && t.TrialEndsAt != nil && t.TrialEndsAt.Before(time.Now())
}

// IsExpired returns true if the tenant's subscription has expired
func (t *Tenant) IsExpired() bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now())
}

// Validation functions

func validateTenantCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Tenant code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateTenantName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}
	return nil
}

func validateTenantPlan(plan TenantPlan) error {
	switch plan {
	case TenantPlanFree, TenantPlanStarter, TenantPlanPro, TenantPlanEnterprise:
		return nil
	default:
		return shared.NewDomainError("INVALID_PLAN", "Invalid tenant plan")
	}
}
