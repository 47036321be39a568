package models

import (
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressModel is the embedded persistence representation of a postal address.
type AddressModel struct {
	Street     string `gorm:"type:varchar(200)"`
	City       string `gorm:"type:varchar(100)"`
	State      string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(100)"`
}

// ToDomain converts the embedded address to the domain value object.
func (m AddressModel) ToDomain() crm.Address {
	return crm.Address{
		Street:     m.Street,
		City:       m.City,
		State:      m.State,
		PostalCode: m.PostalCode,
		Country:    m.Country,
	}
}

// AddressModelFromDomain converts a domain address to its embedded representation.
func AddressModelFromDomain(a crm.Address) AddressModel {
	return AddressModel{
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// AccountModel is the persistence model for the Account domain entity.
type AccountModel struct {
	TenantAggregateModel
	Name            string            `gorm:"type:varchar(200);not null;index"`
	Industry        string            `gorm:"type:varchar(100);index"`
	Website         string            `gorm:"type:varchar(500)"`
	Phone           string            `gorm:"type:varchar(50)"`
	Fax             string            `gorm:"type:varchar(50)"`
	Email           string            `gorm:"type:varchar(200)"`
	LogoURL         string            `gorm:"type:varchar(500)"`
	BillingAddress  AddressModel      `gorm:"embedded;embeddedPrefix:billing_"`
	ShippingAddress AddressModel      `gorm:"embedded;embeddedPrefix:shipping_"`
	ParentAccountID *uuid.UUID        `gorm:"type:uuid;index"`
	OwnerID         *uuid.UUID        `gorm:"type:uuid;index"`
	TeamID          *uuid.UUID        `gorm:"type:uuid;index"`
	AnnualRevenue   *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	EmployeeCount   *int
	Status          crm.AccountStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Description     string            `gorm:"type:text"`
	CustomValues    string            `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *AccountModel) ToDomain() *crm.Account {
	return &crm.Account{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Name:            m.Name,
		Industry:        m.Industry,
		Website:         m.Website,
		Phone:           m.Phone,
		Fax:             m.Fax,
		Email:           m.Email,
		LogoURL:         m.LogoURL,
		BillingAddress:  m.BillingAddress.ToDomain(),
		ShippingAddress: m.ShippingAddress.ToDomain(),
		ParentAccountID: m.ParentAccountID,
		OwnerID:         m.OwnerID,
		TeamID:          m.TeamID,
		AnnualRevenue:   m.AnnualRevenue,
		EmployeeCount:   m.EmployeeCount,
		Status:          m.Status,
		Description:     m.Description,
		CustomValues:    unmarshalValueMap(m.CustomValues),
	}
}

// FromDomain populates the persistence model from a domain Account entity.
func (m *AccountModel) FromDomain(a *crm.Account) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.Name = a.Name
	m.Industry = a.Industry
	m.Website = a.Website
	m.Phone = a.Phone
	m.Fax = a.Fax
	m.Email = a.Email
	m.LogoURL = a.LogoURL
	m.BillingAddress = AddressModelFromDomain(a.BillingAddress)
	m.ShippingAddress = AddressModelFromDomain(a.ShippingAddress)
	m.ParentAccountID = a.ParentAccountID
	m.OwnerID = a.OwnerID
	m.TeamID = a.TeamID
	m.AnnualRevenue = a.AnnualRevenue
	m.EmployeeCount = a.EmployeeCount
	m.Status = a.Status
	m.Description = a.Description
	m.CustomValues = marshalJSON(a.CustomValues, "{}")
}

// AccountModelFromDomain creates a new persistence model from a domain Account entity.
func AccountModelFromDomain(a *crm.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// ContactModel is the persistence model for the Contact domain entity.
type ContactModel struct {
	TenantAggregateModel
	FirstName    string       `gorm:"type:varchar(100);not null"`
	LastName     string       `gorm:"type:varchar(100);index"`
	Title        string       `gorm:"type:varchar(100)"`
	AvatarURL    string       `gorm:"type:varchar(500)"`
	Birthdate    *time.Time
	OwnerID      *uuid.UUID   `gorm:"type:uuid;index"`
	TeamID       *uuid.UUID   `gorm:"type:uuid;index"`
	Address      AddressModel `gorm:"embedded;embeddedPrefix:address_"`
	Description  string       `gorm:"type:text"`
	CustomValues string       `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the persistence model to a domain Contact entity.
// Note: Methods and AccountLinks must be loaded separately by the repository.
func (m *ContactModel) ToDomain() *crm.Contact {
	return &crm.Contact{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Title:        m.Title,
		AvatarURL:    m.AvatarURL,
		Birthdate:    m.Birthdate,
		OwnerID:      m.OwnerID,
		TeamID:       m.TeamID,
		Methods:      make([]crm.ContactMethod, 0), // Loaded separately
		AccountLinks: make([]crm.AccountLink, 0),   // Loaded separately
		Address:      m.Address.ToDomain(),
		Description:  m.Description,
		CustomValues: unmarshalValueMap(m.CustomValues),
	}
}

// FromDomain populates the persistence model from a domain Contact entity.
func (m *ContactModel) FromDomain(c *crm.Contact) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Title = c.Title
	m.AvatarURL = c.AvatarURL
	m.Birthdate = c.Birthdate
	m.OwnerID = c.OwnerID
	m.TeamID = c.TeamID
	m.Address = AddressModelFromDomain(c.Address)
	m.Description = c.Description
	m.CustomValues = marshalJSON(c.CustomValues, "{}")
}

// ContactModelFromDomain creates a new persistence model from a domain Contact entity.
func ContactModelFromDomain(c *crm.Contact) *ContactModel {
	m := &ContactModel{}
	m.FromDomain(c)
	return m
}

// ContactMethodModel is the persistence model for contact communication methods.
type ContactMethodModel struct {
	ID        uuid.UUID             `gorm:"type:uuid;primaryKey"`
	ContactID uuid.UUID             `gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Kind      crm.ContactMethodKind `gorm:"type:varchar(20);not null"`
	Value     string                `gorm:"type:varchar(200);not null;index"`
	IsPrimary bool                  `gorm:"not null;default:false"`
	Label     string                `gorm:"type:varchar(50)"`
	CreatedAt time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContactMethodModel) TableName() string {
	return "contact_methods"
}

// ToDomain converts the persistence model to a domain ContactMethod.
func (m *ContactMethodModel) ToDomain() crm.ContactMethod {
	return crm.ContactMethod{
		ID:        m.ID,
		Kind:      m.Kind,
		Value:     m.Value,
		IsPrimary: m.IsPrimary,
		Label:     m.Label,
	}
}

// FromDomain populates the persistence model from a domain ContactMethod.
func (m *ContactMethodModel) FromDomain(contactID, tenantID uuid.UUID, cm crm.ContactMethod) {
	m.ID = cm.ID
	m.ContactID = contactID
	m.TenantID = tenantID
	m.Kind = cm.Kind
	m.Value = cm.Value
	m.IsPrimary = cm.IsPrimary
	m.Label = cm.Label
	m.CreatedAt = time.Now()
}

// ContactAccountLinkModel is the persistence model for contact-account relationships.
type ContactAccountLinkModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"type:varchar(100)"`
	IsPrimary bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContactAccountLinkModel) TableName() string {
	return "contact_account_links"
}

// ToDomain converts the persistence model to a domain AccountLink.
func (m *ContactAccountLinkModel) ToDomain() crm.AccountLink {
	return crm.AccountLink{
		ID:        m.ID,
		AccountID: m.AccountID,
		Role:      m.Role,
		IsPrimary: m.IsPrimary,
	}
}

// FromDomain populates the persistence model from a domain AccountLink.
func (m *ContactAccountLinkModel) FromDomain(contactID, tenantID uuid.UUID, link crm.AccountLink) {
	m.ID = link.ID
	m.ContactID = contactID
	m.AccountID = link.AccountID
	m.TenantID = tenantID
	m.Role = link.Role
	m.IsPrimary = link.IsPrimary
	m.CreatedAt = time.Now()
}

// LeadModel is the persistence model for the Lead domain entity.
type LeadModel struct {
	TenantAggregateModel
	FirstName        string         `gorm:"type:varchar(100)"`
	LastName         string         `gorm:"type:varchar(100);not null;index"`
	Title            string         `gorm:"type:varchar(100)"`
	Company          string         `gorm:"type:varchar(200);index"`
	Email            string         `gorm:"type:varchar(200);index"`
	Phone            string         `gorm:"type:varchar(50)"`
	Website          string         `gorm:"type:varchar(500)"`
	Source           crm.LeadSource `gorm:"type:varchar(30)"`
	Rating           crm.LeadRating `gorm:"type:varchar(10)"`
	Status           crm.LeadStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	PipelineID       *uuid.UUID     `gorm:"type:uuid;index"`
	StageID          *uuid.UUID     `gorm:"type:uuid;index"`
	OwnerID          *uuid.UUID     `gorm:"type:uuid;index"`
	TeamID           *uuid.UUID     `gorm:"type:uuid;index"`
	Description      string         `gorm:"type:text"`
	CustomValues     string         `gorm:"type:jsonb;default:'{}'"`
	DisqualifyReason string         `gorm:"type:varchar(500)"`
	QualifiedAt      *time.Time
	ConvertedAt      *time.Time

	ConvertedContactID     *uuid.UUID `gorm:"type:uuid"`
	ConvertedAccountID     *uuid.UUID `gorm:"type:uuid"`
	ConvertedOpportunityID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead entity.
func (m *LeadModel) ToDomain() *crm.Lead {
	return &crm.Lead{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		FirstName:              m.FirstName,
		LastName:               m.LastName,
		Title:                  m.Title,
		Company:                m.Company,
		Email:                  m.Email,
		Phone:                  m.Phone,
		Website:                m.Website,
		Source:                 m.Source,
		Rating:                 m.Rating,
		Status:                 m.Status,
		PipelineID:             m.PipelineID,
		StageID:                m.StageID,
		OwnerID:                m.OwnerID,
		TeamID:                 m.TeamID,
		Description:            m.Description,
		CustomValues:           unmarshalValueMap(m.CustomValues),
		DisqualifyReason:       m.DisqualifyReason,
		QualifiedAt:            m.QualifiedAt,
		ConvertedAt:            m.ConvertedAt,
		ConvertedContactID:     m.ConvertedContactID,
		ConvertedAccountID:     m.ConvertedAccountID,
		ConvertedOpportunityID: m.ConvertedOpportunityID,
	}
}

// FromDomain populates the persistence model from a domain Lead entity.
func (m *LeadModel) FromDomain(l *crm.Lead) {
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	m.FirstName = l.FirstName
	m.LastName = l.LastName
	m.Title = l.Title
	m.Company = l.Company
	m.Email = l.Email
	m.Phone = l.Phone
	m.Website = l.Website
	m.Source = l.Source
	m.Rating = l.Rating
	m.Status = l.Status
	m.PipelineID = l.PipelineID
	m.StageID = l.StageID
	m.OwnerID = l.OwnerID
	m.TeamID = l.TeamID
	m.Description = l.Description
	m.CustomValues = marshalJSON(l.CustomValues, "{}")
	m.DisqualifyReason = l.DisqualifyReason
	m.QualifiedAt = l.QualifiedAt
	m.ConvertedAt = l.ConvertedAt
	m.ConvertedContactID = l.ConvertedContactID
	m.ConvertedAccountID = l.ConvertedAccountID
	m.ConvertedOpportunityID = l.ConvertedOpportunityID
}

// LeadModelFromDomain creates a new persistence model from a domain Lead entity.
func LeadModelFromDomain(l *crm.Lead) *LeadModel {
	m := &LeadModel{}
	m.FromDomain(l)
	return m
}

// OpportunityModel is the persistence model for the Opportunity domain entity.
type OpportunityModel struct {
	TenantAggregateModel
	Name              string                `gorm:"type:varchar(200);not null;index"`
	AccountID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	PrimaryContactID  *uuid.UUID            `gorm:"type:uuid;index"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Currency          string                `gorm:"type:varchar(10);not null;default:'USD'"`
	ExpectedCloseDate *time.Time            `gorm:"index"`
	PipelineID        *uuid.UUID            `gorm:"type:uuid;index"`
	StageID           *uuid.UUID            `gorm:"type:uuid;index"`
	Probability       int                   `gorm:"not null;default:0"`
	ProbabilityPinned bool                  `gorm:"not null;default:false"`
	Status            crm.OpportunityStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	OwnerID           *uuid.UUID            `gorm:"type:uuid;index"`
	TeamID            *uuid.UUID            `gorm:"type:uuid;index"`
	Source            crm.LeadSource        `gorm:"type:varchar(30)"`
	NextStep          string                `gorm:"type:varchar(500)"`
	Description       string                `gorm:"type:text"`
	CustomValues      string                `gorm:"type:jsonb;default:'{}'"`

	ClosedAt     *time.Time
	ClosedBy     *uuid.UUID       `gorm:"type:uuid"`
	ActualAmount *decimal.Decimal `gorm:"type:decimal(18,2)"`
	LossReason   string           `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OpportunityModel) TableName() string {
	return "opportunities"
}

// ToDomain converts the persistence model to a domain Opportunity entity.
func (m *OpportunityModel) ToDomain() *crm.Opportunity {
	return &crm.Opportunity{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Name:              m.Name,
		AccountID:         m.AccountID,
		PrimaryContactID:  m.PrimaryContactID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		ExpectedCloseDate: m.ExpectedCloseDate,
		PipelineID:        m.PipelineID,
		StageID:           m.StageID,
		Probability:       m.Probability,
		ProbabilityPinned: m.ProbabilityPinned,
		Status:            m.Status,
		OwnerID:           m.OwnerID,
		TeamID:            m.TeamID,
		Source:            m.Source,
		NextStep:          m.NextStep,
		Description:       m.Description,
		CustomValues:      unmarshalValueMap(m.CustomValues),
		ClosedAt:          m.ClosedAt,
		ClosedBy:          m.ClosedBy,
		ActualAmount:      m.ActualAmount,
		LossReason:        m.LossReason,
	}
}

// FromDomain populates the persistence model from a domain Opportunity entity.
func (m *OpportunityModel) FromDomain(o *crm.Opportunity) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.Name = o.Name
	m.AccountID = o.AccountID
	m.PrimaryContactID = o.PrimaryContactID
	m.Amount = o.Amount
	m.Currency = o.Currency
	m.ExpectedCloseDate = o.ExpectedCloseDate
	m.PipelineID = o.PipelineID
	m.StageID = o.StageID
	m.Probability = o.Probability
	m.ProbabilityPinned = o.ProbabilityPinned
	m.Status = o.Status
	m.OwnerID = o.OwnerID
	m.TeamID = o.TeamID
	m.Source = o.Source
	m.NextStep = o.NextStep
	m.Description = o.Description
	m.CustomValues = marshalJSON(o.CustomValues, "{}")
	m.ClosedAt = o.ClosedAt
	m.ClosedBy = o.ClosedBy
	m.ActualAmount = o.ActualAmount
	m.LossReason = o.LossReason
}

// OpportunityModelFromDomain creates a new persistence model from a domain Opportunity entity.
func OpportunityModelFromDomain(o *crm.Opportunity) *OpportunityModel {
	m := &OpportunityModel{}
	m.FromDomain(o)
	return m
}

// PipelineModel is the persistence model for the Pipeline domain entity.
type PipelineModel struct {
	TenantAggregateModel
	Name       string           `gorm:"type:varchar(200);not null"`
	Type       crm.PipelineType `gorm:"type:varchar(20);not null;index"`
	IsDefault  bool             `gorm:"not null;default:false"`
	IsArchived bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PipelineModel) TableName() string {
	return "pipelines"
}

// ToDomain converts the persistence model to a domain Pipeline entity.
// Note: Stages must be loaded separately by the repository.
func (m *PipelineModel) ToDomain() *crm.Pipeline {
	return &crm.Pipeline{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Name:       m.Name,
		Type:       m.Type,
		IsDefault:  m.IsDefault,
		IsArchived: m.IsArchived,
		Stages:     make([]crm.Stage, 0), // Loaded separately
	}
}

// FromDomain populates the persistence model from a domain Pipeline entity.
func (m *PipelineModel) FromDomain(p *crm.Pipeline) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.Type = p.Type
	m.IsDefault = p.IsDefault
	m.IsArchived = p.IsArchived
}

// PipelineModelFromDomain creates a new persistence model from a domain Pipeline entity.
func PipelineModelFromDomain(p *crm.Pipeline) *PipelineModel {
	m := &PipelineModel{}
	m.FromDomain(p)
	return m
}

// PipelineStageModel is the persistence model for pipeline stages.
type PipelineStageModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PipelineID  uuid.UUID `gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(100);not null"`
	SortOrder   int       `gorm:"not null;default:0"`
	Probability int       `gorm:"not null;default:0"`
	IsWon       bool      `gorm:"not null;default:false"`
	IsLost      bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PipelineStageModel) TableName() string {
	return "pipeline_stages"
}

// ToDomain converts the persistence model to a domain Stage.
func (m *PipelineStageModel) ToDomain() crm.Stage {
	return crm.Stage{
		ID:          m.ID,
		Name:        m.Name,
		SortOrder:   m.SortOrder,
		Probability: m.Probability,
		IsWon:       m.IsWon,
		IsLost:      m.IsLost,
	}
}

// FromDomain populates the persistence model from a domain Stage.
func (m *PipelineStageModel) FromDomain(pipelineID, tenantID uuid.UUID, s crm.Stage) {
	m.ID = s.ID
	m.PipelineID = pipelineID
	m.TenantID = tenantID
	m.Name = s.Name
	m.SortOrder = s.SortOrder
	m.Probability = s.Probability
	m.IsWon = s.IsWon
	m.IsLost = s.IsLost
	m.CreatedAt = time.Now()
}
