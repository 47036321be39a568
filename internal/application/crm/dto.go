package crm

import (
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressDTO represents a postal address
type AddressDTO struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

func toAddressDTO(addr crm.Address) AddressDTO {
	return AddressDTO{
		Street:     addr.Street,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func (d AddressDTO) toDomain() crm.Address {
	return crm.Address{
		Street:     d.Street,
		City:       d.City,
		State:      d.State,
		PostalCode: d.PostalCode,
		Country:    d.Country,
	}
}

// AccountDTO represents account data returned to clients
type AccountDTO struct {
	ID              uuid.UUID        `json:"id"`
	TenantID        uuid.UUID        `json:"tenant_id"`
	Name            string           `json:"name"`
	Industry        string           `json:"industry,omitempty"`
	Website         string           `json:"website,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Fax             string           `json:"fax,omitempty"`
	Email           string           `json:"email,omitempty"`
	LogoURL         string           `json:"logo_url,omitempty"`
	BillingAddress  AddressDTO       `json:"billing_address"`
	ShippingAddress AddressDTO       `json:"shipping_address"`
	ParentAccountID *uuid.UUID       `json:"parent_account_id,omitempty"`
	OwnerID         *uuid.UUID       `json:"owner_id,omitempty"`
	TeamID          *uuid.UUID       `json:"team_id,omitempty"`
	AnnualRevenue   *decimal.Decimal `json:"annual_revenue,omitempty"`
	EmployeeCount   *int             `json:"employee_count,omitempty"`
	Status          string           `json:"status"`
	Description     string           `json:"description,omitempty"`
	CustomValues    map[string]any   `json:"custom_values,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func toAccountDTO(a *crm.Account) *AccountDTO {
	return &AccountDTO{
		ID:              a.ID,
		TenantID:        a.TenantID,
		Name:            a.Name,
		Industry:        a.Industry,
		Website:         a.Website,
		Phone:           a.Phone,
		Fax:             a.Fax,
		Email:           a.Email,
		LogoURL:         a.LogoURL,
		BillingAddress:  toAddressDTO(a.BillingAddress),
		ShippingAddress: toAddressDTO(a.ShippingAddress),
		ParentAccountID: a.ParentAccountID,
		OwnerID:         a.OwnerID,
		TeamID:          a.TeamID,
		AnnualRevenue:   a.AnnualRevenue,
		EmployeeCount:   a.EmployeeCount,
		Status:          string(a.Status),
		Description:     a.Description,
		CustomValues:    a.CustomValues,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ContactMethodDTO represents one communication channel of a contact
type ContactMethodDTO struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Value     string    `json:"value"`
	IsPrimary bool      `json:"is_primary"`
	Label     string    `json:"label,omitempty"`
}

// AccountLinkDTO represents a contact's link to an account
type AccountLinkDTO struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Role      string    `json:"role,omitempty"`
	IsPrimary bool      `json:"is_primary"`
}

// ContactDTO represents contact data returned to clients
type ContactDTO struct {
	ID           uuid.UUID          `json:"id"`
	TenantID     uuid.UUID          `json:"tenant_id"`
	FirstName    string             `json:"first_name,omitempty"`
	LastName     string             `json:"last_name"`
	FullName     string             `json:"full_name"`
	Title        string             `json:"title,omitempty"`
	AvatarURL    string             `json:"avatar_url,omitempty"`
	Birthdate    *time.Time         `json:"birthdate,omitempty"`
	OwnerID      *uuid.UUID         `json:"owner_id,omitempty"`
	TeamID       *uuid.UUID         `json:"team_id,omitempty"`
	Methods      []ContactMethodDTO `json:"methods"`
	AccountLinks []AccountLinkDTO   `json:"account_links"`
	Address      AddressDTO         `json:"address"`
	Description  string             `json:"description,omitempty"`
	CustomValues map[string]any     `json:"custom_values,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func toContactDTO(c *crm.Contact) *ContactDTO {
	methods := make([]ContactMethodDTO, len(c.Methods))
	for i, m := range c.Methods {
		methods[i] = ContactMethodDTO{
			ID:        m.ID,
			Kind:      string(m.Kind),
			Value:     m.Value,
			IsPrimary: m.IsPrimary,
			Label:     m.Label,
		}
	}
	links := make([]AccountLinkDTO, len(c.AccountLinks))
	for i, l := range c.AccountLinks {
		links[i] = AccountLinkDTO{
			ID:        l.ID,
			AccountID: l.AccountID,
			Role:      l.Role,
			IsPrimary: l.IsPrimary,
		}
	}
	return &ContactDTO{
		ID:           c.ID,
		TenantID:     c.TenantID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		FullName:     c.FullName(),
		Title:        c.Title,
		AvatarURL:    c.AvatarURL,
		Birthdate:    c.Birthdate,
		OwnerID:      c.OwnerID,
		TeamID:       c.TeamID,
		Methods:      methods,
		AccountLinks: links,
		Address:      toAddressDTO(c.Address),
		Description:  c.Description,
		CustomValues: c.CustomValues,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// LeadDTO represents lead data returned to clients
type LeadDTO struct {
	ID               uuid.UUID      `json:"id"`
	TenantID         uuid.UUID      `json:"tenant_id"`
	FirstName        string         `json:"first_name,omitempty"`
	LastName         string         `json:"last_name"`
	FullName         string         `json:"full_name"`
	Title            string         `json:"title,omitempty"`
	Company          string         `json:"company,omitempty"`
	Email            string         `json:"email,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	Website          string         `json:"website,omitempty"`
	Source           string         `json:"source,omitempty"`
	Rating           string         `json:"rating,omitempty"`
	Status           string         `json:"status"`
	PipelineID       *uuid.UUID     `json:"pipeline_id,omitempty"`
	StageID          *uuid.UUID     `json:"stage_id,omitempty"`
	OwnerID          *uuid.UUID     `json:"owner_id,omitempty"`
	TeamID           *uuid.UUID     `json:"team_id,omitempty"`
	Description      string         `json:"description,omitempty"`
	CustomValues     map[string]any `json:"custom_values,omitempty"`
	DisqualifyReason string         `json:"disqualify_reason,omitempty"`
	QualifiedAt      *time.Time     `json:"qualified_at,omitempty"`
	ConvertedAt      *time.Time     `json:"converted_at,omitempty"`
	ContactID        *uuid.UUID     `json:"converted_contact_id,omitempty"`
	AccountID        *uuid.UUID     `json:"converted_account_id,omitempty"`
	OpportunityID    *uuid.UUID     `json:"converted_opportunity_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func toLeadDTO(l *crm.Lead) *LeadDTO {
	return &LeadDTO{
		ID:               l.ID,
		TenantID:         l.TenantID,
		FirstName:        l.FirstName,
		LastName:         l.LastName,
		FullName:         l.FullName(),
		Title:            l.Title,
		Company:          l.Company,
		Email:            l.Email,
		Phone:            l.Phone,
		Website:          l.Website,
		Source:           string(l.Source),
		Rating:           string(l.Rating),
		Status:           string(l.Status),
		PipelineID:       l.PipelineID,
		StageID:          l.StageID,
		OwnerID:          l.OwnerID,
		TeamID:           l.TeamID,
		Description:      l.Description,
		CustomValues:     l.CustomValues,
		DisqualifyReason: l.DisqualifyReason,
		QualifiedAt:      l.QualifiedAt,
		ConvertedAt:      l.ConvertedAt,
		ContactID:        l.ConvertedContactID,
		AccountID:        l.ConvertedAccountID,
		OpportunityID:    l.ConvertedOpportunityID,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

// OpportunityDTO represents opportunity data returned to clients
type OpportunityDTO struct {
	ID                uuid.UUID        `json:"id"`
	TenantID          uuid.UUID        `json:"tenant_id"`
	Name              string           `json:"name"`
	AccountID         uuid.UUID        `json:"account_id"`
	PrimaryContactID  *uuid.UUID       `json:"primary_contact_id,omitempty"`
	Amount            decimal.Decimal  `json:"amount"`
	Currency          string           `json:"currency"`
	WeightedAmount    decimal.Decimal  `json:"weighted_amount"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date,omitempty"`
	PipelineID        *uuid.UUID       `json:"pipeline_id,omitempty"`
	StageID           *uuid.UUID       `json:"stage_id,omitempty"`
	Probability       int              `json:"probability"`
	ProbabilityPinned bool             `json:"probability_pinned"`
	Status            string           `json:"status"`
	OwnerID           *uuid.UUID       `json:"owner_id,omitempty"`
	TeamID            *uuid.UUID       `json:"team_id,omitempty"`
	Source            string           `json:"source,omitempty"`
	NextStep          string           `json:"next_step,omitempty"`
	Description       string           `json:"description,omitempty"`
	CustomValues      map[string]any   `json:"custom_values,omitempty"`
	ClosedAt          *time.Time       `json:"closed_at,omitempty"`
	ClosedBy          *uuid.UUID       `json:"closed_by,omitempty"`
	ActualAmount      *decimal.Decimal `json:"actual_amount,omitempty"`
	LossReason        string           `json:"loss_reason,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func toOpportunityDTO(o *crm.Opportunity) *OpportunityDTO {
	return &OpportunityDTO{
		ID:                o.ID,
		TenantID:          o.TenantID,
		Name:              o.Name,
		AccountID:         o.AccountID,
		PrimaryContactID:  o.PrimaryContactID,
		Amount:            o.Amount,
		Currency:          o.Currency,
		WeightedAmount:    o.WeightedAmount(),
		ExpectedCloseDate: o.ExpectedCloseDate,
		PipelineID:        o.PipelineID,
		StageID:           o.StageID,
		Probability:       o.Probability,
		ProbabilityPinned: o.ProbabilityPinned,
		Status:            string(o.Status),
		OwnerID:           o.OwnerID,
		TeamID:            o.TeamID,
		Source:            string(o.Source),
		NextStep:          o.NextStep,
		Description:       o.Description,
		CustomValues:      o.CustomValues,
		ClosedAt:          o.ClosedAt,
		ClosedBy:          o.ClosedBy,
		ActualAmount:      o.ActualAmount,
		LossReason:        o.LossReason,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// StageDTO represents one pipeline stage
type StageDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	SortOrder   int       `json:"sort_order"`
	Probability int       `json:"probability"`
	IsWon       bool      `json:"is_won"`
	IsLost      bool      `json:"is_lost"`
}

// PipelineDTO represents pipeline data returned to clients
type PipelineDTO struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	IsDefault  bool       `json:"is_default"`
	IsArchived bool       `json:"is_archived"`
	Stages     []StageDTO `json:"stages"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toPipelineDTO(p *crm.Pipeline) *PipelineDTO {
	stages := make([]StageDTO, len(p.Stages))
	for i, st := range p.Stages {
		stages[i] = StageDTO{
			ID:          st.ID,
			Name:        st.Name,
			SortOrder:   st.SortOrder,
			Probability: st.Probability,
			IsWon:       st.IsWon,
			IsLost:      st.IsLost,
		}
	}
	return &PipelineDTO{
		ID:         p.ID,
		TenantID:   p.TenantID,
		Name:       p.Name,
		Type:       string(p.Type),
		IsDefault:  p.IsDefault,
		IsArchived: p.IsArchived,
		Stages:     stages,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
