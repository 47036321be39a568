package crm

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadStatus represents the lifecycle status of a lead
type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusWorking      LeadStatus = "working"
	LeadStatusQualified    LeadStatus = "qualified"
	LeadStatusConverted    LeadStatus = "converted"    // Terminal
	LeadStatusDisqualified LeadStatus = "disqualified" // Terminal unless reopened
)

// LeadSource represents where a lead came from
type LeadSource string

const (
	LeadSourceWeb         LeadSource = "web"
	LeadSourceReferral    LeadSource = "referral"
	LeadSourceEmail       LeadSource = "email"
	LeadSourcePhone       LeadSource = "phone"
	LeadSourceTradeShow   LeadSource = "trade_show"
	LeadSourceSocial      LeadSource = "social"
	LeadSourcePartner     LeadSource = "partner"
	LeadSourceAdvertising LeadSource = "advertising"
	LeadSourceOther       LeadSource = "other"
)

// LeadRating represents the qualification temperature of a lead
type LeadRating string

const (
	LeadRatingHot  LeadRating = "hot"
	LeadRatingWarm LeadRating = "warm"
	LeadRatingCold LeadRating = "cold"
)

// Lead represents a prospective customer that has not yet been converted
// into an account/contact/opportunity.
// It is the aggregate root for lead-related operations
type Lead struct {
	shared.TenantAggregateRoot
	FirstName    string
	LastName     string
	Title        string
	Company      string
	Email        string
	Phone        string
	Website      string
	Source       LeadSource
	Rating       LeadRating
	Status       LeadStatus
	PipelineID   *uuid.UUID
	StageID      *uuid.UUID
	OwnerID      *uuid.UUID
	TeamID       *uuid.UUID
	Description  string
	CustomValues map[string]any // Keyed by custom field key, normalized before save

	DisqualifyReason string
	QualifiedAt      *time.Time
	ConvertedAt      *time.Time

	// Set on conversion, immutable afterwards
	ConvertedContactID     *uuid.UUID
	ConvertedAccountID     *uuid.UUID
	ConvertedOpportunityID *uuid.UUID
}

// NewLead creates a new lead with required fields
func NewLead(tenantID uuid.UUID, lastName string) (*Lead, error) {
	if err := validateLeadLastName(lastName); err != nil {
		return nil, err
	}

	lead := &Lead{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LastName:            strings.TrimSpace(lastName),
		Status:              LeadStatusNew,
		Source:              LeadSourceOther,
		Rating:              LeadRatingWarm,
		CustomValues:        make(map[string]any),
	}

	lead.AddDomainEvent(NewLeadCreatedEvent(lead))

	return lead, nil
}

// FullName returns the lead's display name
func (l *Lead) FullName() string {
	if l.FirstName == "" {
		return l.LastName
	}
	return l.FirstName + " " + l.LastName
}

// Update updates the lead's editable fields. Converted leads are immutable.
func (l *Lead) Update(firstName, lastName, title, company, email, phone, website, description string) error {
	if err := l.ensureMutable(); err != nil {
		return err
	}
	if err := validateLeadLastName(lastName); err != nil {
		return err
	}
	if email != "" {
		if err := validateCRMEmail(email); err != nil {
			return err
		}
	}

	l.FirstName = strings.TrimSpace(firstName)
	l.LastName = strings.TrimSpace(lastName)
	l.Title = strings.TrimSpace(title)
	l.Company = strings.TrimSpace(company)
	l.Email = strings.ToLower(strings.TrimSpace(email))
	l.Phone = strings.TrimSpace(phone)
	l.Website = strings.TrimSpace(website)
	l.Description = description
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLeadUpdatedEvent(l))

	return nil
}

// SetSource sets the lead source
func (l *Lead) SetSource(source LeadSource) error {
	if err := l.ensureMutable(); err != nil {
		return err
	}
	if err := validateLeadSource(source); err != nil {
		return err
	}

	l.Source = source
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// SetRating sets the lead rating
func (l *Lead) SetRating(rating LeadRating) error {
	if err := l.ensureMutable(); err != nil {
		return err
	}
	if err := validateLeadRating(rating); err != nil {
		return err
	}

	l.Rating = rating
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// AssignOwner assigns the lead to an owner and optionally a team
func (l *Lead) AssignOwner(ownerID, teamID *uuid.UUID) error {
	if err := l.ensureMutable(); err != nil {
		return err
	}

	l.OwnerID = ownerID
	l.TeamID = teamID
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLeadAssignedEvent(l))

	return nil
}

// SetPipelineStage places the lead on a pipeline stage. The service
// verifies that the stage belongs to the pipeline and that the pipeline
// is of type lead.
func (l *Lead) SetPipelineStage(pipelineID, stageID uuid.UUID) error {
	if err := l.ensureMutable(); err != nil {
		return err
	}

	oldStage := l.StageID
	l.PipelineID = &pipelineID
	l.StageID = &stageID
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLeadStageChangedEvent(l, oldStage, &stageID))

	return nil
}

// SetCustomValues replaces the lead's custom field values. Values are
// expected to be normalized against field metadata before this call.
func (l *Lead) SetCustomValues(values map[string]any) error {
	if err := l.ensureMutable(); err != nil {
		return err
	}

	if values == nil {
		values = make(map[string]any)
	}
	l.CustomValues = values
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// StartWorking moves a new lead into the working status
func (l *Lead) StartWorking() error {
	if l.Status != LeadStatusNew {
		return shared.NewDomainError("INVALID_LEAD_TRANSITION", "Only new leads can be moved to working")
	}

	l.changeStatus(LeadStatusWorking)
	return nil
}

// Qualify marks a working lead as qualified
func (l *Lead) Qualify() error {
	switch l.Status {
	case LeadStatusNew, LeadStatusWorking:
		// allowed
	default:
		return shared.NewDomainError("INVALID_LEAD_TRANSITION", "Only new or working leads can be qualified")
	}

	now := time.Now()
	l.QualifiedAt = &now
	l.changeStatus(LeadStatusQualified)
	return nil
}

// Disqualify marks the lead as disqualified with a reason. Allowed from
// any non-terminal status.
func (l *Lead) Disqualify(reason string) error {
	switch l.Status {
	case LeadStatusConverted:
		return shared.NewDomainError("LEAD_CONVERTED", "A converted lead cannot be disqualified")
	case LeadStatusDisqualified:
		return shared.NewDomainError("ALREADY_DISQUALIFIED", "Lead is already disqualified")
	}

	l.DisqualifyReason = strings.TrimSpace(reason)
	l.changeStatus(LeadStatusDisqualified)
	return nil
}

// Reopen returns a disqualified lead to the working status
func (l *Lead) Reopen() error {
	if l.Status != LeadStatusDisqualified {
		return shared.NewDomainError("INVALID_LEAD_TRANSITION", "Only disqualified leads can be reopened")
	}

	l.DisqualifyReason = ""
	l.changeStatus(LeadStatusWorking)
	return nil
}

// ConversionResult carries the record IDs produced by a lead conversion
type ConversionResult struct {
	ContactID     uuid.UUID
	AccountID     *uuid.UUID
	OpportunityID *uuid.UUID
}

// MarkConverted finalizes the lead after conversion. Only qualified leads
// can be converted; the lead becomes immutable afterwards.
func (l *Lead) MarkConverted(result ConversionResult) error {
	if l.Status == LeadStatusConverted {
		return shared.NewDomainError("LEAD_CONVERTED", "Lead has already been converted")
	}
	if l.Status != LeadStatusQualified {
		return shared.NewDomainError("INVALID_LEAD_TRANSITION", "Only qualified leads can be converted")
	}
	if result.ContactID == uuid.Nil {
		return shared.NewDomainError("INVALID_CONVERSION", "Conversion must produce a contact")
	}

	now := time.Now()
	l.ConvertedAt = &now
	l.ConvertedContactID = &result.ContactID
	l.ConvertedAccountID = result.AccountID
	l.ConvertedOpportunityID = result.OpportunityID
	l.changeStatus(LeadStatusConverted)

	l.AddDomainEvent(NewLeadConvertedEvent(l))

	return nil
}

// IsConverted returns true if the lead has been converted
func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}

// IsTerminal returns true if the lead is in a terminal status
func (l *Lead) IsTerminal() bool {
	return l.Status == LeadStatusConverted || l.Status == LeadStatusDisqualified
}

func (l *Lead) ensureMutable() error {
	switch l.Status {
	case LeadStatusConverted:
		return shared.NewDomainError("LEAD_CONVERTED", "A converted lead cannot be modified")
	case LeadStatusDisqualified:
		return shared.NewDomainError("LEAD_DISQUALIFIED", "A disqualified lead must be reopened before editing")
	}
	return nil
}

func (l *Lead) changeStatus(newStatus LeadStatus) {
	oldStatus := l.Status
	l.Status = newStatus
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLeadStatusChangedEvent(l, oldStatus, newStatus))
}

// Validation functions

func validateLeadLastName(lastName string) error {
	lastName = strings.TrimSpace(lastName)
	if lastName == "" {
		return shared.NewDomainError("INVALID_LEAD_NAME", "Lead last name cannot be empty")
	}
	if len(lastName) > 200 {
		return shared.NewDomainError("INVALID_LEAD_NAME", "Lead last name cannot exceed 200 characters")
	}
	return nil
}

func validateLeadSource(source LeadSource) error {
	switch source {
	case LeadSourceWeb, LeadSourceReferral, LeadSourceEmail, LeadSourcePhone,
		LeadSourceTradeShow, LeadSourceSocial, LeadSourcePartner,
		LeadSourceAdvertising, LeadSourceOther:
		return nil
	default:
		return shared.NewDomainError("INVALID_LEAD_SOURCE", "Invalid lead source")
	}
}

func validateLeadRating(rating LeadRating) error {
	switch rating {
	case LeadRatingHot, LeadRatingWarm, LeadRatingCold:
		return nil
	default:
		return shared.NewDomainError("INVALID_LEAD_RATING", "Invalid lead rating")
	}
}
