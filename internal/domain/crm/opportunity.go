package crm

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpportunityStatus represents the lifecycle status of an opportunity
type OpportunityStatus string

const (
	OpportunityStatusOpen OpportunityStatus = "open"
	OpportunityStatusWon  OpportunityStatus = "won"
	OpportunityStatusLost OpportunityStatus = "lost"
)

// Opportunity represents a potential deal with an account.
// It is the aggregate root for opportunity-related operations
type Opportunity struct {
	shared.TenantAggregateRoot
	Name              string
	AccountID         uuid.UUID
	PrimaryContactID  *uuid.UUID
	Amount            decimal.Decimal
	Currency          string
	ExpectedCloseDate *time.Time
	PipelineID        *uuid.UUID
	StageID           *uuid.UUID
	Probability       int // 0-100, follows the stage unless manually overridden
	ProbabilityPinned bool
	Status            OpportunityStatus
	OwnerID           *uuid.UUID
	TeamID            *uuid.UUID
	Source            LeadSource
	NextStep          string
	Description       string
	CustomValues      map[string]any

	// Close bookkeeping
	ClosedAt     *time.Time
	ClosedBy     *uuid.UUID
	ActualAmount *decimal.Decimal // Final amount recorded on close-won
	LossReason   string           // Retained across reopen for history
}

// NewOpportunity creates a new opportunity with required fields
func NewOpportunity(tenantID uuid.UUID, name string, accountID uuid.UUID) (*Opportunity, error) {
	if err := validateOpportunityName(name); err != nil {
		return nil, err
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Opportunity must reference an account")
	}

	opp := &Opportunity{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		AccountID:           accountID,
		Amount:              decimal.Zero,
		Currency:            "USD",
		Status:              OpportunityStatusOpen,
		Source:              LeadSourceOther,
		CustomValues:        make(map[string]any),
	}

	opp.AddDomainEvent(NewOpportunityCreatedEvent(opp))

	return opp, nil
}

// Update updates the opportunity's editable fields. Closed opportunities
// must be reopened first.
func (o *Opportunity) Update(name, description, nextStep string) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	if err := validateOpportunityName(name); err != nil {
		return err
	}

	o.Name = strings.TrimSpace(name)
	o.Description = description
	o.NextStep = strings.TrimSpace(nextStep)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOpportunityUpdatedEvent(o))

	return nil
}

// SetAmount sets the expected deal amount and currency
func (o *Opportunity) SetAmount(amount decimal.Decimal, currency string) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Opportunity amount cannot be negative")
	}
	if err := validateCurrency(currency); err != nil {
		return err
	}

	o.Amount = amount
	o.Currency = strings.ToUpper(strings.TrimSpace(currency))
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetExpectedCloseDate sets the expected close date
func (o *Opportunity) SetExpectedCloseDate(date *time.Time) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	o.ExpectedCloseDate = date
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetPrimaryContact sets the primary contact reference
func (o *Opportunity) SetPrimaryContact(contactID *uuid.UUID) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	o.PrimaryContactID = contactID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// AssignOwner assigns the opportunity to an owner and optionally a team
func (o *Opportunity) AssignOwner(ownerID, teamID *uuid.UUID) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	o.OwnerID = ownerID
	o.TeamID = teamID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOpportunityAssignedEvent(o))

	return nil
}

// SetSource sets the opportunity source
func (o *Opportunity) SetSource(source LeadSource) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	if err := validateLeadSource(source); err != nil {
		return err
	}

	o.Source = source
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetCustomValues replaces the opportunity's custom field values. Values
// are expected to be normalized against field metadata before this call.
func (o *Opportunity) SetCustomValues(values map[string]any) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	if values == nil {
		values = make(map[string]any)
	}
	o.CustomValues = values
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// ChangeStage moves the opportunity to another stage of its pipeline.
// The probability follows the stage's weight unless it has been pinned
// manually. Stage membership is verified by the service.
func (o *Opportunity) ChangeStage(pipelineID, stageID uuid.UUID, stageProbability int) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	if stageProbability < 0 || stageProbability > 100 {
		return shared.NewDomainError("INVALID_PROBABILITY", "Stage probability must be between 0 and 100")
	}

	oldStage := o.StageID
	o.PipelineID = &pipelineID
	o.StageID = &stageID
	if !o.ProbabilityPinned {
		o.Probability = stageProbability
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOpportunityStageChangedEvent(o, oldStage, &stageID))

	return nil
}

// PinProbability manually overrides the probability. A pinned probability
// no longer follows stage changes.
func (o *Opportunity) PinProbability(probability int) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	if probability < 0 || probability > 100 {
		return shared.NewDomainError("INVALID_PROBABILITY", "Probability must be between 0 and 100")
	}

	o.Probability = probability
	o.ProbabilityPinned = true
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// UnpinProbability lets the probability follow the stage again
func (o *Opportunity) UnpinProbability(stageProbability int) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	o.ProbabilityPinned = false
	o.Probability = stageProbability
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// CloseWon closes the opportunity as won. Records the final amount,
// the close time, who closed it, and forces probability to 100.
func (o *Opportunity) CloseWon(finalAmount decimal.Decimal, wonStageID *uuid.UUID, closedBy *uuid.UUID) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	if finalAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Final amount cannot be negative")
	}

	now := time.Now()
	o.Status = OpportunityStatusWon
	o.ActualAmount = &finalAmount
	o.ClosedAt = &now
	o.ClosedBy = closedBy
	o.Probability = 100
	if wonStageID != nil {
		o.StageID = wonStageID
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOpportunityClosedEvent(o, OpportunityStatusOpen, OpportunityStatusWon))

	return nil
}

// CloseLost closes the opportunity as lost with a reason and forces
// probability to 0.
func (o *Opportunity) CloseLost(reason string, lostStageID *uuid.UUID, closedBy *uuid.UUID) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}

	now := time.Now()
	o.Status = OpportunityStatusLost
	o.LossReason = strings.TrimSpace(reason)
	o.ClosedAt = &now
	o.ClosedBy = closedBy
	o.Probability = 0
	if lostStageID != nil {
		o.StageID = lostStageID
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOpportunityClosedEvent(o, OpportunityStatusOpen, OpportunityStatusLost))

	return nil
}

// Reopen returns a closed opportunity to the open status on the given
// stage. Close bookkeeping fields are cleared except the loss reason,
// which is retained for history.
func (o *Opportunity) Reopen(stageID uuid.UUID, stageProbability int) error {
	if o.Status == OpportunityStatusOpen {
		return shared.NewDomainError("NOT_CLOSED", "Opportunity is not closed")
	}
	if stageProbability < 0 || stageProbability > 100 {
		return shared.NewDomainError("INVALID_PROBABILITY", "Stage probability must be between 0 and 100")
	}

	oldStatus := o.Status
	o.Status = OpportunityStatusOpen
	o.StageID = &stageID
	o.ClosedAt = nil
	o.ClosedBy = nil
	o.ActualAmount = nil
	if !o.ProbabilityPinned {
		o.Probability = stageProbability
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOpportunityReopenedEvent(o, oldStatus))

	return nil
}

// IsOpen returns true if the opportunity is open
func (o *Opportunity) IsOpen() bool {
	return o.Status == OpportunityStatusOpen
}

// IsClosed returns true if the opportunity has been won or lost
func (o *Opportunity) IsClosed() bool {
	return o.Status == OpportunityStatusWon || o.Status == OpportunityStatusLost
}

// WeightedAmount returns amount * probability / 100, used for forecasting
func (o *Opportunity) WeightedAmount() decimal.Decimal {
	return o.Amount.Mul(decimal.NewFromInt(int64(o.Probability))).Div(decimal.NewFromInt(100))
}

func (o *Opportunity) ensureOpen() error {
	if o.Status != OpportunityStatusOpen {
		return shared.NewDomainError("OPPORTUNITY_CLOSED", "A closed opportunity must be reopened before modification")
	}
	return nil
}

// Validation functions

func validateOpportunityName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_OPPORTUNITY_NAME", "Opportunity name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_OPPORTUNITY_NAME", "Opportunity name cannot exceed 200 characters")
	}
	return nil
}

func validateCurrency(currency string) error {
	currency = strings.TrimSpace(currency)
	if len(currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	return nil
}
