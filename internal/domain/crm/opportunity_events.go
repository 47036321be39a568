package crm

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOpportunity = "Opportunity"

// Event type constants
const (
	EventTypeOpportunityCreated      = "OpportunityCreated"
	EventTypeOpportunityUpdated      = "OpportunityUpdated"
	EventTypeOpportunityAssigned     = "OpportunityAssigned"
	EventTypeOpportunityStageChanged = "OpportunityStageChanged"
	EventTypeOpportunityClosed       = "OpportunityClosed"
	EventTypeOpportunityReopened     = "OpportunityReopened"
	EventTypeOpportunityDeleted      = "OpportunityDeleted"
)

// OpportunityCreatedEvent is published when a new opportunity is created
type OpportunityCreatedEvent struct {
	shared.BaseDomainEvent
	Name      string          `json:"name"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// NewOpportunityCreatedEvent creates a new OpportunityCreatedEvent
func NewOpportunityCreatedEvent(opp *Opportunity) *OpportunityCreatedEvent {
	return &OpportunityCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityCreated, AggregateTypeOpportunity, opp.ID, opp.TenantID),
		Name:            opp.Name,
		AccountID:       opp.AccountID,
		Amount:          opp.Amount,
		Currency:        opp.Currency,
	}
}

// OpportunityUpdatedEvent is published when an opportunity is updated
type OpportunityUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewOpportunityUpdatedEvent creates a new OpportunityUpdatedEvent
func NewOpportunityUpdatedEvent(opp *Opportunity) *OpportunityUpdatedEvent {
	return &OpportunityUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityUpdated, AggregateTypeOpportunity, opp.ID, opp.TenantID),
		Name:            opp.Name,
	}
}

// OpportunityAssignedEvent is published when an opportunity's owner or team changes
type OpportunityAssignedEvent struct {
	shared.BaseDomainEvent
	Name    string     `json:"name"`
	OwnerID *uuid.UUID `json:"owner_id,omitempty"`
	TeamID  *uuid.UUID `json:"team_id,omitempty"`
}

// NewOpportunityAssignedEvent creates a new OpportunityAssignedEvent
func NewOpportunityAssignedEvent(opp *Opportunity) *OpportunityAssignedEvent {
	return &OpportunityAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityAssigned, AggregateTypeOpportunity, opp.ID, opp.TenantID),
		Name:            opp.Name,
		OwnerID:         opp.OwnerID,
		TeamID:          opp.TeamID,
	}
}

// OpportunityStageChangedEvent is published when an opportunity moves between stages
type OpportunityStageChangedEvent struct {
	shared.BaseDomainEvent
	Name        string     `json:"name"`
	OldStageID  *uuid.UUID `json:"old_stage_id,omitempty"`
	NewStageID  *uuid.UUID `json:"new_stage_id,omitempty"`
	Probability int        `json:"probability"`
}

// NewOpportunityStageChangedEvent creates a new OpportunityStageChangedEvent
func NewOpportunityStageChangedEvent(opp *Opportunity, oldStageID, newStageID *uuid.UUID) *OpportunityStageChangedEvent {
	return &OpportunityStageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityStageChanged, AggregateTypeOpportunity, opp.ID, opp.TenantID),
		Name:            opp.Name,
		OldStageID:      oldStageID,
		NewStageID:      newStageID,
		Probability:     opp.Probability,
	}
}

// OldValues implements shared.ChangeCarrier
func (e *OpportunityStageChangedEvent) OldValues() map[string]any {
	if e.OldStageID == nil {
		return map[string]any{"stage_id": nil}
	}
	return map[string]any{"stage_id": e.OldStageID.String()}
}

// NewValues implements shared.ChangeCarrier
func (e *OpportunityStageChangedEvent) NewValues() map[string]any {
	if e.NewStageID == nil {
		return map[string]any{"stage_id": nil}
	}
	return map[string]any{"stage_id": e.NewStageID.String()}
}

// OpportunityClosedEvent is published when an opportunity is won or lost
type OpportunityClosedEvent struct {
	shared.BaseDomainEvent
	Name         string            `json:"name"`
	OldStatus    OpportunityStatus `json:"old_status"`
	NewStatus    OpportunityStatus `json:"new_status"`
	ActualAmount *decimal.Decimal  `json:"actual_amount,omitempty"`
	LossReason   string            `json:"loss_reason,omitempty"`
}

// NewOpportunityClosedEvent creates a new OpportunityClosedEvent
func NewOpportunityClosedEvent(opp *Opportunity, oldStatus, newStatus OpportunityStatus) *OpportunityClosedEvent {
	return &OpportunityClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityClosed, AggregateTypeOpportunity, opp.ID, opp.TenantID),
		Name:            opp.Name,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
		ActualAmount:    opp.ActualAmount,
		LossReason:      opp.LossReason,
	}
}

// OldValues implements shared.ChangeCarrier
func (e *OpportunityClosedEvent) OldValues() map[string]any {
	return map[string]any{"status": string(e.OldStatus)}
}

// NewValues implements shared.ChangeCarrier
func (e *OpportunityClosedEvent) NewValues() map[string]any {
	return map[string]any{"status": string(e.NewStatus)}
}

// OpportunityReopenedEvent is published when a closed opportunity is reopened
type OpportunityReopenedEvent struct {
	shared.BaseDomainEvent
	Name      string            `json:"name"`
	OldStatus OpportunityStatus `json:"old_status"`
}

// NewOpportunityReopenedEvent creates a new OpportunityReopenedEvent
func NewOpportunityReopenedEvent(opp *Opportunity, oldStatus OpportunityStatus) *OpportunityReopenedEvent {
	return &OpportunityReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityReopened, AggregateTypeOpportunity, opp.ID, opp.TenantID),
		Name:            opp.Name,
		OldStatus:       oldStatus,
	}
}

// OpportunityDeletedEvent is published when an opportunity is deleted
type OpportunityDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewOpportunityDeletedEvent creates a new OpportunityDeletedEvent
func NewOpportunityDeletedEvent(opp *Opportunity) *OpportunityDeletedEvent {
	return &OpportunityDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityDeleted, AggregateTypeOpportunity, opp.ID, opp.TenantID),
		Name:            opp.Name,
	}
}
