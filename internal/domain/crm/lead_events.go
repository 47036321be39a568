package crm

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeLead = "Lead"

// Event type constants
const (
	EventTypeLeadCreated       = "LeadCreated"
	EventTypeLeadUpdated       = "LeadUpdated"
	EventTypeLeadAssigned      = "LeadAssigned"
	EventTypeLeadStageChanged  = "LeadStageChanged"
	EventTypeLeadStatusChanged = "LeadStatusChanged"
	EventTypeLeadConverted     = "LeadConverted"
	EventTypeLeadDeleted       = "LeadDeleted"
)

// LeadCreatedEvent is published when a new lead is created
type LeadCreatedEvent struct {
	shared.BaseDomainEvent
	Name    string     `json:"name"`
	Company string     `json:"company,omitempty"`
	Source  LeadSource `json:"source"`
}

// NewLeadCreatedEvent creates a new LeadCreatedEvent
func NewLeadCreatedEvent(lead *Lead) *LeadCreatedEvent {
	return &LeadCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadCreated, AggregateTypeLead, lead.ID, lead.TenantID),
		Name:            lead.FullName(),
		Company:         lead.Company,
		Source:          lead.Source,
	}
}

// LeadUpdatedEvent is published when a lead is updated
type LeadUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewLeadUpdatedEvent creates a new LeadUpdatedEvent
func NewLeadUpdatedEvent(lead *Lead) *LeadUpdatedEvent {
	return &LeadUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadUpdated, AggregateTypeLead, lead.ID, lead.TenantID),
		Name:            lead.FullName(),
	}
}

// LeadAssignedEvent is published when a lead's owner or team changes
type LeadAssignedEvent struct {
	shared.BaseDomainEvent
	Name    string     `json:"name"`
	OwnerID *uuid.UUID `json:"owner_id,omitempty"`
	TeamID  *uuid.UUID `json:"team_id,omitempty"`
}

// NewLeadAssignedEvent creates a new LeadAssignedEvent
func NewLeadAssignedEvent(lead *Lead) *LeadAssignedEvent {
	return &LeadAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadAssigned, AggregateTypeLead, lead.ID, lead.TenantID),
		Name:            lead.FullName(),
		OwnerID:         lead.OwnerID,
		TeamID:          lead.TeamID,
	}
}

// LeadStageChangedEvent is published when a lead moves between pipeline stages
type LeadStageChangedEvent struct {
	shared.BaseDomainEvent
	Name       string     `json:"name"`
	OldStageID *uuid.UUID `json:"old_stage_id,omitempty"`
	NewStageID *uuid.UUID `json:"new_stage_id,omitempty"`
}

// NewLeadStageChangedEvent creates a new LeadStageChangedEvent
func NewLeadStageChangedEvent(lead *Lead, oldStageID, newStageID *uuid.UUID) *LeadStageChangedEvent {
	return &LeadStageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadStageChanged, AggregateTypeLead, lead.ID, lead.TenantID),
		Name:            lead.FullName(),
		OldStageID:      oldStageID,
		NewStageID:      newStageID,
	}
}

// OldValues implements shared.ChangeCarrier
func (e *LeadStageChangedEvent) OldValues() map[string]any {
	if e.OldStageID == nil {
		return map[string]any{"stage_id": nil}
	}
	return map[string]any{"stage_id": e.OldStageID.String()}
}

// NewValues implements shared.ChangeCarrier
func (e *LeadStageChangedEvent) NewValues() map[string]any {
	if e.NewStageID == nil {
		return map[string]any{"stage_id": nil}
	}
	return map[string]any{"stage_id": e.NewStageID.String()}
}

// LeadStatusChangedEvent is published when a lead's lifecycle status changes
type LeadStatusChangedEvent struct {
	shared.BaseDomainEvent
	Name      string     `json:"name"`
	OldStatus LeadStatus `json:"old_status"`
	NewStatus LeadStatus `json:"new_status"`
}

// NewLeadStatusChangedEvent creates a new LeadStatusChangedEvent
func NewLeadStatusChangedEvent(lead *Lead, oldStatus, newStatus LeadStatus) *LeadStatusChangedEvent {
	return &LeadStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadStatusChanged, AggregateTypeLead, lead.ID, lead.TenantID),
		Name:            lead.FullName(),
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// OldValues implements shared.ChangeCarrier
func (e *LeadStatusChangedEvent) OldValues() map[string]any {
	return map[string]any{"status": string(e.OldStatus)}
}

// NewValues implements shared.ChangeCarrier
func (e *LeadStatusChangedEvent) NewValues() map[string]any {
	return map[string]any{"status": string(e.NewStatus)}
}

// LeadConvertedEvent is published when a lead is converted
type LeadConvertedEvent struct {
	shared.BaseDomainEvent
	Name          string     `json:"name"`
	ContactID     *uuid.UUID `json:"contact_id,omitempty"`
	AccountID     *uuid.UUID `json:"account_id,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
}

// NewLeadConvertedEvent creates a new LeadConvertedEvent
func NewLeadConvertedEvent(lead *Lead) *LeadConvertedEvent {
	return &LeadConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadConverted, AggregateTypeLead, lead.ID, lead.TenantID),
		Name:            lead.FullName(),
		ContactID:       lead.ConvertedContactID,
		AccountID:       lead.ConvertedAccountID,
		OpportunityID:   lead.ConvertedOpportunityID,
	}
}

// LeadDeletedEvent is published when a lead is deleted
type LeadDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewLeadDeletedEvent creates a new LeadDeletedEvent
func NewLeadDeletedEvent(lead *Lead) *LeadDeletedEvent {
	return &LeadDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadDeleted, AggregateTypeLead, lead.ID, lead.TenantID),
		Name:            lead.FullName(),
	}
}
