package identity

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeTeam = "Team"

// Event type constants
const (
	EventTypeTeamCreated        = "TeamCreated"
	EventTypeTeamUpdated        = "TeamUpdated"
	EventTypeTeamMembersChanged = "TeamMembersChanged"
	EventTypeTeamDeleted        = "TeamDeleted"
)

// TeamCreatedEvent is published when a new team is created
type TeamCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewTeamCreatedEvent creates a new TeamCreatedEvent
func NewTeamCreatedEvent(team *Team) *TeamCreatedEvent {
	return &TeamCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeamCreated, AggregateTypeTeam, team.ID, team.TenantID),
		Name:            team.Name,
	}
}

// TeamUpdatedEvent is published when a team is updated
type TeamUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewTeamUpdatedEvent creates a new TeamUpdatedEvent
func NewTeamUpdatedEvent(team *Team) *TeamUpdatedEvent {
	return &TeamUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeamUpdated, AggregateTypeTeam, team.ID, team.TenantID),
		Name:            team.Name,
	}
}

// TeamMembersChangedEvent is published when a team's membership changes
type TeamMembersChangedEvent struct {
	shared.BaseDomainEvent
	Name      string      `json:"name"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// NewTeamMembersChangedEvent creates a new TeamMembersChangedEvent
func NewTeamMembersChangedEvent(team *Team) *TeamMembersChangedEvent {
	return &TeamMembersChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeamMembersChanged, AggregateTypeTeam, team.ID, team.TenantID),
		Name:            team.Name,
		MemberIDs:       team.MemberIDs,
	}
}

// TeamDeletedEvent is published when a team is deleted
type TeamDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewTeamDeletedEvent creates a new TeamDeletedEvent
func NewTeamDeletedEvent(team *Team) *TeamDeletedEvent {
	return &TeamDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeamDeleted, AggregateTypeTeam, team.ID, team.TenantID),
		Name:            team.Name,
	}
}
