package identity

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TeamStatus represents the status of a sales team
type TeamStatus string

const (
	TeamStatusActive   TeamStatus = "active"
	TeamStatusInactive TeamStatus = "inactive"
)

// Team represents a sales team. Leads and opportunities can be assigned
// to a team for routing and data-scope purposes.
// It is an aggregate root for team-related operations
type Team struct {
	shared.TenantAggregateRoot
	Name        string
	Description string
	LeadUserID  *uuid.UUID  // Team lead (User ID)
	MemberIDs   []uuid.UUID // Stored in separate table, loaded by repository
	Status      TeamStatus
	SortOrder   int
}

// TeamMember represents the membership relation between teams and users
type TeamMember struct {
	TeamID    uuid.UUID
	UserID    uuid.UUID
	TenantID  uuid.UUID
	CreatedAt time.Time
}

// NewTeam creates a new team with required fields
func NewTeam(tenantID uuid.UUID, name string) (*Team, error) {
	if err := validateTeamName(name); err != nil {
		return nil, err
	}

	team := &Team{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Status:              TeamStatusActive,
		MemberIDs:           make([]uuid.UUID, 0),
	}

	team.AddDomainEvent(NewTeamCreatedEvent(team))

	return team, nil
}

// SetName sets the team name
func (t *Team) SetName(name string) error {
	if err := validateTeamName(name); err != nil {
		return err
	}

	t.Name = strings.TrimSpace(name)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetDescription sets the team description
func (t *Team) SetDescription(description string) {
	t.Description = description
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// SetSortOrder sets the display order
func (t *Team) SetSortOrder(order int) {
	t.SortOrder = order
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// SetLead sets the team lead. The lead is added to the member list if
// not already present.
func (t *Team) SetLead(userID *uuid.UUID) {
	t.LeadUserID = userID
	if userID != nil && !t.HasMember(*userID) {
		t.MemberIDs = append(t.MemberIDs, *userID)
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// AddMember adds a user to the team
func (t *Team) AddMember(userID uuid.UUID) error {
	if t.HasMember(userID) {
		return shared.NewDomainError("ALREADY_MEMBER", "User is already a member of this team")
	}

	t.MemberIDs = append(t.MemberIDs, userID)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTeamMembersChangedEvent(t))

	return nil
}

// RemoveMember removes a user from the team. The team lead cannot be
// removed without first reassigning the lead.
func (t *Team) RemoveMember(userID uuid.UUID) error {
	if t.LeadUserID != nil && *t.LeadUserID == userID {
		return shared.NewDomainError("MEMBER_IS_LEAD", "Reassign the team lead before removing this member")
	}

	found := false
	newMembers := make([]uuid.UUID, 0, len(t.MemberIDs))
	for _, id := range t.MemberIDs {
		if id != userID {
			newMembers = append(newMembers, id)
		} else {
			found = true
		}
	}

	if !found {
		return shared.NewDomainError("NOT_MEMBER", "User is not a member of this team")
	}

	t.MemberIDs = newMembers
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTeamMembersChangedEvent(t))

	return nil
}

// SetMembers replaces the team's member list
func (t *Team) SetMembers(memberIDs []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(memberIDs))
	unique := make([]uuid.UUID, 0, len(memberIDs))
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	if t.LeadUserID != nil && !seen[*t.LeadUserID] {
		unique = append(unique, *t.LeadUserID)
	}

	t.MemberIDs = unique
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTeamMembersChangedEvent(t))
}

// HasMember checks if a user is a member of the team
func (t *Team) HasMember(userID uuid.UUID) bool {
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Activate activates the team
func (t *Team) Activate() error {
	if t.Status == TeamStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Team is already active")
	}

	t.Status = TeamStatusActive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Deactivate deactivates the team
func (t *Team) Deactivate() error {
	if t.Status == TeamStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Team is already inactive")
	}

	t.Status = TeamStatusInactive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// IsActive returns true if the team is active
func (t *Team) IsActive() bool {
	return t.Status == TeamStatusActive
}

// Update updates the team's basic information
func (t *Team) Update(name, description string) error {
	if err := t.SetName(name); err != nil {
		return err
	}
	t.SetDescription(description)

	t.AddDomainEvent(NewTeamUpdatedEvent(t))

	return nil
}

func validateTeamName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_TEAM_NAME", "Team name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_TEAM_NAME", "Team name cannot exceed 200 characters")
	}
	return nil
}
