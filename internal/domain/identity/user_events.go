package identity

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeUser = "User"

// Event type constants
const (
	EventTypeUserCreated       = "UserCreated"
	EventTypeUserStatusChanged = "UserStatusChanged"
	EventTypeUserLocked        = "UserLocked"
	EventTypeUserRolesAssigned = "UserRolesAssigned"
	EventTypeUserDeleted       = "UserDeleted"
)

// UserCreatedEvent is published when a new user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string     `json:"username"`
	Status   UserStatus `json:"status"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.TenantID),
		Username:        user.Username,
		Status:          user.Status,
	}
}

// UserStatusChangedEvent is published when a user's status changes
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	Username  string     `json:"username"`
	OldStatus UserStatus `json:"old_status"`
	NewStatus UserStatus `json:"new_status"`
}

// NewUserStatusChangedEvent creates a new UserStatusChangedEvent
func NewUserStatusChangedEvent(user *User, oldStatus, newStatus UserStatus) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserStatusChanged, AggregateTypeUser, user.ID, user.TenantID),
		Username:        user.Username,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// OldValues implements shared.ChangeCarrier
func (e *UserStatusChangedEvent) OldValues() map[string]any {
	return map[string]any{"status": string(e.OldStatus)}
}

// NewValues implements shared.ChangeCarrier
func (e *UserStatusChangedEvent) NewValues() map[string]any {
	return map[string]any{"status": string(e.NewStatus)}
}

// UserLockedEvent is published when a user account is locked
type UserLockedEvent struct {
	shared.BaseDomainEvent
	Username       string `json:"username"`
	FailedAttempts int    `json:"failed_attempts"`
}

// NewUserLockedEvent creates a new UserLockedEvent
func NewUserLockedEvent(user *User) *UserLockedEvent {
	return &UserLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserLocked, AggregateTypeUser, user.ID, user.TenantID),
		Username:        user.Username,
		FailedAttempts:  user.FailedAttempts,
	}
}

// UserRolesAssignedEvent is published when a user's roles are replaced
type UserRolesAssignedEvent struct {
	shared.BaseDomainEvent
	Username string      `json:"username"`
	RoleIDs  []uuid.UUID `json:"role_ids"`
}

// NewUserRolesAssignedEvent creates a new UserRolesAssignedEvent
func NewUserRolesAssignedEvent(user *User) *UserRolesAssignedEvent {
	return &UserRolesAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRolesAssigned, AggregateTypeUser, user.ID, user.TenantID),
		Username:        user.Username,
		RoleIDs:         user.RoleIDs,
	}
}

// UserDeletedEvent is published when a user is deleted
type UserDeletedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserDeletedEvent creates a new UserDeletedEvent
func NewUserDeletedEvent(user *User) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeleted, AggregateTypeUser, user.ID, user.TenantID),
		Username:        user.Username,
	}
}
