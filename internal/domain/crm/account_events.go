package crm

import (
	"github.com/crm/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeAccount = "Account"

// Event type constants
const (
	EventTypeAccountCreated = "AccountCreated"
	EventTypeAccountUpdated = "AccountUpdated"
	EventTypeAccountDeleted = "AccountDeleted"
)

// AccountCreatedEvent is published when a new account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, account.ID, account.TenantID),
		Name:            account.Name,
		Industry:        account.Industry,
	}
}

// AccountUpdatedEvent is published when an account is updated
type AccountUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewAccountUpdatedEvent creates a new AccountUpdatedEvent
func NewAccountUpdatedEvent(account *Account) *AccountUpdatedEvent {
	return &AccountUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountUpdated, AggregateTypeAccount, account.ID, account.TenantID),
		Name:            account.Name,
	}
}

// AccountDeletedEvent is published when an account is deleted
type AccountDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewAccountDeletedEvent creates a new AccountDeletedEvent
func NewAccountDeletedEvent(account *Account) *AccountDeletedEvent {
	return &AccountDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountDeleted, AggregateTypeAccount, account.ID, account.TenantID),
		Name:            account.Name,
	}
}
