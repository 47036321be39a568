package crm

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeContact = "Contact"

// Event type constants
const (
	EventTypeContactCreated       = "ContactCreated"
	EventTypeContactUpdated       = "ContactUpdated"
	EventTypeContactAccountLinked = "ContactAccountLinked"
	EventTypeContactDeleted       = "ContactDeleted"
)

// ContactCreatedEvent is published when a new contact is created
type ContactCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewContactCreatedEvent creates a new ContactCreatedEvent
func NewContactCreatedEvent(contact *Contact) *ContactCreatedEvent {
	return &ContactCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactCreated, AggregateTypeContact, contact.ID, contact.TenantID),
		Name:            contact.FullName(),
	}
}

// ContactUpdatedEvent is published when a contact is updated
type ContactUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewContactUpdatedEvent creates a new ContactUpdatedEvent
func NewContactUpdatedEvent(contact *Contact) *ContactUpdatedEvent {
	return &ContactUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactUpdated, AggregateTypeContact, contact.ID, contact.TenantID),
		Name:            contact.FullName(),
	}
}

// ContactAccountLinkedEvent is published when a contact is linked to an account
type ContactAccountLinkedEvent struct {
	shared.BaseDomainEvent
	Name      string    `json:"name"`
	AccountID uuid.UUID `json:"account_id"`
}

// NewContactAccountLinkedEvent creates a new ContactAccountLinkedEvent
func NewContactAccountLinkedEvent(contact *Contact, accountID uuid.UUID) *ContactAccountLinkedEvent {
	return &ContactAccountLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactAccountLinked, AggregateTypeContact, contact.ID, contact.TenantID),
		Name:            contact.FullName(),
		AccountID:       accountID,
	}
}

// ContactDeletedEvent is published when a contact is deleted
type ContactDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewContactDeletedEvent creates a new ContactDeletedEvent
func NewContactDeletedEvent(contact *Contact) *ContactDeletedEvent {
	return &ContactDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactDeleted, AggregateTypeContact, contact.ID, contact.TenantID),
		Name:            contact.FullName(),
	}
}
