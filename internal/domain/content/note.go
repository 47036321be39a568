package content

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntityType identifies which kind of record a note or document is
// attached to
type EntityType string

const (
	EntityTypeAccount     EntityType = "account"
	EntityTypeContact     EntityType = "contact"
	EntityTypeLead        EntityType = "lead"
	EntityTypeOpportunity EntityType = "opportunity"
	EntityTypeProduct     EntityType = "product"
	EntityTypeUser        EntityType = "user"
)

// ValidEntityType reports whether the given type is attachable
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityTypeAccount, EntityTypeContact, EntityTypeLead,
		EntityTypeOpportunity, EntityTypeProduct, EntityTypeUser:
		return true
	default:
		return false
	}
}

// Note represents a free-text note attached to a CRM record.
// It is an aggregate root
type Note struct {
	shared.TenantAggregateRoot
	EntityType EntityType
	EntityID   uuid.UUID
	AuthorID   uuid.UUID
	Body       string
	IsPinned   bool
}

// NewNote creates a new note attached to an entity
func NewNote(tenantID uuid.UUID, entityType EntityType, entityID, authorID uuid.UUID, body string) (*Note, error) {
	if !ValidEntityType(entityType) {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unknown entity type for note")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Note must reference an entity")
	}
	if err := validateNoteBody(body); err != nil {
		return nil, err
	}

	note := &Note{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntityType:          entityType,
		EntityID:            entityID,
		AuthorID:            authorID,
		Body:                strings.TrimSpace(body),
	}

	return note, nil
}

// UpdateBody replaces the note text
func (n *Note) UpdateBody(body string) error {
	if err := validateNoteBody(body); err != nil {
		return err
	}

	n.Body = strings.TrimSpace(body)
	n.UpdatedAt = time.Now()
	n.IncrementVersion()

	return nil
}

// Pin pins the note to the top of the entity's note list
func (n *Note) Pin() {
	n.IsPinned = true
	n.UpdatedAt = time.Now()
	n.IncrementVersion()
}

// Unpin unpins the note
func (n *Note) Unpin() {
	n.IsPinned = false
	n.UpdatedAt = time.Now()
	n.IncrementVersion()
}

func validateNoteBody(body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return shared.NewDomainError("INVALID_NOTE", "Note body cannot be empty")
	}
	if len(body) > 65535 {
		return shared.NewDomainError("INVALID_NOTE", "Note body is too long")
	}
	return nil
}
