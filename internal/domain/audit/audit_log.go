package audit

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action represents what happened to the audited entity
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
	ActionCustom Action = "custom" // Domain operations (stage change, convert, close)
)

// Log is an immutable audit trail entry. Entries are appended by the
// event recorder and by explicit service calls; they are never updated.
type Log struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ActorID    *uuid.UUID // nil for system-originated changes
	Action     Action
	Operation  string // Specific event name, e.g. "OpportunityClosed"
	EntityType string
	EntityID   uuid.UUID
	OldValues  map[string]any
	NewValues  map[string]any
	IPAddress  string
	UserAgent  string
	OccurredAt time.Time
}

// NewLog creates an audit log entry
func NewLog(tenantID uuid.UUID, action Action, operation, entityType string, entityID uuid.UUID) (*Log, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Audit log entry must have a tenant")
	}
	if strings.TrimSpace(entityType) == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Audit log entry must name an entity type")
	}

	return &Log{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Action:     action,
		Operation:  strings.TrimSpace(operation),
		EntityType: strings.TrimSpace(entityType),
		EntityID:   entityID,
		OccurredAt: time.Now(),
	}, nil
}

// WithActor attaches the acting user
func (l *Log) WithActor(actorID *uuid.UUID) *Log {
	l.ActorID = actorID
	return l
}

// WithChanges attaches before/after value maps
func (l *Log) WithChanges(oldValues, newValues map[string]any) *Log {
	l.OldValues = oldValues
	l.NewValues = newValues
	return l
}

// WithRequest attaches request metadata
func (l *Log) WithRequest(ip, userAgent string) *Log {
	l.IPAddress = ip
	l.UserAgent = userAgent
	return l
}

// ActionForEventType maps a domain event type name to an audit action.
// "XxxCreated" -> create, "XxxDeleted" -> delete, everything else is an
// update unless it names a domain operation.
func ActionForEventType(eventType string) Action {
	switch {
	case strings.HasSuffix(eventType, "Created"):
		return ActionCreate
	case strings.HasSuffix(eventType, "Deleted"):
		return ActionDelete
	case strings.HasSuffix(eventType, "Updated"):
		return ActionUpdate
	default:
		return ActionCustom
	}
}
