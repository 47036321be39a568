package models

import (
	"time"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditLogModel is the persistence model for audit log entries. Entries are
// append-only, so the model carries no version or updated_at column.
type AuditLogModel struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_audit_logs_tenant_time"`
	ActorID    *uuid.UUID   `gorm:"type:uuid;index"`
	Action     audit.Action `gorm:"type:varchar(20);not null"`
	Operation  string       `gorm:"type:varchar(100);not null"`
	EntityType string       `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity"`
	EntityID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_audit_logs_entity"`
	OldValues  string       `gorm:"type:jsonb;default:'{}'"`
	NewValues  string       `gorm:"type:jsonb;default:'{}'"`
	IPAddress  string       `gorm:"type:varchar(45)"`
	UserAgent  string       `gorm:"type:varchar(500)"`
	OccurredAt time.Time    `gorm:"not null;index:idx_audit_logs_tenant_time"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain Log entry.
func (m *AuditLogModel) ToDomain() *audit.Log {
	return &audit.Log{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		Operation:  m.Operation,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		OldValues:  unmarshalValueMap(m.OldValues),
		NewValues:  unmarshalValueMap(m.NewValues),
		IPAddress:  m.IPAddress,
		UserAgent:  m.UserAgent,
		OccurredAt: m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain Log entry.
func (m *AuditLogModel) FromDomain(l *audit.Log) {
	m.ID = l.ID
	m.TenantID = l.TenantID
	m.ActorID = l.ActorID
	m.Action = l.Action
	m.Operation = l.Operation
	m.EntityType = l.EntityType
	m.EntityID = l.EntityID
	m.OldValues = marshalJSON(l.OldValues, "{}")
	m.NewValues = marshalJSON(l.NewValues, "{}")
	m.IPAddress = l.IPAddress
	m.UserAgent = l.UserAgent
	m.OccurredAt = l.OccurredAt
}

// AuditLogModelFromDomain creates a new persistence model from a domain Log entry.
func AuditLogModelFromDomain(l *audit.Log) *AuditLogModel {
	m := &AuditLogModel{}
	m.FromDomain(l)
	return m
}
