package audit

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Query captures the supported audit log filters
type Query struct {
	EntityType string
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	Action     Action
	From       *time.Time
	To         *time.Time
	Filter     shared.Filter
}

// LogRepository defines the interface for audit log persistence.
// Entries are append-only.
type LogRepository interface {
	// Append stores a new audit log entry
	Append(ctx context.Context, entry *Log) error

	// FindByID finds an audit log entry by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Log, error)

	// Search finds audit log entries matching the query
	Search(ctx context.Context, tenantID uuid.UUID, query Query) ([]Log, error)

	// Count counts audit log entries matching the query
	Count(ctx context.Context, tenantID uuid.UUID, query Query) (int64, error)

	// PurgeBefore deletes entries older than the cutoff. Used by retention
	// cleanup.
	PurgeBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error)
}
