package audit

import (
	"context"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder subscribes to all domain events and appends an audit log
// entry for each tenant-scoped change. It is registered on the event bus
// as a wildcard handler at startup.
type Recorder struct {
	logRepo audit.LogRepository
	logger  *zap.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(logRepo audit.LogRepository, zlogger *zap.Logger) *Recorder {
	return &Recorder{logRepo: logRepo, logger: zlogger}
}

// EventTypes returns an empty slice: the recorder receives every event
func (r *Recorder) EventTypes() []string {
	return nil
}

// Handle appends an audit entry for the event. Events without a tenant
// (system-level) are skipped. Failures are logged but never propagate:
// auditing must not fail the operation that produced the event.
func (r *Recorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	if event.TenantID() == uuid.Nil {
		return nil
	}

	entry, err := audit.NewLog(
		event.TenantID(),
		audit.ActionForEventType(event.EventType()),
		event.EventType(),
		event.AggregateType(),
		event.AggregateID(),
	)
	if err != nil {
		r.logger.Warn("Skipping unauditable event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return nil
	}

	if carrier, ok := event.(shared.ChangeCarrier); ok {
		entry.WithChanges(carrier.OldValues(), carrier.NewValues())
	}

	entry.WithActor(r.actorFor(ctx, event))

	if err := r.logRepo.Append(ctx, entry); err != nil {
		r.logger.Error("Failed to append audit log entry",
			zap.String("event_type", event.EventType()),
			zap.String("entity_id", event.AggregateID().String()),
			zap.Error(err),
		)
	}
	return nil
}

// actorFor resolves the acting user: the event itself wins, then the
// request context
func (r *Recorder) actorFor(ctx context.Context, event shared.DomainEvent) *uuid.UUID {
	if carrier, ok := event.(shared.ActorCarrier); ok {
		if actorID := carrier.ActorID(); actorID != nil {
			return actorID
		}
	}
	if userIDStr := logger.GetUserID(ctx); userIDStr != "" {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			return &userID
		}
	}
	return nil
}

// Ensure Recorder implements EventHandler
var _ shared.EventHandler = (*Recorder)(nil)
