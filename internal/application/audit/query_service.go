package audit

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueryService exposes the audit trail to administrators. Entries are
// read-only from here; writes happen through the event recorder and the
// auth flow.
type QueryService struct {
	logRepo audit.LogRepository
	logger  *zap.Logger
}

// NewQueryService creates a new audit query service
func NewQueryService(logRepo audit.LogRepository, logger *zap.Logger) *QueryService {
	return &QueryService{logRepo: logRepo, logger: logger}
}

// SearchInput contains the supported audit search filters
type SearchInput struct {
	TenantID   uuid.UUID
	EntityType string
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	Action     string
	From       *time.Time
	To         *time.Time
	Filter     shared.Filter
}

// Search retrieves a paginated page of audit log entries
func (s *QueryService) Search(ctx context.Context, input SearchInput) (*shared.Paginated[LogDTO], error) {
	query := audit.Query{
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		ActorID:    input.ActorID,
		Action:     audit.Action(input.Action),
		From:       input.From,
		To:         input.To,
		Filter:     input.Filter,
	}

	logs, err := s.logRepo.Search(ctx, input.TenantID, query)
	if err != nil {
		s.logger.Error("Failed to search audit logs", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to search audit logs")
	}

	total, err := s.logRepo.Count(ctx, input.TenantID, query)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count audit logs")
	}

	dtos := make([]LogDTO, len(logs))
	for i := range logs {
		dtos[i] = *toLogDTO(&logs[i])
	}

	result := shared.NewPaginated(dtos, total, input.Filter.Page, input.Filter.PageSize)
	return &result, nil
}

// GetByID retrieves one audit log entry
func (s *QueryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*LogDTO, error) {
	entry, err := s.logRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("AUDIT_LOG_NOT_FOUND", "Audit log entry not found")
		}
		s.logger.Error("Failed to find audit log entry", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find audit log entry")
	}
	return toLogDTO(entry), nil
}

// PurgeBefore deletes audit entries older than the cutoff and returns
// how many were removed
func (s *QueryService) PurgeBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error) {
	purged, err := s.logRepo.PurgeBefore(ctx, tenantID, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge audit logs", zap.Error(err))
		return 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to purge audit logs")
	}

	s.logger.Info("Audit logs purged",
		zap.String("tenant_id", tenantID.String()),
		zap.Time("cutoff", cutoff),
		zap.Int64("purged", purged))

	return purged, nil
}

// LogDTO represents an audit log entry returned to clients
type LogDTO struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	Operation  string         `json:"operation,omitempty"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func toLogDTO(l *audit.Log) *LogDTO {
	return &LogDTO{
		ID:         l.ID,
		TenantID:   l.TenantID,
		ActorID:    l.ActorID,
		Action:     string(l.Action),
		Operation:  l.Operation,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		OldValues:  l.OldValues,
		NewValues:  l.NewValues,
		IPAddress:  l.IPAddress,
		UserAgent:  l.UserAgent,
		OccurredAt: l.OccurredAt,
	}
}
