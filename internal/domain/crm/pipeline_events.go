package crm

import (
	"github.com/crm/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePipeline = "Pipeline"

// Event type constants
const (
	EventTypePipelineCreated       = "PipelineCreated"
	EventTypePipelineUpdated       = "PipelineUpdated"
	EventTypePipelineStagesChanged = "PipelineStagesChanged"
	EventTypePipelineDeleted       = "PipelineDeleted"
)

// PipelineCreatedEvent is published when a new pipeline is created
type PipelineCreatedEvent struct {
	shared.BaseDomainEvent
	Name string       `json:"name"`
	Type PipelineType `json:"type"`
}

// NewPipelineCreatedEvent creates a new PipelineCreatedEvent
func NewPipelineCreatedEvent(pipeline *Pipeline) *PipelineCreatedEvent {
	return &PipelineCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePipelineCreated, AggregateTypePipeline, pipeline.ID, pipeline.TenantID),
		Name:            pipeline.Name,
		Type:            pipeline.Type,
	}
}

// PipelineUpdatedEvent is published when a pipeline is updated
type PipelineUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string       `json:"name"`
	Type PipelineType `json:"type"`
}

// NewPipelineUpdatedEvent creates a new PipelineUpdatedEvent
func NewPipelineUpdatedEvent(pipeline *Pipeline) *PipelineUpdatedEvent {
	return &PipelineUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePipelineUpdated, AggregateTypePipeline, pipeline.ID, pipeline.TenantID),
		Name:            pipeline.Name,
		Type:            pipeline.Type,
	}
}

// PipelineStagesChangedEvent is published when a pipeline's stages change
type PipelineStagesChangedEvent struct {
	shared.BaseDomainEvent
	Name       string `json:"name"`
	StageCount int    `json:"stage_count"`
}

// NewPipelineStagesChangedEvent creates a new PipelineStagesChangedEvent
func NewPipelineStagesChangedEvent(pipeline *Pipeline) *PipelineStagesChangedEvent {
	return &PipelineStagesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePipelineStagesChanged, AggregateTypePipeline, pipeline.ID, pipeline.TenantID),
		Name:            pipeline.Name,
		StageCount:      len(pipeline.Stages),
	}
}

// PipelineDeletedEvent is published when a pipeline is deleted
type PipelineDeletedEvent struct {
	shared.BaseDomainEvent
	Name string       `json:"name"`
	Type PipelineType `json:"type"`
}

// NewPipelineDeletedEvent creates a new PipelineDeletedEvent
func NewPipelineDeletedEvent(pipeline *Pipeline) *PipelineDeletedEvent {
	return &PipelineDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePipelineDeleted, AggregateTypePipeline, pipeline.ID, pipeline.TenantID),
		Name:            pipeline.Name,
		Type:            pipeline.Type,
	}
}
