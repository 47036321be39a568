package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineService handles pipeline and stage management
type PipelineService struct {
	pipelineRepo    crm.PipelineRepository
	leadRepo        crm.LeadRepository
	opportunityRepo crm.OpportunityRepository
	publisher       shared.EventPublisher
	logger          *zap.Logger
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(
	pipelineRepo crm.PipelineRepository,
	leadRepo crm.LeadRepository,
	opportunityRepo crm.OpportunityRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		pipelineRepo:    pipelineRepo,
		leadRepo:        leadRepo,
		opportunityRepo: opportunityRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

// StageInput describes one stage when creating or updating pipelines
type StageInput struct {
	Name        string
	Probability int
	IsWon       bool
	IsLost      bool
}

// CreatePipelineInput contains input for creating a pipeline
type CreatePipelineInput struct {
	TenantID  uuid.UUID
	Name      string
	Type      string
	Stages    []StageInput
	IsDefault bool
	CreatedBy *uuid.UUID
}

// Create creates a new pipeline with its initial stages
func (s *PipelineService) Create(ctx context.Context, input CreatePipelineInput) (*PipelineDTO, error) {
	pipelineType := crm.PipelineType(input.Type)

	exists, err := s.pipelineRepo.ExistsByName(ctx, input.TenantID, pipelineType, input.Name)
	if err != nil {
		s.logger.Error("Failed to check pipeline name", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check pipeline name availability")
	}
	if exists {
		return nil, shared.NewDomainError("PIPELINE_NAME_EXISTS", "A pipeline with this name already exists")
	}

	pipeline, err := crm.NewPipeline(input.TenantID, input.Name, pipelineType)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		pipeline.SetCreatedBy(*input.CreatedBy)
	}

	for _, st := range input.Stages {
		if _, err := pipeline.AddStage(st.Name, st.Probability, st.IsWon, st.IsLost); err != nil {
			return nil, err
		}
	}

	if input.IsDefault {
		if err := s.clearDefault(ctx, input.TenantID, pipelineType); err != nil {
			return nil, err
		}
		if err := pipeline.MarkDefault(); err != nil {
			return nil, err
		}
	}

	if err := s.pipelineRepo.Save(ctx, pipeline); err != nil {
		s.logger.Error("Failed to create pipeline", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create pipeline")
	}

	s.publishDomainEvents(ctx, pipeline)

	s.logger.Info("Pipeline created",
		zap.String("pipeline_id", pipeline.ID.String()),
		zap.String("type", string(pipeline.Type)))

	return toPipelineDTO(pipeline), nil
}

// GetByID retrieves a pipeline by ID
func (s *PipelineService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PipelineDTO, error) {
	pipeline, err := s.findPipeline(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toPipelineDTO(pipeline), nil
}

// ListByType retrieves all pipelines of the given type
func (s *PipelineService) ListByType(ctx context.Context, tenantID uuid.UUID, pipelineType string) ([]PipelineDTO, error) {
	pipelines, err := s.pipelineRepo.FindByType(ctx, tenantID, crm.PipelineType(pipelineType))
	if err != nil {
		s.logger.Error("Failed to list pipelines", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list pipelines")
	}

	dtos := make([]PipelineDTO, len(pipelines))
	for i := range pipelines {
		dtos[i] = *toPipelineDTO(&pipelines[i])
	}
	return dtos, nil
}

// GetDefault retrieves the default pipeline for a type
func (s *PipelineService) GetDefault(ctx context.Context, tenantID uuid.UUID, pipelineType string) (*PipelineDTO, error) {
	pipeline, err := s.pipelineRepo.FindDefault(ctx, tenantID, crm.PipelineType(pipelineType))
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PIPELINE_NOT_FOUND", "No default pipeline configured")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find default pipeline")
	}
	return toPipelineDTO(pipeline), nil
}

// Rename renames a pipeline
func (s *PipelineService) Rename(ctx context.Context, tenantID, id uuid.UUID, name string) (*PipelineDTO, error) {
	pipeline, err := s.findPipeline(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if name != pipeline.Name {
		exists, err := s.pipelineRepo.ExistsByName(ctx, tenantID, pipeline.Type, name)
		if err != nil {
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check pipeline name availability")
		}
		if exists {
			return nil, shared.NewDomainError("PIPELINE_NAME_EXISTS", "A pipeline with this name already exists")
		}
	}

	if err := pipeline.Rename(name); err != nil {
		return nil, err
	}

	if err := s.pipelineRepo.Save(ctx, pipeline); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save pipeline")
	}

	return toPipelineDTO(pipeline), nil
}

// AddStage appends a stage to the pipeline
func (s *PipelineService) AddStage(ctx context.Context, tenantID, pipelineID uuid.UUID, input StageInput) (*PipelineDTO, error) {
	return s.mutate(ctx, tenantID, pipelineID, func(p *crm.Pipeline) error {
		_, err := p.AddStage(input.Name, input.Probability, input.IsWon, input.IsLost)
		return err
	})
}

// UpdateStage updates a stage's name, probability, and flags
func (s *PipelineService) UpdateStage(ctx context.Context, tenantID, pipelineID, stageID uuid.UUID, input StageInput) (*PipelineDTO, error) {
	return s.mutate(ctx, tenantID, pipelineID, func(p *crm.Pipeline) error {
		return p.UpdateStage(stageID, input.Name, input.Probability, input.IsWon, input.IsLost)
	})
}

// RemoveStage removes a stage. Stages still holding open leads or
// opportunities cannot be removed.
func (s *PipelineService) RemoveStage(ctx context.Context, tenantID, pipelineID, stageID uuid.UUID) (*PipelineDTO, error) {
	pipeline, err := s.findPipeline(ctx, tenantID, pipelineID)
	if err != nil {
		return nil, err
	}

	if !pipeline.HasStage(stageID) {
		return nil, shared.NewDomainError("STAGE_NOT_FOUND", "Stage not found")
	}

	var inUse int64
	switch pipeline.Type {
	case crm.PipelineTypeLead:
		inUse, err = s.leadRepo.CountOpenByStage(ctx, tenantID, stageID)
	case crm.PipelineTypeOpportunity:
		inUse, err = s.opportunityRepo.CountOpenByStage(ctx, tenantID, stageID)
	}
	if err != nil {
		s.logger.Error("Failed to check stage usage", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check stage usage")
	}
	if inUse > 0 {
		return nil, shared.NewDomainError("STAGE_IN_USE", "Stage still holds open records and cannot be removed")
	}

	if err := pipeline.RemoveStage(stageID); err != nil {
		return nil, err
	}

	if err := s.pipelineRepo.Save(ctx, pipeline); err != nil {
		s.logger.Error("Failed to save pipeline", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save pipeline")
	}

	s.publishDomainEvents(ctx, pipeline)

	return toPipelineDTO(pipeline), nil
}

// ReorderStages applies a new stage order
func (s *PipelineService) ReorderStages(ctx context.Context, tenantID, pipelineID uuid.UUID, stageIDs []uuid.UUID) (*PipelineDTO, error) {
	return s.mutate(ctx, tenantID, pipelineID, func(p *crm.Pipeline) error {
		return p.ReorderStages(stageIDs)
	})
}

// SetDefault marks a pipeline as the default for its type, clearing the
// previous default.
func (s *PipelineService) SetDefault(ctx context.Context, tenantID, id uuid.UUID) (*PipelineDTO, error) {
	pipeline, err := s.findPipeline(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if pipeline.IsDefault {
		return toPipelineDTO(pipeline), nil
	}

	if err := s.clearDefault(ctx, tenantID, pipeline.Type); err != nil {
		return nil, err
	}

	if err := pipeline.MarkDefault(); err != nil {
		return nil, err
	}

	if err := s.pipelineRepo.Save(ctx, pipeline); err != nil {
		s.logger.Error("Failed to save pipeline", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save pipeline")
	}

	s.publishDomainEvents(ctx, pipeline)

	s.logger.Info("Default pipeline changed",
		zap.String("pipeline_id", id.String()),
		zap.String("type", string(pipeline.Type)))

	return toPipelineDTO(pipeline), nil
}

// Archive archives a non-default pipeline
func (s *PipelineService) Archive(ctx context.Context, tenantID, id uuid.UUID) (*PipelineDTO, error) {
	return s.mutate(ctx, tenantID, id, func(p *crm.Pipeline) error { return p.Archive() })
}

// Unarchive restores an archived pipeline
func (s *PipelineService) Unarchive(ctx context.Context, tenantID, id uuid.UUID) (*PipelineDTO, error) {
	return s.mutate(ctx, tenantID, id, func(p *crm.Pipeline) error { return p.Unarchive() })
}

func (s *PipelineService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*crm.Pipeline) error) (*PipelineDTO, error) {
	pipeline, err := s.findPipeline(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(pipeline); err != nil {
		return nil, err
	}

	if err := s.pipelineRepo.Save(ctx, pipeline); err != nil {
		s.logger.Error("Failed to save pipeline", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save pipeline")
	}

	s.publishDomainEvents(ctx, pipeline)

	return toPipelineDTO(pipeline), nil
}

func (s *PipelineService) findPipeline(ctx context.Context, tenantID, id uuid.UUID) (*crm.Pipeline, error) {
	pipeline, err := s.pipelineRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PIPELINE_NOT_FOUND", "Pipeline not found")
		}
		s.logger.Error("Failed to find pipeline", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find pipeline")
	}
	return pipeline, nil
}

func (s *PipelineService) clearDefault(ctx context.Context, tenantID uuid.UUID, pipelineType crm.PipelineType) error {
	current, err := s.pipelineRepo.FindDefault(ctx, tenantID, pipelineType)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find current default pipeline")
	}

	current.ClearDefault()
	if err := s.pipelineRepo.Save(ctx, current); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to clear previous default pipeline")
	}
	return nil
}

func (s *PipelineService) publishDomainEvents(ctx context.Context, pipeline *crm.Pipeline) {
	if s.publisher == nil {
		return
	}
	events := pipeline.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	pipeline.ClearDomainEvents()
}
