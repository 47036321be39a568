package crm

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PipelineType distinguishes which record type a pipeline drives
type PipelineType string

const (
	PipelineTypeLead        PipelineType = "lead"
	PipelineTypeOpportunity PipelineType = "opportunity"
)

// Stage represents a single step in a pipeline.
// It is an entity owned by the Pipeline aggregate.
type Stage struct {
	ID          uuid.UUID
	Name        string
	SortOrder   int
	Probability int  // Win probability weight, 0-100
	IsWon       bool // Terminal winning stage
	IsLost      bool // Terminal losing stage
}

// Pipeline represents an ordered set of stages that leads or
// opportunities move through.
// It is the aggregate root for pipeline-related operations
type Pipeline struct {
	shared.TenantAggregateRoot
	Name       string
	Type       PipelineType
	IsDefault  bool // At most one default per type, enforced by the service
	IsArchived bool
	Stages     []Stage // Ordered by SortOrder
}

// NewPipeline creates a new pipeline with required fields
func NewPipeline(tenantID uuid.UUID, name string, pipelineType PipelineType) (*Pipeline, error) {
	if err := validatePipelineName(name); err != nil {
		return nil, err
	}
	if err := validatePipelineType(pipelineType); err != nil {
		return nil, err
	}

	pipeline := &Pipeline{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Type:                pipelineType,
		Stages:              make([]Stage, 0),
	}

	pipeline.AddDomainEvent(NewPipelineCreatedEvent(pipeline))

	return pipeline, nil
}

// Rename renames the pipeline
func (p *Pipeline) Rename(name string) error {
	if err := validatePipelineName(name); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPipelineUpdatedEvent(p))

	return nil
}

// AddStage appends a stage to the pipeline. The stage is placed at the
// end of the current order.
func (p *Pipeline) AddStage(name string, probability int, isWon, isLost bool) (*Stage, error) {
	if err := validateStageName(name); err != nil {
		return nil, err
	}
	if err := validateStageFlags(probability, isWon, isLost); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	for _, s := range p.Stages {
		if strings.EqualFold(s.Name, name) {
			return nil, shared.NewDomainError("STAGE_ALREADY_EXISTS", "A stage with this name already exists in the pipeline")
		}
	}

	stage := Stage{
		ID:          uuid.New(),
		Name:        name,
		SortOrder:   p.nextSortOrder(),
		Probability: probability,
		IsWon:       isWon,
		IsLost:      isLost,
	}

	p.Stages = append(p.Stages, stage)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPipelineStagesChangedEvent(p))

	return &stage, nil
}

// UpdateStage updates an existing stage
func (p *Pipeline) UpdateStage(stageID uuid.UUID, name string, probability int, isWon, isLost bool) error {
	if err := validateStageName(name); err != nil {
		return err
	}
	if err := validateStageFlags(probability, isWon, isLost); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	idx := -1
	for i, s := range p.Stages {
		if s.ID == stageID {
			idx = i
		} else if strings.EqualFold(s.Name, name) {
			return shared.NewDomainError("STAGE_ALREADY_EXISTS", "A stage with this name already exists in the pipeline")
		}
	}
	if idx < 0 {
		return shared.NewDomainError("STAGE_NOT_FOUND", "Stage not found in pipeline")
	}

	p.Stages[idx].Name = name
	p.Stages[idx].Probability = probability
	p.Stages[idx].IsWon = isWon
	p.Stages[idx].IsLost = isLost
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPipelineStagesChangedEvent(p))

	return nil
}

// RemoveStage removes a stage from the pipeline. Whether the stage is
// still referenced by open records is checked by the service.
func (p *Pipeline) RemoveStage(stageID uuid.UUID) error {
	found := false
	newStages := make([]Stage, 0, len(p.Stages))
	for _, s := range p.Stages {
		if s.ID != stageID {
			newStages = append(newStages, s)
		} else {
			found = true
		}
	}

	if !found {
		return shared.NewDomainError("STAGE_NOT_FOUND", "Stage not found in pipeline")
	}

	p.Stages = newStages
	p.renumberStages()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPipelineStagesChangedEvent(p))

	return nil
}

// ReorderStages replaces the stage order. The given IDs must be a
// permutation of the current stage IDs.
func (p *Pipeline) ReorderStages(stageIDs []uuid.UUID) error {
	if len(stageIDs) != len(p.Stages) {
		return shared.NewDomainError("INVALID_STAGE_ORDER", "Stage order must include every stage exactly once")
	}

	byID := make(map[uuid.UUID]Stage, len(p.Stages))
	for _, s := range p.Stages {
		byID[s.ID] = s
	}

	newStages := make([]Stage, 0, len(stageIDs))
	for i, id := range stageIDs {
		s, ok := byID[id]
		if !ok {
			return shared.NewDomainError("INVALID_STAGE_ORDER", "Stage order references an unknown stage")
		}
		delete(byID, id)
		s.SortOrder = i
		newStages = append(newStages, s)
	}

	p.Stages = newStages
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPipelineStagesChangedEvent(p))

	return nil
}

// Archive archives the pipeline so it can no longer be assigned to new records
func (p *Pipeline) Archive() error {
	if p.IsArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Pipeline is already archived")
	}
	if p.IsDefault {
		return shared.NewDomainError("DEFAULT_PIPELINE", "The default pipeline cannot be archived")
	}

	p.IsArchived = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Unarchive restores an archived pipeline
func (p *Pipeline) Unarchive() error {
	if !p.IsArchived {
		return shared.NewDomainError("NOT_ARCHIVED", "Pipeline is not archived")
	}

	p.IsArchived = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// MarkDefault flags this pipeline as the default for its type. Unsetting
// the previous default is handled by the service.
func (p *Pipeline) MarkDefault() error {
	if p.IsArchived {
		return shared.NewDomainError("PIPELINE_ARCHIVED", "An archived pipeline cannot be the default")
	}

	p.IsDefault = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ClearDefault removes the default flag
func (p *Pipeline) ClearDefault() {
	p.IsDefault = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// StageByID returns the stage with the given ID
func (p *Pipeline) StageByID(stageID uuid.UUID) *Stage {
	for i := range p.Stages {
		if p.Stages[i].ID == stageID {
			return &p.Stages[i]
		}
	}
	return nil
}

// FirstStage returns the stage with the lowest sort order
func (p *Pipeline) FirstStage() *Stage {
	if len(p.Stages) == 0 {
		return nil
	}
	first := &p.Stages[0]
	for i := range p.Stages {
		if p.Stages[i].SortOrder < first.SortOrder {
			first = &p.Stages[i]
		}
	}
	return first
}

// WonStage returns the winning terminal stage, if any
func (p *Pipeline) WonStage() *Stage {
	for i := range p.Stages {
		if p.Stages[i].IsWon {
			return &p.Stages[i]
		}
	}
	return nil
}

// LostStage returns the losing terminal stage, if any
func (p *Pipeline) LostStage() *Stage {
	for i := range p.Stages {
		if p.Stages[i].IsLost {
			return &p.Stages[i]
		}
	}
	return nil
}

// HasStage checks whether the pipeline contains the given stage
func (p *Pipeline) HasStage(stageID uuid.UUID) bool {
	return p.StageByID(stageID) != nil
}

func (p *Pipeline) nextSortOrder() int {
	next := 0
	for _, s := range p.Stages {
		if s.SortOrder >= next {
			next = s.SortOrder + 1
		}
	}
	return next
}

func (p *Pipeline) renumberStages() {
	for i := range p.Stages {
		p.Stages[i].SortOrder = i
	}
}

// Validation functions

func validatePipelineName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PIPELINE_NAME", "Pipeline name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_PIPELINE_NAME", "Pipeline name cannot exceed 200 characters")
	}
	return nil
}

func validatePipelineType(pipelineType PipelineType) error {
	switch pipelineType {
	case PipelineTypeLead, PipelineTypeOpportunity:
		return nil
	default:
		return shared.NewDomainError("INVALID_PIPELINE_TYPE", "Pipeline type must be 'lead' or 'opportunity'")
	}
}

func validateStageName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_STAGE_NAME", "Stage name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_STAGE_NAME", "Stage name cannot exceed 200 characters")
	}
	return nil
}

func validateStageFlags(probability int, isWon, isLost bool) error {
	if probability < 0 || probability > 100 {
		return shared.NewDomainError("INVALID_PROBABILITY", "Stage probability must be between 0 and 100")
	}
	if isWon && isLost {
		return shared.NewDomainError("INVALID_STAGE_FLAGS", "A stage cannot be both won and lost")
	}
	return nil
}
