package crm

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpportunityService handles sales opportunity management
type OpportunityService struct {
	opportunityRepo crm.OpportunityRepository
	accountRepo     crm.AccountRepository
	contactRepo     crm.ContactRepository
	pipelineRepo    crm.PipelineRepository
	fields          *customValueEngine
	publisher       shared.EventPublisher
	logger          *zap.Logger
}

// NewOpportunityService creates a new opportunity service
func NewOpportunityService(
	opportunityRepo crm.OpportunityRepository,
	accountRepo crm.AccountRepository,
	contactRepo crm.ContactRepository,
	pipelineRepo crm.PipelineRepository,
	fieldRepo layout.CustomFieldRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		accountRepo:     accountRepo,
		contactRepo:     contactRepo,
		pipelineRepo:    pipelineRepo,
		fields:          newCustomValueEngine(fieldRepo),
		publisher:       publisher,
		logger:          logger,
	}
}

// CreateOpportunityInput contains input for creating an opportunity
type CreateOpportunityInput struct {
	TenantID          uuid.UUID
	Name              string
	AccountID         uuid.UUID
	PrimaryContactID  *uuid.UUID
	Amount            *decimal.Decimal
	Currency          string
	ExpectedCloseDate *time.Time
	PipelineID        *uuid.UUID
	StageID           *uuid.UUID
	Source            string
	OwnerID           *uuid.UUID
	TeamID            *uuid.UUID
	Description       string
	NextStep          string
	CustomValues      map[string]any
	CreatedBy         *uuid.UUID
}

// UpdateOpportunityInput contains input for updating an opportunity
type UpdateOpportunityInput struct {
	TenantID          uuid.UUID
	ID                uuid.UUID
	Name              string
	Description       string
	NextStep          string
	Amount            *decimal.Decimal
	Currency          string
	ExpectedCloseDate *time.Time
	PrimaryContactID  *uuid.UUID
	Source            *string
	CustomValues      map[string]any
}

// Create creates a new opportunity on an account
func (s *OpportunityService) Create(ctx context.Context, input CreateOpportunityInput) (*OpportunityDTO, error) {
	s.logger.Info("Creating opportunity",
		zap.String("name", input.Name),
		zap.String("tenant_id", input.TenantID.String()))

	if _, err := s.accountRepo.FindByID(ctx, input.TenantID, input.AccountID); err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}

	opp, err := crm.NewOpportunity(input.TenantID, input.Name, input.AccountID)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		opp.SetCreatedBy(*input.CreatedBy)
	}

	if input.Description != "" || input.NextStep != "" {
		if err := opp.Update(input.Name, input.Description, input.NextStep); err != nil {
			return nil, err
		}
	}
	if input.PrimaryContactID != nil {
		if err := s.validateContact(ctx, input.TenantID, *input.PrimaryContactID); err != nil {
			return nil, err
		}
		if err := opp.SetPrimaryContact(input.PrimaryContactID); err != nil {
			return nil, err
		}
	}
	if input.Amount != nil {
		currency := input.Currency
		if currency == "" {
			currency = "USD"
		}
		if err := opp.SetAmount(*input.Amount, currency); err != nil {
			return nil, err
		}
	}
	if input.ExpectedCloseDate != nil {
		if err := opp.SetExpectedCloseDate(input.ExpectedCloseDate); err != nil {
			return nil, err
		}
	}
	if input.Source != "" {
		if err := opp.SetSource(crm.LeadSource(input.Source)); err != nil {
			return nil, err
		}
	}
	if input.OwnerID != nil || input.TeamID != nil {
		if err := opp.AssignOwner(input.OwnerID, input.TeamID); err != nil {
			return nil, err
		}
	}

	pipeline, stage, err := s.resolveStage(ctx, input.TenantID, input.PipelineID, input.StageID)
	if err != nil {
		return nil, err
	}
	if pipeline != nil && stage != nil {
		if err := opp.ChangeStage(pipeline.ID, stage.ID, stage.Probability); err != nil {
			return nil, err
		}
	}

	if input.CustomValues != nil {
		values, err := s.fields.process(ctx, input.TenantID, layout.ModuleOpportunity, input.CustomValues)
		if err != nil {
			return nil, err
		}
		if err := opp.SetCustomValues(values); err != nil {
			return nil, err
		}
	}

	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		s.logger.Error("Failed to create opportunity", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create opportunity")
	}

	s.publishOpportunityEvents(ctx, opp)

	s.logger.Info("Opportunity created", zap.String("opportunity_id", opp.ID.String()))

	return toOpportunityDTO(opp), nil
}

// GetByID retrieves an opportunity by ID
func (s *OpportunityService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*OpportunityDTO, error) {
	opp, err := s.findOpportunity(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toOpportunityDTO(opp), nil
}

// List retrieves a paginated list of opportunities
func (s *OpportunityService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[OpportunityDTO], error) {
	opps, err := s.opportunityRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list opportunities", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list opportunities")
	}

	total, err := s.opportunityRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count opportunities")
	}

	dtos := make([]OpportunityDTO, len(opps))
	for i := range opps {
		dtos[i] = *toOpportunityDTO(&opps[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListByAccount retrieves opportunities on an account
func (s *OpportunityService) ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]OpportunityDTO, error) {
	opps, err := s.opportunityRepo.FindByAccount(ctx, tenantID, accountID, filter)
	if err != nil {
		s.logger.Error("Failed to list opportunities by account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list opportunities")
	}

	dtos := make([]OpportunityDTO, len(opps))
	for i := range opps {
		dtos[i] = *toOpportunityDTO(&opps[i])
	}
	return dtos, nil
}

// Update updates an opportunity's details
func (s *OpportunityService) Update(ctx context.Context, input UpdateOpportunityInput) (*OpportunityDTO, error) {
	opp, err := s.findOpportunity(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := opp.Update(input.Name, input.Description, input.NextStep); err != nil {
		return nil, err
	}
	if input.Amount != nil {
		currency := input.Currency
		if currency == "" {
			currency = opp.Currency
		}
		if err := opp.SetAmount(*input.Amount, currency); err != nil {
			return nil, err
		}
	}
	if input.ExpectedCloseDate != nil {
		if err := opp.SetExpectedCloseDate(input.ExpectedCloseDate); err != nil {
			return nil, err
		}
	}
	if input.PrimaryContactID != nil {
		if err := s.validateContact(ctx, input.TenantID, *input.PrimaryContactID); err != nil {
			return nil, err
		}
		if err := opp.SetPrimaryContact(input.PrimaryContactID); err != nil {
			return nil, err
		}
	}
	if input.Source != nil {
		if err := opp.SetSource(crm.LeadSource(*input.Source)); err != nil {
			return nil, err
		}
	}
	if input.CustomValues != nil {
		values, err := s.fields.process(ctx, input.TenantID, layout.ModuleOpportunity, input.CustomValues)
		if err != nil {
			return nil, err
		}
		if err := opp.SetCustomValues(values); err != nil {
			return nil, err
		}
	}

	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		s.logger.Error("Failed to update opportunity", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update opportunity")
	}

	s.publishOpportunityEvents(ctx, opp)

	return toOpportunityDTO(opp), nil
}

// AssignOwner assigns the opportunity owner and team
func (s *OpportunityService) AssignOwner(ctx context.Context, tenantID, id uuid.UUID, ownerID, teamID *uuid.UUID) (*OpportunityDTO, error) {
	return s.mutate(ctx, tenantID, id, func(o *crm.Opportunity) error {
		return o.AssignOwner(ownerID, teamID)
	})
}

// ChangeStage moves the opportunity to another stage. Unless the
// probability is pinned it follows the new stage's probability.
func (s *OpportunityService) ChangeStage(ctx context.Context, tenantID, id, pipelineID, stageID uuid.UUID) (*OpportunityDTO, error) {
	pipeline, err := s.findOpportunityPipeline(ctx, tenantID, pipelineID)
	if err != nil {
		return nil, err
	}
	stage := pipeline.StageByID(stageID)
	if stage == nil {
		return nil, shared.NewDomainError("STAGE_NOT_FOUND", "Stage does not belong to the pipeline")
	}

	return s.mutate(ctx, tenantID, id, func(o *crm.Opportunity) error {
		return o.ChangeStage(pipeline.ID, stage.ID, stage.Probability)
	})
}

// PinProbability overrides the stage-derived win probability
func (s *OpportunityService) PinProbability(ctx context.Context, tenantID, id uuid.UUID, probability int) (*OpportunityDTO, error) {
	return s.mutate(ctx, tenantID, id, func(o *crm.Opportunity) error {
		return o.PinProbability(probability)
	})
}

// UnpinProbability reverts to the current stage's probability
func (s *OpportunityService) UnpinProbability(ctx context.Context, tenantID, id uuid.UUID) (*OpportunityDTO, error) {
	opp, err := s.findOpportunity(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	stageProbability := 0
	if opp.PipelineID != nil && opp.StageID != nil {
		pipeline, err := s.pipelineRepo.FindByID(ctx, tenantID, *opp.PipelineID)
		if err != nil && err != shared.ErrNotFound {
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find pipeline")
		}
		if pipeline != nil {
			if stage := pipeline.StageByID(*opp.StageID); stage != nil {
				stageProbability = stage.Probability
			}
		}
	}

	if err := opp.UnpinProbability(stageProbability); err != nil {
		return nil, err
	}

	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		s.logger.Error("Failed to save opportunity", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save opportunity")
	}

	s.publishOpportunityEvents(ctx, opp)

	return toOpportunityDTO(opp), nil
}

// CloseWon closes the opportunity as won. When the pipeline defines a
// won stage the opportunity lands there; the probability becomes 100.
func (s *OpportunityService) CloseWon(ctx context.Context, tenantID, id uuid.UUID, finalAmount *decimal.Decimal, closedBy *uuid.UUID) (*OpportunityDTO, error) {
	opp, err := s.findOpportunity(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	amount := opp.Amount
	if finalAmount != nil {
		amount = *finalAmount
	}

	wonStageID := s.terminalStageID(ctx, tenantID, opp, func(p *crm.Pipeline) *crm.Stage { return p.WonStage() })
	if err := opp.CloseWon(amount, wonStageID, closedBy); err != nil {
		return nil, err
	}

	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		s.logger.Error("Failed to close opportunity", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to close opportunity")
	}

	s.publishOpportunityEvents(ctx, opp)

	s.logger.Info("Opportunity closed won", zap.String("opportunity_id", opp.ID.String()))

	return toOpportunityDTO(opp), nil
}

// CloseLost closes the opportunity as lost with a reason; the
// probability becomes 0.
func (s *OpportunityService) CloseLost(ctx context.Context, tenantID, id uuid.UUID, reason string, closedBy *uuid.UUID) (*OpportunityDTO, error) {
	opp, err := s.findOpportunity(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	lostStageID := s.terminalStageID(ctx, tenantID, opp, func(p *crm.Pipeline) *crm.Stage { return p.LostStage() })
	if err := opp.CloseLost(reason, lostStageID, closedBy); err != nil {
		return nil, err
	}

	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		s.logger.Error("Failed to close opportunity", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to close opportunity")
	}

	s.publishOpportunityEvents(ctx, opp)

	s.logger.Info("Opportunity closed lost",
		zap.String("opportunity_id", opp.ID.String()),
		zap.String("reason", reason))

	return toOpportunityDTO(opp), nil
}

// Reopen returns a closed opportunity to an open stage
func (s *OpportunityService) Reopen(ctx context.Context, tenantID, id, stageID uuid.UUID) (*OpportunityDTO, error) {
	opp, err := s.findOpportunity(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if opp.PipelineID == nil {
		return nil, shared.NewDomainError("PIPELINE_NOT_FOUND", "Opportunity has no pipeline")
	}

	pipeline, err := s.findOpportunityPipeline(ctx, tenantID, *opp.PipelineID)
	if err != nil {
		return nil, err
	}
	stage := pipeline.StageByID(stageID)
	if stage == nil {
		return nil, shared.NewDomainError("STAGE_NOT_FOUND", "Stage does not belong to the pipeline")
	}

	if err := opp.Reopen(stage.ID, stage.Probability); err != nil {
		return nil, err
	}

	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		s.logger.Error("Failed to reopen opportunity", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to reopen opportunity")
	}

	s.publishOpportunityEvents(ctx, opp)

	s.logger.Info("Opportunity reopened", zap.String("opportunity_id", opp.ID.String()))

	return toOpportunityDTO(opp), nil
}

// Delete deletes an open opportunity
func (s *OpportunityService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.findOpportunity(ctx, tenantID, id); err != nil {
		return err
	}

	if err := s.opportunityRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete opportunity", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete opportunity")
	}

	s.logger.Info("Opportunity deleted", zap.String("opportunity_id", id.String()))

	return nil
}

// resolveStage picks the pipeline/stage pair for a new opportunity:
// the requested pair, the first stage of the requested pipeline, or
// the first stage of the default opportunity pipeline.
func (s *OpportunityService) resolveStage(ctx context.Context, tenantID uuid.UUID, pipelineID, stageID *uuid.UUID) (*crm.Pipeline, *crm.Stage, error) {
	var pipeline *crm.Pipeline
	var err error

	if pipelineID != nil {
		pipeline, err = s.findOpportunityPipeline(ctx, tenantID, *pipelineID)
		if err != nil {
			return nil, nil, err
		}
	} else {
		pipeline, err = s.pipelineRepo.FindDefault(ctx, tenantID, crm.PipelineTypeOpportunity)
		if err != nil {
			if err == shared.ErrNotFound {
				return nil, nil, nil
			}
			return nil, nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find default pipeline")
		}
	}

	if stageID != nil {
		stage := pipeline.StageByID(*stageID)
		if stage == nil {
			return nil, nil, shared.NewDomainError("STAGE_NOT_FOUND", "Stage does not belong to the pipeline")
		}
		return pipeline, stage, nil
	}
	return pipeline, pipeline.FirstStage(), nil
}

func (s *OpportunityService) terminalStageID(ctx context.Context, tenantID uuid.UUID, opp *crm.Opportunity, pick func(*crm.Pipeline) *crm.Stage) *uuid.UUID {
	if opp.PipelineID == nil {
		return nil
	}
	pipeline, err := s.pipelineRepo.FindByID(ctx, tenantID, *opp.PipelineID)
	if err != nil {
		return nil
	}
	if stage := pick(pipeline); stage != nil {
		return &stage.ID
	}
	return nil
}

func (s *OpportunityService) findOpportunityPipeline(ctx context.Context, tenantID, pipelineID uuid.UUID) (*crm.Pipeline, error) {
	pipeline, err := s.pipelineRepo.FindByID(ctx, tenantID, pipelineID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PIPELINE_NOT_FOUND", "Pipeline not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find pipeline")
	}
	if pipeline.Type != crm.PipelineTypeOpportunity {
		return nil, shared.NewDomainError("PIPELINE_TYPE_MISMATCH", "Pipeline is not an opportunity pipeline")
	}
	return pipeline, nil
}

func (s *OpportunityService) validateContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	if _, err := s.contactRepo.FindByID(ctx, tenantID, contactID); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("CONTACT_NOT_FOUND", "Contact not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find contact")
	}
	return nil
}

func (s *OpportunityService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*crm.Opportunity) error) (*OpportunityDTO, error) {
	opp, err := s.findOpportunity(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(opp); err != nil {
		return nil, err
	}

	if err := s.opportunityRepo.Save(ctx, opp); err != nil {
		s.logger.Error("Failed to save opportunity", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save opportunity")
	}

	s.publishOpportunityEvents(ctx, opp)

	return toOpportunityDTO(opp), nil
}

func (s *OpportunityService) findOpportunity(ctx context.Context, tenantID, id uuid.UUID) (*crm.Opportunity, error) {
	opp, err := s.opportunityRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("OPPORTUNITY_NOT_FOUND", "Opportunity not found")
		}
		s.logger.Error("Failed to find opportunity", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find opportunity")
	}
	return opp, nil
}

func (s *OpportunityService) publishOpportunityEvents(ctx context.Context, opp *crm.Opportunity) {
	if s.publisher == nil {
		return
	}
	events := opp.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	opp.ClearDomainEvents()
}
