package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/layout"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LeadService handles lead management and conversion
type LeadService struct {
	leadRepo        crm.LeadRepository
	accountRepo     crm.AccountRepository
	contactRepo     crm.ContactRepository
	opportunityRepo crm.OpportunityRepository
	pipelineRepo    crm.PipelineRepository
	fields          *customValueEngine
	publisher       shared.EventPublisher
	logger          *zap.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(
	leadRepo crm.LeadRepository,
	accountRepo crm.AccountRepository,
	contactRepo crm.ContactRepository,
	opportunityRepo crm.OpportunityRepository,
	pipelineRepo crm.PipelineRepository,
	fieldRepo layout.CustomFieldRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:        leadRepo,
		accountRepo:     accountRepo,
		contactRepo:     contactRepo,
		opportunityRepo: opportunityRepo,
		pipelineRepo:    pipelineRepo,
		fields:          newCustomValueEngine(fieldRepo),
		publisher:       publisher,
		logger:          logger,
	}
}

// CreateLeadInput contains input for creating a lead
type CreateLeadInput struct {
	TenantID     uuid.UUID
	FirstName    string
	LastName     string
	Title        string
	Company      string
	Email        string
	Phone        string
	Website      string
	Source       string
	Rating       string
	OwnerID      *uuid.UUID
	TeamID       *uuid.UUID
	Description  string
	CustomValues map[string]any
	CreatedBy    *uuid.UUID
}

// UpdateLeadInput contains input for updating a lead
type UpdateLeadInput struct {
	TenantID     uuid.UUID
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Title        string
	Company      string
	Email        string
	Phone        string
	Website      string
	Description  string
	Source       *string
	Rating       *string
	CustomValues map[string]any
}

// ConvertLeadInput contains input for converting a qualified lead
type ConvertLeadInput struct {
	TenantID uuid.UUID
	LeadID   uuid.UUID
	ActorID  *uuid.UUID

	// Account handling: when true and the lead has a company name, an
	// account is reused by exact name match or created.
	CreateAccount bool

	// Opportunity handling: when set, an opportunity is created on the
	// (new or reused) account.
	CreateOpportunity  bool
	OpportunityName    string
	OpportunityAmount  *decimal.Decimal
	Currency           string
	PipelineID         *uuid.UUID
}

// ConvertLeadResult reports the records produced by a conversion
type ConvertLeadResult struct {
	Lead        LeadDTO         `json:"lead"`
	Contact     ContactDTO      `json:"contact"`
	Account     *AccountDTO     `json:"account,omitempty"`
	Opportunity *OpportunityDTO `json:"opportunity,omitempty"`
}

// Create creates a new lead in the default lead pipeline's first stage
func (s *LeadService) Create(ctx context.Context, input CreateLeadInput) (*LeadDTO, error) {
	s.logger.Info("Creating lead",
		zap.String("last_name", input.LastName),
		zap.String("tenant_id", input.TenantID.String()))

	lead, err := crm.NewLead(input.TenantID, input.LastName)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		lead.SetCreatedBy(*input.CreatedBy)
	}

	if err := lead.Update(input.FirstName, input.LastName, input.Title, input.Company, input.Email, input.Phone, input.Website, input.Description); err != nil {
		return nil, err
	}
	if input.Source != "" {
		if err := lead.SetSource(crm.LeadSource(input.Source)); err != nil {
			return nil, err
		}
	}
	if input.Rating != "" {
		if err := lead.SetRating(crm.LeadRating(input.Rating)); err != nil {
			return nil, err
		}
	}
	if input.OwnerID != nil || input.TeamID != nil {
		if err := lead.AssignOwner(input.OwnerID, input.TeamID); err != nil {
			return nil, err
		}
	}

	// Place the lead in the default lead pipeline when one exists
	pipeline, err := s.pipelineRepo.FindDefault(ctx, input.TenantID, crm.PipelineTypeLead)
	if err == nil {
		if first := pipeline.FirstStage(); first != nil {
			if err := lead.SetPipelineStage(pipeline.ID, first.ID); err != nil {
				return nil, err
			}
		}
	} else if err != shared.ErrNotFound {
		s.logger.Error("Failed to find default lead pipeline", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find default lead pipeline")
	}

	if input.CustomValues != nil {
		values, err := s.fields.process(ctx, input.TenantID, layout.ModuleLead, input.CustomValues)
		if err != nil {
			return nil, err
		}
		if err := lead.SetCustomValues(values); err != nil {
			return nil, err
		}
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		s.logger.Error("Failed to create lead", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create lead")
	}

	s.publishLeadEvents(ctx, lead)

	s.logger.Info("Lead created", zap.String("lead_id", lead.ID.String()))

	return toLeadDTO(lead), nil
}

// GetByID retrieves a lead by ID
func (s *LeadService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*LeadDTO, error) {
	lead, err := s.findLead(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toLeadDTO(lead), nil
}

// List retrieves a paginated list of leads
func (s *LeadService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[LeadDTO], error) {
	leads, err := s.leadRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list leads", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list leads")
	}

	total, err := s.leadRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count leads")
	}

	dtos := make([]LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = *toLeadDTO(&leads[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a lead's details
func (s *LeadService) Update(ctx context.Context, input UpdateLeadInput) (*LeadDTO, error) {
	lead, err := s.findLead(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := lead.Update(input.FirstName, input.LastName, input.Title, input.Company, input.Email, input.Phone, input.Website, input.Description); err != nil {
		return nil, err
	}
	if input.Source != nil {
		if err := lead.SetSource(crm.LeadSource(*input.Source)); err != nil {
			return nil, err
		}
	}
	if input.Rating != nil {
		if err := lead.SetRating(crm.LeadRating(*input.Rating)); err != nil {
			return nil, err
		}
	}
	if input.CustomValues != nil {
		values, err := s.fields.process(ctx, input.TenantID, layout.ModuleLead, input.CustomValues)
		if err != nil {
			return nil, err
		}
		if err := lead.SetCustomValues(values); err != nil {
			return nil, err
		}
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		s.logger.Error("Failed to update lead", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update lead")
	}

	s.publishLeadEvents(ctx, lead)

	return toLeadDTO(lead), nil
}

// AssignOwner assigns the lead owner and team
func (s *LeadService) AssignOwner(ctx context.Context, tenantID, id uuid.UUID, ownerID, teamID *uuid.UUID) (*LeadDTO, error) {
	return s.mutate(ctx, tenantID, id, func(l *crm.Lead) error {
		return l.AssignOwner(ownerID, teamID)
	})
}

// ChangeStage moves the lead to another stage of its pipeline
func (s *LeadService) ChangeStage(ctx context.Context, tenantID, id, pipelineID, stageID uuid.UUID) (*LeadDTO, error) {
	pipeline, err := s.pipelineRepo.FindByID(ctx, tenantID, pipelineID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PIPELINE_NOT_FOUND", "Pipeline not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find pipeline")
	}
	if pipeline.Type != crm.PipelineTypeLead {
		return nil, shared.NewDomainError("PIPELINE_TYPE_MISMATCH", "Pipeline is not a lead pipeline")
	}
	if !pipeline.HasStage(stageID) {
		return nil, shared.NewDomainError("STAGE_NOT_FOUND", "Stage does not belong to the pipeline")
	}

	return s.mutate(ctx, tenantID, id, func(l *crm.Lead) error {
		return l.SetPipelineStage(pipelineID, stageID)
	})
}

// StartWorking moves a new lead into the working status
func (s *LeadService) StartWorking(ctx context.Context, tenantID, id uuid.UUID) (*LeadDTO, error) {
	return s.mutate(ctx, tenantID, id, func(l *crm.Lead) error { return l.StartWorking() })
}

// Qualify marks a lead as qualified
func (s *LeadService) Qualify(ctx context.Context, tenantID, id uuid.UUID) (*LeadDTO, error) {
	return s.mutate(ctx, tenantID, id, func(l *crm.Lead) error { return l.Qualify() })
}

// Disqualify marks a lead as disqualified with a reason
func (s *LeadService) Disqualify(ctx context.Context, tenantID, id uuid.UUID, reason string) (*LeadDTO, error) {
	return s.mutate(ctx, tenantID, id, func(l *crm.Lead) error { return l.Disqualify(reason) })
}

// Reopen returns a disqualified lead to the working status
func (s *LeadService) Reopen(ctx context.Context, tenantID, id uuid.UUID) (*LeadDTO, error) {
	return s.mutate(ctx, tenantID, id, func(l *crm.Lead) error { return l.Reopen() })
}

// Convert converts a qualified lead into a contact, optionally an
// account (reused by exact name match), and optionally an opportunity.
// The lead becomes immutable afterwards.
func (s *LeadService) Convert(ctx context.Context, input ConvertLeadInput) (*ConvertLeadResult, error) {
	lead, err := s.findLead(ctx, input.TenantID, input.LeadID)
	if err != nil {
		return nil, err
	}

	if lead.IsConverted() {
		return nil, shared.NewDomainError("LEAD_CONVERTED", "Lead has already been converted")
	}
	if lead.Status != crm.LeadStatusQualified {
		return nil, shared.NewDomainError("INVALID_LEAD_TRANSITION", "Only qualified leads can be converted")
	}

	s.logger.Info("Converting lead",
		zap.String("lead_id", lead.ID.String()),
		zap.Bool("create_account", input.CreateAccount),
		zap.Bool("create_opportunity", input.CreateOpportunity))

	// Contact is always produced
	contact, err := s.buildContactFromLead(lead, input.ActorID)
	if err != nil {
		return nil, err
	}

	// Account: reuse an existing record by exact company name, else create
	var account *crm.Account
	if input.CreateAccount && lead.Company != "" {
		account, err = s.accountRepo.FindByName(ctx, input.TenantID, lead.Company)
		if err != nil && err != shared.ErrNotFound {
			s.logger.Error("Failed to look up account by name", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to look up account")
		}
		if account == nil || err == shared.ErrNotFound {
			account, err = crm.NewAccount(input.TenantID, lead.Company)
			if err != nil {
				return nil, err
			}
			if input.ActorID != nil {
				account.SetCreatedBy(*input.ActorID)
			}
			account.AssignOwner(lead.OwnerID, lead.TeamID)
			if lead.Website != "" {
				if err := account.Update(lead.Company, "", lead.Website, lead.Phone, "", "", ""); err != nil {
					return nil, err
				}
			}
			if err := s.accountRepo.Save(ctx, account); err != nil {
				s.logger.Error("Failed to create account during conversion", zap.Error(err))
				return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create account")
			}
		}
	}

	if account != nil {
		if _, err := contact.LinkAccount(account.ID, "", true); err != nil {
			return nil, err
		}
	}
	if err := s.contactRepo.Save(ctx, contact); err != nil {
		s.logger.Error("Failed to create contact during conversion", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create contact")
	}

	// Opportunity: optional, requires an account
	var opportunity *crm.Opportunity
	if input.CreateOpportunity {
		if account == nil {
			return nil, shared.NewDomainError("ACCOUNT_REQUIRED", "Creating an opportunity requires an account")
		}
		opportunity, err = s.buildOpportunityFromLead(ctx, lead, account, contact, input)
		if err != nil {
			return nil, err
		}
		if err := s.opportunityRepo.Save(ctx, opportunity); err != nil {
			s.logger.Error("Failed to create opportunity during conversion", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create opportunity")
		}
	}

	result := crm.ConversionResult{ContactID: contact.ID}
	if account != nil {
		result.AccountID = &account.ID
	}
	if opportunity != nil {
		result.OpportunityID = &opportunity.ID
	}
	if err := lead.MarkConverted(result); err != nil {
		return nil, err
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		s.logger.Error("Failed to finalize lead conversion", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to finalize lead conversion")
	}

	s.publishLeadEvents(ctx, lead)

	s.logger.Info("Lead converted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("contact_id", contact.ID.String()))

	out := &ConvertLeadResult{
		Lead:    *toLeadDTO(lead),
		Contact: *toContactDTO(contact),
	}
	if account != nil {
		out.Account = toAccountDTO(account)
	}
	if opportunity != nil {
		out.Opportunity = toOpportunityDTO(opportunity)
	}
	return out, nil
}

// Delete deletes a lead
func (s *LeadService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	lead, err := s.findLead(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if lead.IsConverted() {
		return shared.NewDomainError("LEAD_CONVERTED", "Converted leads cannot be deleted")
	}

	if err := s.leadRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete lead", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete lead")
	}

	s.logger.Info("Lead deleted", zap.String("lead_id", id.String()))

	return nil
}

func (s *LeadService) buildContactFromLead(lead *crm.Lead, actorID *uuid.UUID) (*crm.Contact, error) {
	contact, err := crm.NewContact(lead.TenantID, lead.FirstName, lead.LastName)
	if err != nil {
		return nil, err
	}
	if actorID != nil {
		contact.SetCreatedBy(*actorID)
	}
	if lead.Title != "" {
		if err := contact.Update(lead.FirstName, lead.LastName, lead.Title, ""); err != nil {
			return nil, err
		}
	}
	contact.AssignOwner(lead.OwnerID, lead.TeamID)
	if lead.Email != "" {
		if _, err := contact.AddMethod(crm.ContactMethodEmail, lead.Email, "", true); err != nil {
			return nil, err
		}
	}
	if lead.Phone != "" {
		if _, err := contact.AddMethod(crm.ContactMethodPhone, lead.Phone, "", true); err != nil {
			return nil, err
		}
	}
	return contact, nil
}

func (s *LeadService) buildOpportunityFromLead(ctx context.Context, lead *crm.Lead, account *crm.Account, contact *crm.Contact, input ConvertLeadInput) (*crm.Opportunity, error) {
	name := input.OpportunityName
	if name == "" {
		name = account.Name + " - " + lead.FullName()
	}

	opportunity, err := crm.NewOpportunity(lead.TenantID, name, account.ID)
	if err != nil {
		return nil, err
	}
	if input.ActorID != nil {
		opportunity.SetCreatedBy(*input.ActorID)
	}
	if err := opportunity.SetPrimaryContact(&contact.ID); err != nil {
		return nil, err
	}
	if err := opportunity.AssignOwner(lead.OwnerID, lead.TeamID); err != nil {
		return nil, err
	}
	if lead.Source != "" {
		if err := opportunity.SetSource(lead.Source); err != nil {
			return nil, err
		}
	}
	if input.OpportunityAmount != nil {
		currency := input.Currency
		if currency == "" {
			currency = "USD"
		}
		if err := opportunity.SetAmount(*input.OpportunityAmount, currency); err != nil {
			return nil, err
		}
	}

	// Place the opportunity in the requested or default pipeline
	var pipeline *crm.Pipeline
	if input.PipelineID != nil {
		pipeline, err = s.pipelineRepo.FindByID(ctx, lead.TenantID, *input.PipelineID)
		if err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewDomainError("PIPELINE_NOT_FOUND", "Pipeline not found")
			}
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find pipeline")
		}
		if pipeline.Type != crm.PipelineTypeOpportunity {
			return nil, shared.NewDomainError("PIPELINE_TYPE_MISMATCH", "Pipeline is not an opportunity pipeline")
		}
	} else {
		pipeline, err = s.pipelineRepo.FindDefault(ctx, lead.TenantID, crm.PipelineTypeOpportunity)
		if err != nil && err != shared.ErrNotFound {
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find default pipeline")
		}
	}
	if pipeline != nil {
		if first := pipeline.FirstStage(); first != nil {
			if err := opportunity.ChangeStage(pipeline.ID, first.ID, first.Probability); err != nil {
				return nil, err
			}
		}
	}

	return opportunity, nil
}

func (s *LeadService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*crm.Lead) error) (*LeadDTO, error) {
	lead, err := s.findLead(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(lead); err != nil {
		return nil, err
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		s.logger.Error("Failed to save lead", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save lead")
	}

	s.publishLeadEvents(ctx, lead)

	return toLeadDTO(lead), nil
}

func (s *LeadService) findLead(ctx context.Context, tenantID, id uuid.UUID) (*crm.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("LEAD_NOT_FOUND", "Lead not found")
		}
		s.logger.Error("Failed to find lead", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find lead")
	}
	return lead, nil
}

func (s *LeadService) publishLeadEvents(ctx context.Context, lead *crm.Lead) {
	if s.publisher == nil {
		return
	}
	events := lead.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	lead.ClearDomainEvents()
}
