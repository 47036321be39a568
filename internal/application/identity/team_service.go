package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TeamService handles sales team management
type TeamService struct {
	teamRepo  identity.TeamRepository
	userRepo  identity.UserRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewTeamService creates a new team service
func NewTeamService(
	teamRepo identity.TeamRepository,
	userRepo identity.UserRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:  teamRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateTeamInput contains input for creating a team
type CreateTeamInput struct {
	TenantID    uuid.UUID
	Name        string
	Description string
	LeadUserID  *uuid.UUID
	MemberIDs   []uuid.UUID
	CreatedBy   *uuid.UUID
}

// Create creates a new team
func (s *TeamService) Create(ctx context.Context, input CreateTeamInput) (*TeamDTO, error) {
	exists, err := s.teamRepo.ExistsByName(ctx, input.TenantID, input.Name)
	if err != nil {
		s.logger.Error("Failed to check team name", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check team name availability")
	}
	if exists {
		return nil, shared.NewDomainError("TEAM_NAME_EXISTS", "Team name already exists")
	}

	if err := s.validateMembers(ctx, input.TenantID, input.LeadUserID, input.MemberIDs); err != nil {
		return nil, err
	}

	team, err := identity.NewTeam(input.TenantID, input.Name)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		team.SetCreatedBy(*input.CreatedBy)
	}
	team.SetDescription(input.Description)
	if len(input.MemberIDs) > 0 {
		team.SetMembers(input.MemberIDs)
	}
	team.SetLead(input.LeadUserID)

	if err := s.teamRepo.Save(ctx, team); err != nil {
		s.logger.Error("Failed to create team", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create team")
	}

	s.publishDomainEvents(ctx, team)

	s.logger.Info("Team created",
		zap.String("team_id", team.ID.String()),
		zap.String("name", team.Name))

	return toTeamDTO(team), nil
}

// GetByID retrieves a team by ID
func (s *TeamService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TeamDTO, error) {
	team, err := s.findTeam(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toTeamDTO(team), nil
}

// List retrieves a paginated list of teams
func (s *TeamService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[TeamDTO], error) {
	teams, err := s.teamRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list teams", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list teams")
	}

	total, err := s.teamRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count teams")
	}

	dtos := make([]TeamDTO, len(teams))
	for i := range teams {
		dtos[i] = *toTeamDTO(&teams[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a team's name and description
func (s *TeamService) Update(ctx context.Context, tenantID, id uuid.UUID, name, description string) (*TeamDTO, error) {
	team, err := s.findTeam(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if name != team.Name {
		exists, err := s.teamRepo.ExistsByName(ctx, tenantID, name)
		if err != nil {
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check team name availability")
		}
		if exists {
			return nil, shared.NewDomainError("TEAM_NAME_EXISTS", "Team name already exists")
		}
	}

	if err := team.Update(name, description); err != nil {
		return nil, err
	}

	if err := s.teamRepo.Save(ctx, team); err != nil {
		s.logger.Error("Failed to update team", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update team")
	}

	return toTeamDTO(team), nil
}

// SetLead assigns the team lead; the lead joins the member list
func (s *TeamService) SetLead(ctx context.Context, tenantID, teamID uuid.UUID, leadUserID *uuid.UUID) (*TeamDTO, error) {
	team, err := s.findTeam(ctx, tenantID, teamID)
	if err != nil {
		return nil, err
	}

	if err := s.validateMembers(ctx, tenantID, leadUserID, nil); err != nil {
		return nil, err
	}

	team.SetLead(leadUserID)

	if err := s.teamRepo.Save(ctx, team); err != nil {
		s.logger.Error("Failed to save team", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save team")
	}

	s.publishDomainEvents(ctx, team)

	return toTeamDTO(team), nil
}

// AddMember adds a user to the team
func (s *TeamService) AddMember(ctx context.Context, tenantID, teamID, userID uuid.UUID) (*TeamDTO, error) {
	team, err := s.findTeam(ctx, tenantID, teamID)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, tenantID, userID); err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate user")
	}

	if err := team.AddMember(userID); err != nil {
		return nil, err
	}

	if err := s.teamRepo.Save(ctx, team); err != nil {
		s.logger.Error("Failed to save team", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save team")
	}

	s.publishDomainEvents(ctx, team)

	return toTeamDTO(team), nil
}

// RemoveMember removes a user from the team. The team lead cannot be
// removed without reassigning the lead first.
func (s *TeamService) RemoveMember(ctx context.Context, tenantID, teamID, userID uuid.UUID) (*TeamDTO, error) {
	team, err := s.findTeam(ctx, tenantID, teamID)
	if err != nil {
		return nil, err
	}

	if err := team.RemoveMember(userID); err != nil {
		return nil, err
	}

	if err := s.teamRepo.Save(ctx, team); err != nil {
		s.logger.Error("Failed to save team", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save team")
	}

	s.publishDomainEvents(ctx, team)

	return toTeamDTO(team), nil
}

// Activate activates a team
func (s *TeamService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*TeamDTO, error) {
	return s.transition(ctx, tenantID, id, func(t *identity.Team) error { return t.Activate() })
}

// Deactivate deactivates a team
func (s *TeamService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*TeamDTO, error) {
	return s.transition(ctx, tenantID, id, func(t *identity.Team) error { return t.Deactivate() })
}

// Delete deletes a team
func (s *TeamService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.findTeam(ctx, tenantID, id); err != nil {
		return err
	}

	if err := s.teamRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete team", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete team")
	}

	s.logger.Info("Team deleted", zap.String("team_id", id.String()))

	return nil
}

func (s *TeamService) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*identity.Team) error) (*TeamDTO, error) {
	team, err := s.findTeam(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(team); err != nil {
		return nil, err
	}

	if err := s.teamRepo.Save(ctx, team); err != nil {
		s.logger.Error("Failed to save team", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save team")
	}

	s.publishDomainEvents(ctx, team)

	return toTeamDTO(team), nil
}

func (s *TeamService) findTeam(ctx context.Context, tenantID, id uuid.UUID) (*identity.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("TEAM_NOT_FOUND", "Team not found")
		}
		s.logger.Error("Failed to find team", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find team")
	}
	return team, nil
}

func (s *TeamService) validateMembers(ctx context.Context, tenantID uuid.UUID, leadUserID *uuid.UUID, memberIDs []uuid.UUID) error {
	check := func(userID uuid.UUID) error {
		if _, err := s.userRepo.FindByID(ctx, tenantID, userID); err != nil {
			if err == shared.ErrNotFound {
				return shared.NewDomainError("USER_NOT_FOUND", "User not found: "+userID.String())
			}
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to validate team members")
		}
		return nil
	}

	if leadUserID != nil {
		if err := check(*leadUserID); err != nil {
			return err
		}
	}
	for _, memberID := range memberIDs {
		if err := check(memberID); err != nil {
			return err
		}
	}
	return nil
}

func (s *TeamService) publishDomainEvents(ctx context.Context, team *identity.Team) {
	if s.publisher == nil {
		return
	}
	events := team.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	team.ClearDomainEvents()
}
