package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo  identity.UserRepository
	roleRepo  identity.RoleRepository
	deptRepo  identity.DepartmentRepository
	teamRepo  identity.TeamRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	deptRepo identity.DepartmentRepository,
	teamRepo identity.TeamRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		deptRepo:  deptRepo,
		teamRepo:  teamRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	TenantID     uuid.UUID
	Username     string
	Password     string
	Email        string
	Phone        string
	DisplayName  string
	DepartmentID *uuid.UUID
	TeamID       *uuid.UUID
	RoleIDs      []uuid.UUID
	CreatedBy    *uuid.UUID
}

// UpdateUserInput contains input for updating a user
type UpdateUserInput struct {
	TenantID     uuid.UUID
	ID           uuid.UUID
	Email        *string
	Phone        *string
	DisplayName  *string
	DepartmentID *uuid.UUID
	TeamID       *uuid.UUID
	Notes        *string
}

// Create creates a new active user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	s.logger.Info("Creating user",
		zap.String("username", input.Username),
		zap.String("tenant_id", input.TenantID.String()))

	exists, err := s.userRepo.ExistsByUsername(ctx, input.TenantID, input.Username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check username availability")
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}

	if input.Email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, input.TenantID, input.Email)
		if err != nil {
			s.logger.Error("Failed to check email existence", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
		}
		if exists {
			return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
		}
	}

	if err := s.validateRoles(ctx, input.TenantID, input.RoleIDs); err != nil {
		return nil, err
	}
	if err := s.validateDepartment(ctx, input.TenantID, input.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.validateTeam(ctx, input.TenantID, input.TeamID); err != nil {
		return nil, err
	}

	user, err := identity.NewActiveUser(input.TenantID, input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if input.CreatedBy != nil {
		user.SetCreatedBy(*input.CreatedBy)
	}

	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" {
		if err := user.SetPhone(input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}
	user.SetDepartment(input.DepartmentID)
	user.SetTeam(input.TeamID)
	if len(input.RoleIDs) > 0 {
		user.AssignRoles(input.RoleIDs)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	s.publishDomainEvents(ctx, user)

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return toUserDTO(user), nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	return toUserDTO(user), nil
}

// List retrieves a paginated list of users
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[UserDTO], error) {
	users, err := s.userRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	total, err := s.userRepo.Count(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to count users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count users")
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = *toUserDTO(&users[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a user's profile
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, input.TenantID, input.ID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if input.Email != nil {
		if *input.Email != "" && *input.Email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, input.TenantID, *input.Email)
			if err != nil {
				return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
			}
			if exists {
				return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
			}
		}
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != nil {
		if err := user.SetPhone(*input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.DepartmentID != nil {
		if err := s.validateDepartment(ctx, input.TenantID, input.DepartmentID); err != nil {
			return nil, err
		}
		user.SetDepartment(input.DepartmentID)
	}
	if input.TeamID != nil {
		if err := s.validateTeam(ctx, input.TenantID, input.TeamID); err != nil {
			return nil, err
		}
		user.SetTeam(input.TeamID)
	}
	if input.Notes != nil {
		user.SetNotes(*input.Notes)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.logger.Info("User updated", zap.String("user_id", input.ID.String()))

	return toUserDTO(user), nil
}

// SetAvatar updates the user's avatar URL after a successful upload
func (s *UserService) SetAvatar(ctx context.Context, tenantID, userID uuid.UUID, avatarURL string) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := user.SetAvatarURL(avatarURL); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user avatar", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update avatar")
	}

	return toUserDTO(user), nil
}

// Delete deletes a user
func (s *UserService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := s.userRepo.Delete(ctx, tenantID, user.ID); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete user")
	}

	s.logger.Info("User deleted", zap.String("user_id", id.String()))

	return nil
}

// Activate activates a user
func (s *UserService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, tenantID, id, func(u *identity.User) error { return u.Activate() })
}

// Deactivate deactivates a user
func (s *UserService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, tenantID, id, func(u *identity.User) error { return u.Deactivate() })
}

// Unlock clears a login lockout
func (s *UserService) Unlock(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, tenantID, id, func(u *identity.User) error { return u.Unlock() })
}

func (s *UserService) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*identity.User) error) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := fn(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save user")
	}

	s.publishDomainEvents(ctx, user)

	return toUserDTO(user), nil
}

// ResetPassword sets a new password and forces a change on next login
func (s *UserService) ResetPassword(ctx context.Context, tenantID, userID uuid.UUID, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := user.ResetPassword(newPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	s.logger.Info("User password reset", zap.String("user_id", userID.String()))

	return nil
}

// AssignRoles replaces the user's role assignments
func (s *UserService) AssignRoles(ctx context.Context, tenantID, userID uuid.UUID, roleIDs []uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := s.validateRoles(ctx, tenantID, roleIDs); err != nil {
		return nil, err
	}

	user.AssignRoles(roleIDs)

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user roles", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to assign roles")
	}

	s.publishDomainEvents(ctx, user)

	s.logger.Info("User roles assigned",
		zap.String("user_id", userID.String()),
		zap.Int("role_count", len(roleIDs)))

	return toUserDTO(user), nil
}

func (s *UserService) validateRoles(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID) error {
	if len(roleIDs) == 0 {
		return nil
	}

	roles, err := s.roleRepo.FindByIDs(ctx, tenantID, roleIDs)
	if err != nil {
		s.logger.Error("Failed to load roles", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to validate roles")
	}

	found := make(map[uuid.UUID]bool, len(roles))
	for _, role := range roles {
		found[role.ID] = true
	}
	for _, roleID := range roleIDs {
		if !found[roleID] {
			return shared.NewDomainError("ROLE_NOT_FOUND", "Role not found: "+roleID.String())
		}
	}
	return nil
}

func (s *UserService) validateDepartment(ctx context.Context, tenantID uuid.UUID, departmentID *uuid.UUID) error {
	if departmentID == nil {
		return nil
	}
	if _, err := s.deptRepo.FindByID(ctx, tenantID, *departmentID); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("DEPARTMENT_NOT_FOUND", "Department not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to validate department")
	}
	return nil
}

func (s *UserService) validateTeam(ctx context.Context, tenantID uuid.UUID, teamID *uuid.UUID) error {
	if teamID == nil {
		return nil
	}
	if _, err := s.teamRepo.FindByID(ctx, tenantID, *teamID); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("TEAM_NOT_FOUND", "Team not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to validate team")
	}
	return nil
}

func (s *UserService) publishDomainEvents(ctx context.Context, user *identity.User) {
	if s.publisher == nil {
		return
	}
	events := user.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	user.ClearDomainEvents()
}
