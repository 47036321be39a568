package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleService handles role and permission management
type RoleService struct {
	roleRepo  identity.RoleRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo identity.RoleRepository, publisher shared.EventPublisher, logger *zap.Logger) *RoleService {
	return &RoleService{
		roleRepo:  roleRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateRoleInput contains input for creating a role
type CreateRoleInput struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	Description string
	Permissions []string
	SortOrder   int
}

// UpdateRoleInput contains input for updating a role
type UpdateRoleInput struct {
	TenantID    uuid.UUID
	ID          uuid.UUID
	Name        string
	Description string
}

// SetDataScopeInput contains input for configuring a role's data scope
type SetDataScopeInput struct {
	TenantID    uuid.UUID
	RoleID      uuid.UUID
	Resource    string
	ScopeType   string
	ScopeValues []string
}

// Create creates a new role with the given permissions
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*RoleDTO, error) {
	exists, err := s.roleRepo.ExistsByCode(ctx, input.TenantID, input.Code)
	if err != nil {
		s.logger.Error("Failed to check role code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check role code availability")
	}
	if exists {
		return nil, shared.NewDomainError("ROLE_CODE_EXISTS", "Role code already exists")
	}

	role, err := identity.NewRole(input.TenantID, input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	role.SetDescription(input.Description)
	role.SetSortOrder(input.SortOrder)

	for _, code := range input.Permissions {
		if err := role.GrantPermissionByCode(code); err != nil {
			return nil, err
		}
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		s.logger.Error("Failed to create role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create role")
	}

	s.publishDomainEvents(ctx, role)

	s.logger.Info("Role created",
		zap.String("role_id", role.ID.String()),
		zap.String("code", role.Code))

	return toRoleDTO(role), nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RoleDTO, error) {
	role, err := s.findRole(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toRoleDTO(role), nil
}

// List retrieves a paginated list of roles
func (s *RoleService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[RoleDTO], error) {
	roles, err := s.roleRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list roles", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list roles")
	}

	total, err := s.roleRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count roles")
	}

	dtos := make([]RoleDTO, len(roles))
	for i := range roles {
		dtos[i] = *toRoleDTO(&roles[i])
	}

	result := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a role's name and description
func (s *RoleService) Update(ctx context.Context, input UpdateRoleInput) (*RoleDTO, error) {
	role, err := s.findRole(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := role.Update(input.Name, input.Description); err != nil {
		return nil, err
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		s.logger.Error("Failed to update role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update role")
	}

	return toRoleDTO(role), nil
}

// SetPermissions replaces the role's permission set
func (s *RoleService) SetPermissions(ctx context.Context, tenantID, roleID uuid.UUID, codes []string) (*RoleDTO, error) {
	role, err := s.findRole(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}

	permissions := make([]identity.Permission, 0, len(codes))
	for _, code := range codes {
		perm, err := identity.NewPermissionFromCode(code)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, *perm)
	}

	if err := role.SetPermissions(permissions); err != nil {
		return nil, err
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		s.logger.Error("Failed to save role permissions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save role permissions")
	}

	s.publishDomainEvents(ctx, role)

	s.logger.Info("Role permissions replaced",
		zap.String("role_id", roleID.String()),
		zap.Int("permission_count", len(codes)))

	return toRoleDTO(role), nil
}

// SetDataScope configures row-level visibility for one resource
func (s *RoleService) SetDataScope(ctx context.Context, input SetDataScopeInput) (*RoleDTO, error) {
	role, err := s.findRole(ctx, input.TenantID, input.RoleID)
	if err != nil {
		return nil, err
	}

	var scope *identity.DataScope
	switch identity.DataScopeType(input.ScopeType) {
	case identity.DataScopeCustom:
		scope, err = identity.NewCustomDataScope(input.Resource, input.ScopeValues)
	case identity.DataScopeTeam:
		scope, err = identity.NewTeamDataScope(input.Resource)
	default:
		scope, err = identity.NewDataScope(input.Resource, identity.DataScopeType(input.ScopeType))
	}
	if err != nil {
		return nil, err
	}

	if err := role.SetDataScope(*scope); err != nil {
		return nil, err
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		s.logger.Error("Failed to save role data scope", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save role data scope")
	}

	return toRoleDTO(role), nil
}

// RemoveDataScope removes the data scope for one resource
func (s *RoleService) RemoveDataScope(ctx context.Context, tenantID, roleID uuid.UUID, resource string) (*RoleDTO, error) {
	role, err := s.findRole(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}

	if err := role.RemoveDataScope(resource); err != nil {
		return nil, err
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save role")
	}

	return toRoleDTO(role), nil
}

// Enable enables a role
func (s *RoleService) Enable(ctx context.Context, tenantID, id uuid.UUID) (*RoleDTO, error) {
	return s.transition(ctx, tenantID, id, func(r *identity.Role) error { return r.Enable() })
}

// Disable disables a role
func (s *RoleService) Disable(ctx context.Context, tenantID, id uuid.UUID) (*RoleDTO, error) {
	return s.transition(ctx, tenantID, id, func(r *identity.Role) error { return r.Disable() })
}

// Delete deletes a non-system role
func (s *RoleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	role, err := s.findRole(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !role.CanDelete() {
		return shared.NewDomainError("SYSTEM_ROLE", "System roles cannot be deleted")
	}

	if err := s.roleRepo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("Failed to delete role", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete role")
	}

	s.logger.Info("Role deleted", zap.String("role_id", id.String()))

	return nil
}

func (s *RoleService) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*identity.Role) error) (*RoleDTO, error) {
	role, err := s.findRole(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(role); err != nil {
		return nil, err
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		s.logger.Error("Failed to save role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save role")
	}

	s.publishDomainEvents(ctx, role)

	return toRoleDTO(role), nil
}

func (s *RoleService) findRole(ctx context.Context, tenantID, id uuid.UUID) (*identity.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("ROLE_NOT_FOUND", "Role not found")
		}
		s.logger.Error("Failed to find role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find role")
	}
	return role, nil
}

func (s *RoleService) publishDomainEvents(ctx context.Context, role *identity.Role) {
	if s.publisher == nil {
		return
	}
	events := role.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	role.ClearDomainEvents()
}
