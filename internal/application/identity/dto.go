package identity

import (
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains credentials for authentication
type LoginInput struct {
	TenantCode string
	Username   string
	Password   string
	IP         string
	UserAgent  string
}

// UserInfo is the authenticated user payload returned with tokens
type UserInfo struct {
	ID          uuid.UUID   `json:"id"`
	TenantID    uuid.UUID   `json:"tenant_id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	RoleIDs     []uuid.UUID `json:"role_ids"`
	Permissions []string    `json:"permissions"`
}

// LoginResult contains the token pair and user info after login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	MustChangePassword    bool      `json:"must_change_password"`
	User                  UserInfo  `json:"user"`
}

// RefreshTokenInput contains the refresh token to exchange
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the rotated token pair
type RefreshTokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutInput identifies the session being terminated
type LogoutInput struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	TokenID   string
	TokenTTL  time.Duration
	IP        string
	UserAgent string
}

// ChangePasswordInput contains input for a self-service password change
type ChangePasswordInput struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UserDTO represents user data returned to clients
type UserDTO struct {
	ID           uuid.UUID   `json:"id"`
	TenantID     uuid.UUID   `json:"tenant_id"`
	Username     string      `json:"username"`
	Email        string      `json:"email,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	DisplayName  string      `json:"display_name"`
	AvatarURL    string      `json:"avatar_url,omitempty"`
	Status       string      `json:"status"`
	DepartmentID *uuid.UUID  `json:"department_id,omitempty"`
	TeamID       *uuid.UUID  `json:"team_id,omitempty"`
	RoleIDs      []uuid.UUID `json:"role_ids"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func toUserDTO(user *identity.User) *UserDTO {
	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.Username
	}
	return &UserDTO{
		ID:           user.ID,
		TenantID:     user.TenantID,
		Username:     user.Username,
		Email:        user.Email,
		Phone:        user.Phone,
		DisplayName:  displayName,
		AvatarURL:    user.AvatarURL,
		Status:       string(user.Status),
		DepartmentID: user.DepartmentID,
		TeamID:       user.TeamID,
		RoleIDs:      user.RoleIDs,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// RoleDTO represents role data returned to clients
type RoleDTO struct {
	ID           uuid.UUID      `json:"id"`
	TenantID     uuid.UUID      `json:"tenant_id"`
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	IsSystemRole bool           `json:"is_system_role"`
	IsEnabled    bool           `json:"is_enabled"`
	SortOrder    int            `json:"sort_order"`
	Permissions  []string       `json:"permissions"`
	DataScopes   []DataScopeDTO `json:"data_scopes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// DataScopeDTO represents a role's data scope for one resource
type DataScopeDTO struct {
	Resource    string   `json:"resource"`
	ScopeType   string   `json:"scope_type"`
	ScopeField  string   `json:"scope_field,omitempty"`
	ScopeValues []string `json:"scope_values,omitempty"`
}

func toRoleDTO(role *identity.Role) *RoleDTO {
	permissions := make([]string, len(role.Permissions))
	for i, p := range role.Permissions {
		permissions[i] = p.Code
	}
	scopes := make([]DataScopeDTO, len(role.DataScopes))
	for i, ds := range role.DataScopes {
		scopes[i] = DataScopeDTO{
			Resource:    ds.Resource,
			ScopeType:   string(ds.ScopeType),
			ScopeField:  ds.ScopeField,
			ScopeValues: ds.ScopeValues,
		}
	}
	return &RoleDTO{
		ID:           role.ID,
		TenantID:     role.TenantID,
		Code:         role.Code,
		Name:         role.Name,
		Description:  role.Description,
		IsSystemRole: role.IsSystemRole,
		IsEnabled:    role.IsEnabled,
		SortOrder:    role.SortOrder,
		Permissions:  permissions,
		DataScopes:   scopes,
		CreatedAt:    role.CreatedAt,
		UpdatedAt:    role.UpdatedAt,
	}
}

// TeamDTO represents team data returned to clients
type TeamDTO struct {
	ID          uuid.UUID   `json:"id"`
	TenantID    uuid.UUID   `json:"tenant_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	LeadUserID  *uuid.UUID  `json:"lead_user_id,omitempty"`
	MemberIDs   []uuid.UUID `json:"member_ids"`
	Status      string      `json:"status"`
	SortOrder   int         `json:"sort_order"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toTeamDTO(team *identity.Team) *TeamDTO {
	return &TeamDTO{
		ID:          team.ID,
		TenantID:    team.TenantID,
		Name:        team.Name,
		Description: team.Description,
		LeadUserID:  team.LeadUserID,
		MemberIDs:   team.MemberIDs,
		Status:      string(team.Status),
		SortOrder:   team.SortOrder,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
}

// DepartmentDTO represents department data returned to clients
type DepartmentDTO struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Path        string     `json:"path"`
	Level       int        `json:"level"`
	ManagerID   *uuid.UUID `json:"manager_id,omitempty"`
	SortOrder   int        `json:"sort_order"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toDepartmentDTO(dept *identity.Department) *DepartmentDTO {
	return &DepartmentDTO{
		ID:          dept.ID,
		TenantID:    dept.TenantID,
		Code:        dept.Code,
		Name:        dept.Name,
		Description: dept.Description,
		ParentID:    dept.ParentID,
		Path:        dept.Path,
		Level:       dept.Level,
		ManagerID:   dept.ManagerID,
		SortOrder:   dept.SortOrder,
		Status:      string(dept.Status),
		CreatedAt:   dept.CreatedAt,
		UpdatedAt:   dept.UpdatedAt,
	}
}

// TenantDTO represents tenant data returned to clients
type TenantDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	SchemaName         string     `json:"schema_name"`
	Domain             string     `json:"domain,omitempty"`
	LogoURL            string     `json:"logo_url,omitempty"`
	Status             string     `json:"status"`
	Plan               string     `json:"plan"`
	ProvisioningStatus string     `json:"provisioning_status"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toTenantDTO(tenant *identity.Tenant) *TenantDTO {
	return &TenantDTO{
		ID:                 tenant.ID,
		Code:               tenant.Code,
		Name:               tenant.Name,
		SchemaName:         tenant.SchemaName,
		Domain:             tenant.Domain,
		LogoURL:            tenant.LogoURL,
		Status:             string(tenant.Status),
		Plan:               string(tenant.Plan),
		ProvisioningStatus: string(tenant.ProvisioningStatus),
		ExpiresAt:          tenant.ExpiresAt,
		CreatedAt:          tenant.CreatedAt,
		UpdatedAt:          tenant.UpdatedAt,
	}
}
