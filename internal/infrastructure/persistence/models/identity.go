package models

import (
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantModel is the persistence model for the Tenant domain entity.
type TenantModel struct {
	AggregateModel
	Code               string                      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name               string                      `gorm:"type:varchar(200);not null"`
	Status             identity.TenantStatus      `gorm:"type:varchar(20);not null;default:'active'"`
	Plan               identity.TenantPlan        `gorm:"type:varchar(20);not null;default:'free'"`
	SchemaName         string                     `gorm:"type:varchar(63);not null;uniqueIndex"`
	ProvisioningStatus identity.ProvisioningStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ProvisioningError  string                     `gorm:"type:text"`
	ContactName        string                     `gorm:"type:varchar(100)"`
	ContactPhone       string                     `gorm:"type:varchar(50)"`
	ContactEmail       string                     `gorm:"type:varchar(200)"`
	LogoURL            string                     `gorm:"type:varchar(500)"`
	Domain             string                     `gorm:"type:varchar(200);uniqueIndex"`
	ExpiresAt          *time.Time                 `gorm:"index"`
	TrialEndsAt        *time.Time
	// Embedded config fields
	ConfigMaxUsers     int    `gorm:"column:config_max_users;not null;default:5"`
	ConfigMaxPipelines int    `gorm:"column:config_max_pipelines;not null;default:3"`
	ConfigFeatures     string `gorm:"column:config_features;type:jsonb;default:'{}'"`
	ConfigSettings     string `gorm:"column:config_settings;type:jsonb;default:'{}'"`
	ConfigCurrency     string `gorm:"column:config_currency;type:varchar(10);default:'USD'"`
	ConfigTimezone     string `gorm:"column:config_timezone;type:varchar(50);default:'UTC'"`
	ConfigLocale       string `gorm:"column:config_locale;type:varchar(20);default:'en-US'"`
	Notes              string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Code:               m.Code,
		Name:               m.Name,
		Status:             m.Status,
		Plan:               m.Plan,
		SchemaName:         m.SchemaName,
		ProvisioningStatus: m.ProvisioningStatus,
		ProvisioningError:  m.ProvisioningError,
		ContactName:        m.ContactName,
		ContactPhone:       m.ContactPhone,
		ContactEmail:       m.ContactEmail,
		LogoURL:            m.LogoURL,
		Domain:             m.Domain,
		ExpiresAt:          m.ExpiresAt,
		TrialEndsAt:        m.TrialEndsAt,
		Config: identity.TenantConfig{
			MaxUsers:     m.ConfigMaxUsers,
			MaxPipelines: m.ConfigMaxPipelines,
			Features:     m.ConfigFeatures,
			Settings:     m.ConfigSettings,
			Currency:     m.ConfigCurrency,
			Timezone:     m.ConfigTimezone,
			Locale:       m.ConfigLocale,
		},
		Notes: m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Code = t.Code
	m.Name = t.Name
	m.Status = t.Status
	m.Plan = t.Plan
	m.SchemaName = t.SchemaName
	m.ProvisioningStatus = t.ProvisioningStatus
	m.ProvisioningError = t.ProvisioningError
	m.ContactName = t.ContactName
	m.ContactPhone = t.ContactPhone
	m.ContactEmail = t.ContactEmail
	m.LogoURL = t.LogoURL
	m.Domain = t.Domain
	m.ExpiresAt = t.ExpiresAt
	m.TrialEndsAt = t.TrialEndsAt
	m.ConfigMaxUsers = t.Config.MaxUsers
	m.ConfigMaxPipelines = t.Config.MaxPipelines
	m.ConfigFeatures = t.Config.Features
	m.ConfigSettings = t.Config.Settings
	m.ConfigCurrency = t.Config.Currency
	m.ConfigTimezone = t.Config.Timezone
	m.ConfigLocale = t.Config.Locale
	m.Notes = t.Notes
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	TenantAggregateModel
	Username           string              `gorm:"type:varchar(100);not null"`
	Email              string              `gorm:"type:varchar(200)"`
	Phone              string              `gorm:"type:varchar(50)"`
	PasswordHash       string              `gorm:"type:varchar(255);not null"`
	DisplayName        string              `gorm:"type:varchar(200)"`
	AvatarURL          string              `gorm:"type:varchar(500)"`
	Status             identity.UserStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	DepartmentID       *uuid.UUID          `gorm:"type:uuid;index"`
	TeamID             *uuid.UUID          `gorm:"type:uuid;index"`
	LastLoginAt        *time.Time          `gorm:"index"`
	LastLoginIP        string              `gorm:"type:varchar(45)"`
	FailedAttempts     int                 `gorm:"not null;default:0"`
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool   `gorm:"not null;default:false"`
	Notes              string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Note: RoleIDs must be loaded separately by the repository.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Username:           m.Username,
		Email:              m.Email,
		Phone:              m.Phone,
		PasswordHash:       m.PasswordHash,
		DisplayName:        m.DisplayName,
		AvatarURL:          m.AvatarURL,
		Status:             m.Status,
		DepartmentID:       m.DepartmentID,
		TeamID:             m.TeamID,
		RoleIDs:            make([]uuid.UUID, 0), // Loaded separately
		LastLoginAt:        m.LastLoginAt,
		LastLoginIP:        m.LastLoginIP,
		FailedAttempts:     m.FailedAttempts,
		LockedUntil:        m.LockedUntil,
		PasswordChangedAt:  m.PasswordChangedAt,
		MustChangePassword: m.MustChangePassword,
		Notes:              m.Notes,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.AvatarURL = u.AvatarURL
	m.Status = u.Status
	m.DepartmentID = u.DepartmentID
	m.TeamID = u.TeamID
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.PasswordChangedAt = u.PasswordChangedAt
	m.MustChangePassword = u.MustChangePassword
	m.Notes = u.Notes
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserRoleModel is the persistence model for the UserRole relationship.
type UserRoleModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// ToDomain converts the persistence model to a domain UserRole.
func (m *UserRoleModel) ToDomain() identity.UserRole {
	return identity.UserRole{
		UserID:    m.UserID,
		RoleID:    m.RoleID,
		TenantID:  m.TenantID,
		CreatedAt: m.CreatedAt,
	}
}

// RoleModel is the persistence model for the Role domain entity.
type RoleModel struct {
	TenantAggregateModel
	Code         string `gorm:"type:varchar(50);not null"`
	Name         string `gorm:"type:varchar(100);not null"`
	Description  string `gorm:"type:text"`
	IsSystemRole bool   `gorm:"not null;default:false"`
	IsEnabled    bool   `gorm:"not null;default:true"`
	SortOrder    int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role entity.
// Note: Permissions and DataScopes must be loaded separately by the repository.
func (m *RoleModel) ToDomain() *identity.Role {
	return &identity.Role{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Code:         m.Code,
		Name:         m.Name,
		Description:  m.Description,
		IsSystemRole: m.IsSystemRole,
		IsEnabled:    m.IsEnabled,
		SortOrder:    m.SortOrder,
		Permissions:  make([]identity.Permission, 0),
		DataScopes:   make([]identity.DataScope, 0),
	}
}

// FromDomain populates the persistence model from a domain Role entity.
func (m *RoleModel) FromDomain(r *identity.Role) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.Description = r.Description
	m.IsSystemRole = r.IsSystemRole
	m.IsEnabled = r.IsEnabled
	m.SortOrder = r.SortOrder
}

// RoleModelFromDomain creates a new persistence model from a domain Role entity.
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	m := &RoleModel{}
	m.FromDomain(r)
	return m
}

// RolePermissionModel is the persistence model for role permissions.
type RolePermissionModel struct {
	RoleID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Code        string    `gorm:"type:varchar(100);primaryKey"`
	Resource    string    `gorm:"type:varchar(50);not null;index"`
	Action      string    `gorm:"type:varchar(50);not null"`
	Description string    `gorm:"type:varchar(200)"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}

// ToDomain converts the persistence model to a domain Permission.
func (m *RolePermissionModel) ToDomain() identity.Permission {
	return identity.Permission{
		Code:        m.Code,
		Resource:    m.Resource,
		Action:      m.Action,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain Permission.
func (m *RolePermissionModel) FromDomain(roleID, tenantID uuid.UUID, p identity.Permission) {
	m.RoleID = roleID
	m.TenantID = tenantID
	m.Code = p.Code
	m.Resource = p.Resource
	m.Action = p.Action
	m.Description = p.Description
	m.CreatedAt = time.Now()
}

// RoleDataScopeModel is the persistence model for role data scopes.
type RoleDataScopeModel struct {
	RoleID      uuid.UUID              `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Resource    string                 `gorm:"type:varchar(50);primaryKey"`
	ScopeType   identity.DataScopeType `gorm:"type:varchar(20);not null"`
	ScopeField  string                 `gorm:"type:varchar(50)"`
	ScopeValues string                 `gorm:"type:jsonb;default:'[]'"`
	Description string                 `gorm:"type:varchar(200)"`
	CreatedAt   time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RoleDataScopeModel) TableName() string {
	return "role_data_scopes"
}

// ToDomain converts the persistence model to a domain DataScope.
func (m *RoleDataScopeModel) ToDomain() identity.DataScope {
	return identity.DataScope{
		Resource:    m.Resource,
		ScopeType:   m.ScopeType,
		ScopeField:  m.ScopeField,
		ScopeValues: unmarshalStringSlice(m.ScopeValues),
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain DataScope.
func (m *RoleDataScopeModel) FromDomain(roleID, tenantID uuid.UUID, ds identity.DataScope) {
	m.RoleID = roleID
	m.TenantID = tenantID
	m.Resource = ds.Resource
	m.ScopeType = ds.ScopeType
	m.ScopeField = ds.ScopeField
	m.ScopeValues = marshalJSON(ds.ScopeValues, "[]")
	m.Description = ds.Description
	m.CreatedAt = time.Now()
}

// TeamModel is the persistence model for the Team domain entity.
type TeamModel struct {
	TenantAggregateModel
	Name        string              `gorm:"type:varchar(200);not null"`
	Description string              `gorm:"type:text"`
	LeadUserID  *uuid.UUID          `gorm:"type:uuid;index"`
	Status      identity.TeamStatus `gorm:"type:varchar(20);not null;default:'active'"`
	SortOrder   int                 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (TeamModel) TableName() string {
	return "teams"
}

// ToDomain converts the persistence model to a domain Team entity.
// Note: MemberIDs must be loaded separately by the repository.
func (m *TeamModel) ToDomain() *identity.Team {
	return &identity.Team{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Name:        m.Name,
		Description: m.Description,
		LeadUserID:  m.LeadUserID,
		MemberIDs:   make([]uuid.UUID, 0), // Loaded separately
		Status:      m.Status,
		SortOrder:   m.SortOrder,
	}
}

// FromDomain populates the persistence model from a domain Team entity.
func (m *TeamModel) FromDomain(t *identity.Team) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Name = t.Name
	m.Description = t.Description
	m.LeadUserID = t.LeadUserID
	m.Status = t.Status
	m.SortOrder = t.SortOrder
}

// TeamModelFromDomain creates a new persistence model from a domain Team entity.
func TeamModelFromDomain(t *identity.Team) *TeamModel {
	m := &TeamModel{}
	m.FromDomain(t)
	return m
}

// TeamMemberModel is the persistence model for team membership rows.
type TeamMemberModel struct {
	TeamID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TeamMemberModel) TableName() string {
	return "team_members"
}

// DepartmentModel is the persistence model for the Department domain entity.
type DepartmentModel struct {
	TenantAggregateModel
	Code        string                    `gorm:"type:varchar(50);not null"`
	Name        string                    `gorm:"type:varchar(200);not null"`
	Description string                    `gorm:"type:text"`
	ParentID    *uuid.UUID                `gorm:"type:uuid;index"`
	Path        string                    `gorm:"type:varchar(1000);not null;index"`
	Level       int                       `gorm:"not null;default:0"`
	SortOrder   int                       `gorm:"not null;default:0"`
	ManagerID   *uuid.UUID                `gorm:"type:uuid;index"`
	Status      identity.DepartmentStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Metadata    string                    `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (DepartmentModel) TableName() string {
	return "departments"
}

// ToDomain converts the persistence model to a domain Department entity.
func (m *DepartmentModel) ToDomain() *identity.Department {
	return &identity.Department{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		ParentID:    m.ParentID,
		Path:        m.Path,
		Level:       m.Level,
		SortOrder:   m.SortOrder,
		ManagerID:   m.ManagerID,
		Status:      m.Status,
		Metadata:    unmarshalStringMap(m.Metadata),
	}
}

// FromDomain populates the persistence model from a domain Department entity.
func (m *DepartmentModel) FromDomain(d *identity.Department) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Code = d.Code
	m.Name = d.Name
	m.Description = d.Description
	m.ParentID = d.ParentID
	m.Path = d.Path
	m.Level = d.Level
	m.SortOrder = d.SortOrder
	m.ManagerID = d.ManagerID
	m.Status = d.Status
	m.Metadata = marshalJSON(d.Metadata, "{}")
}

// DepartmentModelFromDomain creates a new persistence model from a domain Department entity.
func DepartmentModelFromDomain(d *identity.Department) *DepartmentModel {
	m := &DepartmentModel{}
	m.FromDomain(d)
	return m
}
