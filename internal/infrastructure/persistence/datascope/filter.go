// Package datascope provides data-level permission filtering for GORM queries.
//
// This package implements automatic data scope filtering based on user roles
// and their data scope configurations. It supports five scope types:
//   - ALL: Access all data within the tenant
//   - SELF: Only records owned by the current user
//   - TEAM: Records owned by the user's team
//   - DEPARTMENT: Records owned by users in the user's department
//   - CUSTOM: Custom-defined scope values (e.g., specific owners or teams)
//
// Usage:
//
//	filter := datascope.NewFilter(ctx, roles)
//	scopedDB := filter.Apply(db, "opportunity")
//	scopedDB.Find(&opportunities) // WHERE owner_id = ? is auto-added for SELF scope
package datascope

import (
	"context"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataScopeContextKey is the context key for data scopes
type DataScopeContextKey string

const (
	// ScopesKey is the context key for storing user's data scopes
	ScopesKey DataScopeContextKey = "data_scopes"
	// TeamIDKey is the context key for storing the user's team ID
	TeamIDKey DataScopeContextKey = "team_id"
	// DepartmentIDKey is the context key for storing the user's department ID
	DepartmentIDKey DataScopeContextKey = "department_id"
)

// Filter applies data scope filtering to GORM queries
type Filter struct {
	ctx          context.Context
	userID       uuid.UUID
	teamID       *uuid.UUID
	departmentID *uuid.UUID
	dataScopes   map[string]identity.DataScope // resource -> data scope
}

// NewFilter creates a new DataScope filter from roles
func NewFilter(ctx context.Context, roles []identity.Role) *Filter {
	return &Filter{
		ctx:          ctx,
		userID:       userIDFromContext(ctx),
		teamID:       TeamIDFromContext(ctx),
		departmentID: DepartmentIDFromContext(ctx),
		dataScopes:   mergeRoleScopes(roles),
	}
}

// NewFilterFromContext creates a Filter from context if scopes are stored there
func NewFilterFromContext(ctx context.Context) *Filter {
	dataScopes := make(map[string]identity.DataScope)
	if scopes, ok := ctx.Value(ScopesKey).(map[string]identity.DataScope); ok {
		dataScopes = scopes
	}

	return &Filter{
		ctx:          ctx,
		userID:       userIDFromContext(ctx),
		teamID:       TeamIDFromContext(ctx),
		departmentID: DepartmentIDFromContext(ctx),
		dataScopes:   dataScopes,
	}
}

// WithDataScopes adds data scopes to context
func WithDataScopes(ctx context.Context, roles []identity.Role) context.Context {
	return context.WithValue(ctx, ScopesKey, mergeRoleScopes(roles))
}

// WithTeamID adds the user's team ID to context
func WithTeamID(ctx context.Context, teamID uuid.UUID) context.Context {
	return context.WithValue(ctx, TeamIDKey, teamID)
}

// WithDepartmentID adds the user's department ID to context
func WithDepartmentID(ctx context.Context, departmentID uuid.UUID) context.Context {
	return context.WithValue(ctx, DepartmentIDKey, departmentID)
}

// TeamIDFromContext extracts the user's team ID from context
func TeamIDFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(TeamIDKey).(uuid.UUID); ok {
		return &id
	}
	return nil
}

// DepartmentIDFromContext extracts the user's department ID from context
func DepartmentIDFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(DepartmentIDKey).(uuid.UUID); ok {
		return &id
	}
	return nil
}

// Apply applies data scope filtering for a specific resource
func (f *Filter) Apply(db *gorm.DB, resource string) *gorm.DB {
	ds, exists := f.dataScopes[resource]
	if !exists {
		// No data scope configured for this resource, default to ALL
		return db
	}

	switch ds.ScopeType {
	case identity.DataScopeAll:
		// No additional filtering needed
		return db

	case identity.DataScopeSelf:
		// Filter to only records owned by the current user
		if f.userID == uuid.Nil {
			// No user ID - return empty result (safety)
			return db.Where("1 = 0")
		}
		return db.Where(f.ownerField(ds)+" = ?", f.userID)

	case identity.DataScopeTeam:
		// Records owned by the user's team. CRM records carry a team_id
		// column set at assignment time.
		if f.teamID == nil {
			// Not on a team - restrict to own records
			if f.userID == uuid.Nil {
				return db.Where("1 = 0")
			}
			return db.Where(f.ownerField(ds)+" = ?", f.userID)
		}
		return db.Where("team_id = ?", *f.teamID)

	case identity.DataScopeDepartment:
		// Records owned by any user in the user's department
		if f.departmentID == nil {
			if f.userID == uuid.Nil {
				return db.Where("1 = 0")
			}
			return db.Where(f.ownerField(ds)+" = ?", f.userID)
		}
		return db.Where(
			f.ownerField(ds)+" IN (SELECT id FROM users WHERE department_id = ?)",
			*f.departmentID,
		)

	case identity.DataScopeCustom:
		// Custom scope filtering based on scope field and values
		if len(ds.ScopeValues) == 0 {
			// No scope values defined - return empty result
			return db.Where("1 = 0")
		}
		field := ds.ScopeField
		// Validate field name against whitelist to prevent SQL injection
		if field == "" || !allowedScopeFields[field] {
			field = "owner_id"
		}
		return db.Where(field+" IN ?", ds.ScopeValues)

	default:
		// Unknown scope type - fall back to ALL
		return db
	}
}

// ownerField returns the column holding the record owner. CRM records use
// owner_id; a scope may override it (e.g. created_by for audit-style tables).
func (f *Filter) ownerField(ds identity.DataScope) string {
	if ds.ScopeField != "" && allowedScopeFields[ds.ScopeField] {
		return ds.ScopeField
	}
	return "owner_id"
}

// ApplyToQuery applies data scope filtering and returns a GORM scope function
func (f *Filter) ApplyToQuery(resource string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return f.Apply(db, resource)
	}
}

// GetScopeType returns the scope type for a resource
func (f *Filter) GetScopeType(resource string) identity.DataScopeType {
	if ds, exists := f.dataScopes[resource]; exists {
		return ds.ScopeType
	}
	return identity.DataScopeAll
}

// HasScope returns true if there's a scope defined for the resource
func (f *Filter) HasScope(resource string) bool {
	_, exists := f.dataScopes[resource]
	return exists
}

// GetUserID returns the current user ID
func (f *Filter) GetUserID() uuid.UUID {
	return f.userID
}

// CanAccessAll returns true if the user has ALL scope for the resource
func (f *Filter) CanAccessAll(resource string) bool {
	ds, exists := f.dataScopes[resource]
	if !exists {
		return true // No scope = full access
	}
	return ds.ScopeType == identity.DataScopeAll
}

// IsOwner checks if the current user owns a record
func (f *Filter) IsOwner(ownerID *uuid.UUID) bool {
	if ownerID == nil || f.userID == uuid.Nil {
		return false
	}
	return *ownerID == f.userID
}

// ScopeFunc is a GORM scope function type
type ScopeFunc func(*gorm.DB) *gorm.DB

// DataScopeScope creates a GORM scope for data scope filtering
func DataScopeScope(ctx context.Context, resource string, roles []identity.Role) ScopeFunc {
	filter := NewFilter(ctx, roles)
	return filter.ApplyToQuery(resource)
}

// DataScopeScopeFromContext creates a GORM scope using scopes from context
func DataScopeScopeFromContext(ctx context.Context, resource string) ScopeFunc {
	filter := NewFilterFromContext(ctx)
	return filter.ApplyToQuery(resource)
}

func userIDFromContext(ctx context.Context) uuid.UUID {
	userIDStr := logger.GetUserID(ctx)
	if userIDStr == "" {
		return uuid.Nil
	}
	userID, _ := uuid.Parse(userIDStr)
	return userID
}

// mergeRoleScopes merges data scopes from all enabled roles.
// Higher permission level wins (ALL > DEPARTMENT > TEAM > CUSTOM > SELF).
func mergeRoleScopes(roles []identity.Role) map[string]identity.DataScope {
	dataScopes := make(map[string]identity.DataScope)
	for _, role := range roles {
		if !role.IsEnabled {
			continue
		}
		for _, ds := range role.DataScopes {
			existing, exists := dataScopes[ds.Resource]
			if !exists || compareScopeLevel(ds.ScopeType, existing.ScopeType) > 0 {
				dataScopes[ds.Resource] = ds
			}
		}
	}
	return dataScopes
}

// compareScopeLevel compares two scope types and returns:
//
//	positive if a > b (a has more access)
//	negative if a < b (a has less access)
//	zero if equal
func compareScopeLevel(a, b identity.DataScopeType) int {
	levels := map[identity.DataScopeType]int{
		identity.DataScopeAll:        100,
		identity.DataScopeDepartment: 50,
		identity.DataScopeTeam:       40,
		identity.DataScopeCustom:     30,
		identity.DataScopeSelf:       10,
	}

	levelA := levels[a]
	levelB := levels[b]

	return levelA - levelB
}

// MergeScopes merges multiple data scopes, keeping the highest permission level
func MergeScopes(scopesList ...[]identity.DataScope) map[string]identity.DataScope {
	merged := make(map[string]identity.DataScope)
	for _, scopes := range scopesList {
		for _, ds := range scopes {
			existing, exists := merged[ds.Resource]
			if !exists || compareScopeLevel(ds.ScopeType, existing.ScopeType) > 0 {
				merged[ds.Resource] = ds
			}
		}
	}
	return merged
}

// allowedScopeFields defines valid field names that can be used in scope filtering.
// This whitelist prevents SQL injection via dynamic field names.
var allowedScopeFields = map[string]bool{
	"owner_id":   true,
	"team_id":    true,
	"created_by": true,
	"author_id":  true,
}
