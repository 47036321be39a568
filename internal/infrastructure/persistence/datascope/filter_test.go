package datascope

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewFilter(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("creates filter with empty roles", func(t *testing.T) {
		ctx := context.Background()
		filter := NewFilter(ctx, []identity.Role{})

		assert.NotNil(t, filter)
		assert.Empty(t, filter.dataScopes)
	})

	t.Run("creates filter with user ID from context", func(t *testing.T) {
		ctx := context.Background()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), userID.String())

		filter := NewFilter(ctx, []identity.Role{})

		assert.Equal(t, userID, filter.userID)
	})

	t.Run("merges data scopes from multiple roles", func(t *testing.T) {
		ctx := context.Background()

		role1, _ := identity.NewRole(tenantID, "ROLE1", "Role 1")
		ds1, _ := identity.NewDataScope("opportunity", identity.DataScopeSelf)
		_ = role1.SetDataScope(*ds1)

		role2, _ := identity.NewRole(tenantID, "ROLE2", "Role 2")
		ds2, _ := identity.NewDataScope("opportunity", identity.DataScopeAll)
		_ = role2.SetDataScope(*ds2)

		filter := NewFilter(ctx, []identity.Role{*role1, *role2})

		// ALL wins over SELF
		assert.Equal(t, identity.DataScopeAll, filter.GetScopeType("opportunity"))
	})

	t.Run("ignores disabled roles", func(t *testing.T) {
		ctx := context.Background()

		role1, _ := identity.NewRole(tenantID, "ROLE1", "Role 1")
		ds1, _ := identity.NewDataScope("opportunity", identity.DataScopeAll)
		_ = role1.SetDataScope(*ds1)
		_ = role1.Disable()

		role2, _ := identity.NewRole(tenantID, "ROLE2", "Role 2")
		ds2, _ := identity.NewDataScope("opportunity", identity.DataScopeSelf)
		_ = role2.SetDataScope(*ds2)

		filter := NewFilter(ctx, []identity.Role{*role1, *role2})

		assert.Equal(t, identity.DataScopeSelf, filter.GetScopeType("opportunity"))
	})

	t.Run("picks up team and department from context", func(t *testing.T) {
		teamID := uuid.New()
		departmentID := uuid.New()
		ctx := WithTeamID(context.Background(), teamID)
		ctx = WithDepartmentID(ctx, departmentID)

		filter := NewFilter(ctx, []identity.Role{})

		assert.Equal(t, teamID, *filter.teamID)
		assert.Equal(t, departmentID, *filter.departmentID)
	})
}

func TestFilter_GetScopeType(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns ALL for unconfigured resource", func(t *testing.T) {
		filter := NewFilter(context.Background(), []identity.Role{})

		assert.Equal(t, identity.DataScopeAll, filter.GetScopeType("unconfigured_resource"))
	})

	t.Run("returns configured scope type", func(t *testing.T) {
		role, _ := identity.NewRole(tenantID, "SALES", "Sales")
		ds, _ := identity.NewDataScope("lead", identity.DataScopeTeam)
		_ = role.SetDataScope(*ds)

		filter := NewFilter(context.Background(), []identity.Role{*role})

		assert.Equal(t, identity.DataScopeTeam, filter.GetScopeType("lead"))
	})
}

func TestFilter_HasScope(t *testing.T) {
	tenantID := uuid.New()

	role, _ := identity.NewRole(tenantID, "SALES", "Sales")
	ds, _ := identity.NewDataScope("account", identity.DataScopeSelf)
	_ = role.SetDataScope(*ds)

	filter := NewFilter(context.Background(), []identity.Role{*role})

	assert.True(t, filter.HasScope("account"))
	assert.False(t, filter.HasScope("contact"))
}

func TestFilter_CanAccessAll(t *testing.T) {
	tenantID := uuid.New()

	t.Run("true when no scope configured", func(t *testing.T) {
		filter := NewFilter(context.Background(), []identity.Role{})

		assert.True(t, filter.CanAccessAll("opportunity"))
	})

	t.Run("true for ALL scope", func(t *testing.T) {
		role, _ := identity.NewRole(tenantID, "ADMIN", "Admin")
		ds, _ := identity.NewDataScope("opportunity", identity.DataScopeAll)
		_ = role.SetDataScope(*ds)

		filter := NewFilter(context.Background(), []identity.Role{*role})

		assert.True(t, filter.CanAccessAll("opportunity"))
	})

	t.Run("false for SELF scope", func(t *testing.T) {
		role, _ := identity.NewRole(tenantID, "SALES", "Sales")
		ds, _ := identity.NewDataScope("opportunity", identity.DataScopeSelf)
		_ = role.SetDataScope(*ds)

		filter := NewFilter(context.Background(), []identity.Role{*role})

		assert.False(t, filter.CanAccessAll("opportunity"))
	})
}

func TestFilter_IsOwner(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()

	ctx := context.Background()
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), userID.String())
	filter := NewFilter(ctx, []identity.Role{})

	t.Run("true when owner matches", func(t *testing.T) {
		assert.True(t, filter.IsOwner(&userID))
	})

	t.Run("false when owner differs", func(t *testing.T) {
		assert.False(t, filter.IsOwner(&otherID))
	})

	t.Run("false for nil owner", func(t *testing.T) {
		assert.False(t, filter.IsOwner(nil))
	})

	t.Run("false when no user in context", func(t *testing.T) {
		anonymous := NewFilter(context.Background(), []identity.Role{})
		assert.False(t, anonymous.IsOwner(&userID))
	})
}

func TestWithDataScopes(t *testing.T) {
	tenantID := uuid.New()

	role, _ := identity.NewRole(tenantID, "SALES", "Sales")
	ds, _ := identity.NewDataScope("lead", identity.DataScopeSelf)
	_ = role.SetDataScope(*ds)

	ctx := WithDataScopes(context.Background(), []identity.Role{*role})

	filter := NewFilterFromContext(ctx)

	assert.True(t, filter.HasScope("lead"))
	assert.Equal(t, identity.DataScopeSelf, filter.GetScopeType("lead"))
}

func TestCompareScopeLevel(t *testing.T) {
	tests := []struct {
		name     string
		a, b     identity.DataScopeType
		positive bool
	}{
		{"all beats department", identity.DataScopeAll, identity.DataScopeDepartment, true},
		{"department beats team", identity.DataScopeDepartment, identity.DataScopeTeam, true},
		{"team beats custom", identity.DataScopeTeam, identity.DataScopeCustom, true},
		{"custom beats self", identity.DataScopeCustom, identity.DataScopeSelf, true},
		{"self loses to all", identity.DataScopeSelf, identity.DataScopeAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compareScopeLevel(tt.a, tt.b)
			if tt.positive {
				assert.Positive(t, result)
			} else {
				assert.Negative(t, result)
			}
		})
	}
}

func TestMergeScopes(t *testing.T) {
	dsSelf, _ := identity.NewDataScope("opportunity", identity.DataScopeSelf)
	dsTeam, _ := identity.NewDataScope("opportunity", identity.DataScopeTeam)
	dsLead, _ := identity.NewDataScope("lead", identity.DataScopeAll)

	merged := MergeScopes(
		[]identity.DataScope{*dsSelf},
		[]identity.DataScope{*dsTeam, *dsLead},
	)

	assert.Len(t, merged, 2)
	assert.Equal(t, identity.DataScopeTeam, merged["opportunity"].ScopeType)
	assert.Equal(t, identity.DataScopeAll, merged["lead"].ScopeType)
}

func TestTeamAndDepartmentContext(t *testing.T) {
	t.Run("round-trips team ID", func(t *testing.T) {
		teamID := uuid.New()
		ctx := WithTeamID(context.Background(), teamID)

		got := TeamIDFromContext(ctx)
		assert.NotNil(t, got)
		assert.Equal(t, teamID, *got)
	})

	t.Run("round-trips department ID", func(t *testing.T) {
		departmentID := uuid.New()
		ctx := WithDepartmentID(context.Background(), departmentID)

		got := DepartmentIDFromContext(ctx)
		assert.NotNil(t, got)
		assert.Equal(t, departmentID, *got)
	})

	t.Run("nil when absent", func(t *testing.T) {
		assert.Nil(t, TeamIDFromContext(context.Background()))
		assert.Nil(t, DepartmentIDFromContext(context.Background()))
	})
}

func TestFilter_CustomScope(t *testing.T) {
	tenantID := uuid.New()

	t.Run("keeps whitelisted scope field", func(t *testing.T) {
		role, _ := identity.NewRole(tenantID, "REGIONAL", "Regional")
		ds, _ := identity.NewCustomDataScope("account", []string{uuid.New().String()})
		ds.ScopeField = "team_id"
		_ = role.SetDataScope(*ds)

		filter := NewFilter(context.Background(), []identity.Role{*role})

		got := filter.dataScopes["account"]
		assert.Equal(t, identity.DataScopeCustom, got.ScopeType)
		assert.Equal(t, "team_id", got.ScopeField)
	})

	t.Run("owner field falls back for non-whitelisted field", func(t *testing.T) {
		role, _ := identity.NewRole(tenantID, "REGIONAL", "Regional")
		ds, _ := identity.NewCustomDataScope("account", []string{"x"})
		ds.ScopeField = "name; DROP TABLE accounts"
		_ = role.SetDataScope(*ds)

		filter := NewFilter(context.Background(), []identity.Role{*role})

		assert.Equal(t, "owner_id", filter.ownerField(filter.dataScopes["account"]))
	})
}
