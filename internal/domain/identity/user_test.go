package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates user with valid input", func(t *testing.T) {
		user, err := NewUser(tenantID, "jsmith", "secret-password")

		require.NoError(t, err)
		assert.Equal(t, "jsmith", user.Username)
		assert.Equal(t, UserStatusPending, user.Status)
		assert.Equal(t, tenantID, user.TenantID)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "secret-password", user.PasswordHash)
	})

	t.Run("lowercases username", func(t *testing.T) {
		user, err := NewUser(tenantID, "JSmith", "secret-password")

		require.NoError(t, err)
		assert.Equal(t, "jsmith", user.Username)
	})

	t.Run("rejects short username", func(t *testing.T) {
		_, err := NewUser(tenantID, "ab", "secret-password")
		require.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser(tenantID, "jsmith", "short")
		require.Error(t, err)
	})

	t.Run("active user is created active", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")

		require.NoError(t, err)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.True(t, user.IsActive())
	})
}

func TestUserPassword(t *testing.T) {
	tenantID := uuid.New()

	t.Run("verify password", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		assert.True(t, user.VerifyPassword("secret-password"))
		assert.False(t, user.VerifyPassword("wrong-password"))
	})

	t.Run("change password requires current password", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		err = user.ChangePassword("wrong-password", "new-password-1")
		require.Error(t, err)

		err = user.ChangePassword("secret-password", "new-password-1")
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("new-password-1"))
	})

	t.Run("reset password flags must-change", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		require.NoError(t, user.ResetPassword("temporary-pass-1"))

		assert.True(t, user.MustChangePassword)
		assert.True(t, user.VerifyPassword("temporary-pass-1"))
	})
}

func TestUserLocking(t *testing.T) {
	tenantID := uuid.New()

	t.Run("locks after repeated failed logins", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		for i := 0; i < maxFailedAttempts; i++ {
			user.RecordFailedLogin(15 * time.Minute)
		}

		assert.Equal(t, UserStatusLocked, user.Status)
		assert.True(t, user.IsLocked())
		assert.False(t, user.IsActive())
		require.NotNil(t, user.LockedUntil)
	})

	t.Run("successful login resets failed attempts", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		user.RecordFailedLogin(15 * time.Minute)
		user.RecordFailedLogin(15 * time.Minute)
		user.RecordLogin("192.0.2.10")

		assert.Equal(t, 0, user.FailedAttempts)
		assert.Equal(t, "192.0.2.10", user.LastLoginIP)
		require.NotNil(t, user.LastLoginAt)
	})

	t.Run("unlock restores active status", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		until := time.Now().Add(time.Hour)
		require.NoError(t, user.Lock(&until))
		assert.True(t, user.IsLocked())

		require.NoError(t, user.Unlock())
		assert.True(t, user.IsActive())
		assert.Nil(t, user.LockedUntil)
	})
}

func TestUserRoles(t *testing.T) {
	tenantID := uuid.New()

	t.Run("assign roles deduplicates", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		roleA := uuid.New()
		roleB := uuid.New()
		user.AssignRoles([]uuid.UUID{roleA, roleB, roleA})

		assert.Len(t, user.RoleIDs, 2)
		assert.True(t, user.HasRole(roleA))
		assert.True(t, user.HasRole(roleB))
		assert.False(t, user.HasRole(uuid.New()))
	})
}

func TestUserProfile(t *testing.T) {
	tenantID := uuid.New()

	t.Run("set email normalizes", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		require.NoError(t, user.SetEmail("J.Smith@Example.COM"))
		assert.Equal(t, "j.smith@example.com", user.Email)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		require.Error(t, user.SetEmail("not-an-email"))
	})

	t.Run("team and department assignment", func(t *testing.T) {
		user, err := NewActiveUser(tenantID, "jsmith", "secret-password")
		require.NoError(t, err)

		teamID := uuid.New()
		deptID := uuid.New()
		user.SetTeam(&teamID)
		user.SetDepartment(&deptID)

		require.NotNil(t, user.TeamID)
		assert.Equal(t, teamID, *user.TeamID)
		require.NotNil(t, user.DepartmentID)
		assert.Equal(t, deptID, *user.DepartmentID)
	})
}
