package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTeam(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates team with valid input", func(t *testing.T) {
		team, err := NewTeam(tenantID, "Enterprise Sales")

		require.NoError(t, err)
		assert.Equal(t, "Enterprise Sales", team.Name)
		assert.Equal(t, TeamStatusActive, team.Status)
		assert.Empty(t, team.MemberIDs)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewTeam(tenantID, "  ")
		require.Error(t, err)
	})
}

func TestTeamMembership(t *testing.T) {
	tenantID := uuid.New()

	t.Run("add and remove members", func(t *testing.T) {
		team, err := NewTeam(tenantID, "Enterprise Sales")
		require.NoError(t, err)

		userA := uuid.New()
		userB := uuid.New()

		require.NoError(t, team.AddMember(userA))
		require.NoError(t, team.AddMember(userB))
		assert.True(t, team.HasMember(userA))

		require.NoError(t, team.RemoveMember(userA))
		assert.False(t, team.HasMember(userA))
		assert.True(t, team.HasMember(userB))
	})

	t.Run("rejects duplicate member", func(t *testing.T) {
		team, err := NewTeam(tenantID, "Enterprise Sales")
		require.NoError(t, err)

		userA := uuid.New()
		require.NoError(t, team.AddMember(userA))
		require.Error(t, team.AddMember(userA))
	})

	t.Run("setting lead adds lead to members", func(t *testing.T) {
		team, err := NewTeam(tenantID, "Enterprise Sales")
		require.NoError(t, err)

		lead := uuid.New()
		team.SetLead(&lead)

		require.NotNil(t, team.LeadUserID)
		assert.True(t, team.HasMember(lead))
	})

	t.Run("cannot remove the team lead", func(t *testing.T) {
		team, err := NewTeam(tenantID, "Enterprise Sales")
		require.NoError(t, err)

		lead := uuid.New()
		team.SetLead(&lead)

		err = team.RemoveMember(lead)
		require.Error(t, err)
	})

	t.Run("set members keeps lead", func(t *testing.T) {
		team, err := NewTeam(tenantID, "Enterprise Sales")
		require.NoError(t, err)

		lead := uuid.New()
		team.SetLead(&lead)

		other := uuid.New()
		team.SetMembers([]uuid.UUID{other})

		assert.True(t, team.HasMember(other))
		assert.True(t, team.HasMember(lead))
	})
}
