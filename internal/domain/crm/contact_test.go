package crm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContact(t *testing.T) *Contact {
	t.Helper()
	c, err := NewContact(uuid.New(), "Ann", "Baker")
	require.NoError(t, err)
	return c
}

func TestNewContact(t *testing.T) {
	t.Run("creates contact with valid input", func(t *testing.T) {
		c, err := NewContact(uuid.New(), "Ann", "Baker")

		require.NoError(t, err)
		assert.Equal(t, "Ann Baker", c.FullName())
		assert.Empty(t, c.Methods)
		assert.Empty(t, c.AccountLinks)
	})

	t.Run("rejects empty last name", func(t *testing.T) {
		_, err := NewContact(uuid.New(), "Ann", "")
		require.Error(t, err)
	})
}

func TestContactMethods(t *testing.T) {
	t.Run("first method of a kind becomes primary", func(t *testing.T) {
		c := newTestContact(t)

		m, err := c.AddMethod(ContactMethodEmail, "ann@example.com", "work", false)

		require.NoError(t, err)
		assert.True(t, m.IsPrimary)
	})

	t.Run("at most one primary per kind", func(t *testing.T) {
		c := newTestContact(t)

		_, err := c.AddMethod(ContactMethodEmail, "ann@example.com", "work", true)
		require.NoError(t, err)
		second, err := c.AddMethod(ContactMethodEmail, "ann@home.example", "home", true)
		require.NoError(t, err)

		primaries := 0
		for _, m := range c.Methods {
			if m.Kind == ContactMethodEmail && m.IsPrimary {
				primaries++
			}
		}
		assert.Equal(t, 1, primaries)
		assert.Equal(t, second.Value, c.PrimaryEmail())
	})

	t.Run("primary per kind is independent", func(t *testing.T) {
		c := newTestContact(t)

		_, err := c.AddMethod(ContactMethodEmail, "ann@example.com", "", true)
		require.NoError(t, err)
		_, err = c.AddMethod(ContactMethodPhone, "555-0100", "", true)
		require.NoError(t, err)

		require.NotNil(t, c.PrimaryMethod(ContactMethodEmail))
		require.NotNil(t, c.PrimaryMethod(ContactMethodPhone))
	})

	t.Run("set primary demotes previous", func(t *testing.T) {
		c := newTestContact(t)

		first, err := c.AddMethod(ContactMethodEmail, "ann@example.com", "", true)
		require.NoError(t, err)
		second, err := c.AddMethod(ContactMethodEmail, "ann@home.example", "", false)
		require.NoError(t, err)

		require.NoError(t, c.SetPrimaryMethod(second.ID))

		assert.Equal(t, "ann@home.example", c.PrimaryEmail())
		for _, m := range c.Methods {
			if m.ID == first.ID {
				assert.False(t, m.IsPrimary)
			}
		}
	})

	t.Run("rejects duplicate value", func(t *testing.T) {
		c := newTestContact(t)

		_, err := c.AddMethod(ContactMethodEmail, "ann@example.com", "", false)
		require.NoError(t, err)
		_, err = c.AddMethod(ContactMethodEmail, "Ann@Example.com", "", false)
		require.Error(t, err)
	})

	t.Run("rejects invalid email value", func(t *testing.T) {
		c := newTestContact(t)

		_, err := c.AddMethod(ContactMethodEmail, "not-an-email", "", false)
		require.Error(t, err)
	})

	t.Run("remove method", func(t *testing.T) {
		c := newTestContact(t)

		m, err := c.AddMethod(ContactMethodPhone, "555-0100", "", false)
		require.NoError(t, err)
		require.NoError(t, c.RemoveMethod(m.ID))
		require.Error(t, c.RemoveMethod(m.ID))
	})
}

func TestContactAccountLinks(t *testing.T) {
	t.Run("first link becomes primary", func(t *testing.T) {
		c := newTestContact(t)

		link, err := c.LinkAccount(uuid.New(), "decision maker", false)

		require.NoError(t, err)
		assert.True(t, link.IsPrimary)
	})

	t.Run("at most one primary link", func(t *testing.T) {
		c := newTestContact(t)

		a1 := uuid.New()
		a2 := uuid.New()
		_, err := c.LinkAccount(a1, "billing", true)
		require.NoError(t, err)
		_, err = c.LinkAccount(a2, "decision maker", true)
		require.NoError(t, err)

		primaries := 0
		for _, l := range c.AccountLinks {
			if l.IsPrimary {
				primaries++
			}
		}
		assert.Equal(t, 1, primaries)
		require.NotNil(t, c.PrimaryAccount())
		assert.Equal(t, a2, c.PrimaryAccount().AccountID)
	})

	t.Run("rejects duplicate link", func(t *testing.T) {
		c := newTestContact(t)

		accountID := uuid.New()
		_, err := c.LinkAccount(accountID, "billing", false)
		require.NoError(t, err)
		_, err = c.LinkAccount(accountID, "other", false)
		require.Error(t, err)
	})

	t.Run("set primary account", func(t *testing.T) {
		c := newTestContact(t)

		a1 := uuid.New()
		a2 := uuid.New()
		_, err := c.LinkAccount(a1, "", false)
		require.NoError(t, err)
		_, err = c.LinkAccount(a2, "", false)
		require.NoError(t, err)

		require.NoError(t, c.SetPrimaryAccount(a2))
		assert.Equal(t, a2, c.PrimaryAccount().AccountID)
	})

	t.Run("unlink account", func(t *testing.T) {
		c := newTestContact(t)

		accountID := uuid.New()
		_, err := c.LinkAccount(accountID, "", false)
		require.NoError(t, err)

		require.NoError(t, c.UnlinkAccount(accountID))
		require.Error(t, c.UnlinkAccount(accountID))
	})
}
