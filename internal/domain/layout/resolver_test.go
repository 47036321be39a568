package layout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// country -> state -> city dependency chain used across the resolver tests
func dependencyFields(t *testing.T) []CustomField {
	t.Helper()
	tenantID := uuid.New()

	country, err := NewCustomField(tenantID, ModuleAccount, "country", "Country", FieldTypeSelect)
	require.NoError(t, err)
	require.NoError(t, country.SetOptions([]string{"US", "DE"}))

	state, err := NewCustomField(tenantID, ModuleAccount, "state", "State", FieldTypeSelect)
	require.NoError(t, err)
	require.NoError(t, state.SetDependency("country", map[string][]string{
		"US": {"CA", "NY"},
		"DE": {"BY", "BE"},
	}))

	city, err := NewCustomField(tenantID, ModuleAccount, "city", "City", FieldTypeSelect)
	require.NoError(t, err)
	require.NoError(t, city.SetDependency("state", map[string][]string{
		"CA": {"San Francisco", "Los Angeles"},
		"NY": {"New York"},
	}))

	return []CustomField{*country, *state, *city}
}

func TestResolverResolve(t *testing.T) {
	t.Run("dependent field disabled without parent value", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		states := r.Resolve(map[string]any{})

		assert.False(t, states["country"].Disabled)
		assert.True(t, states["state"].Disabled)
		assert.True(t, states["city"].Disabled)
	})

	t.Run("parent value enables child with conditional options", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		states := r.Resolve(map[string]any{"country": "US"})

		assert.False(t, states["state"].Disabled)
		assert.Equal(t, []string{"CA", "NY"}, states["state"].EffectiveOptions)
		assert.True(t, states["city"].Disabled)
	})

	t.Run("parent value without conditional entry keeps child disabled", func(t *testing.T) {
		fields := dependencyFields(t)
		r := NewResolver(fields)

		// DE has states but none of them has cities configured
		states := r.Resolve(map[string]any{"country": "DE", "state": "BY"})

		assert.False(t, states["state"].Disabled)
		assert.True(t, states["city"].Disabled)
	})

	t.Run("full chain enabled", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		states := r.Resolve(map[string]any{"country": "US", "state": "CA"})

		assert.False(t, states["city"].Disabled)
		assert.Equal(t, []string{"San Francisco", "Los Angeles"}, states["city"].EffectiveOptions)
	})

	t.Run("independent select exposes static options", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		states := r.Resolve(nil)

		assert.Equal(t, []string{"US", "DE"}, states["country"].EffectiveOptions)
	})

	t.Run("mutually dependent fields resolve as disabled", func(t *testing.T) {
		r := NewResolver(cyclicFields(t))

		states := r.Resolve(map[string]any{"ping": "a", "pong": "x"})

		assert.True(t, states["ping"].Disabled)
		assert.True(t, states["pong"].Disabled)
	})

	t.Run("longer cycle resolves as disabled", func(t *testing.T) {
		tenantID := uuid.New()
		mk := func(key string) *CustomField {
			f, err := NewCustomField(tenantID, ModuleAccount, key, key, FieldTypeSelect)
			require.NoError(t, err)
			return f
		}
		a, b, c := mk("a"), mk("b"), mk("c")
		require.NoError(t, a.SetDependency("c", map[string][]string{"v": {"w"}}))
		require.NoError(t, b.SetDependency("a", map[string][]string{"w": {"u"}}))
		require.NoError(t, c.SetDependency("b", map[string][]string{"u": {"v"}}))
		r := NewResolver([]CustomField{*a, *b, *c})

		states := r.Resolve(map[string]any{"a": "w", "b": "u", "c": "v"})

		assert.True(t, states["a"].Disabled)
		assert.True(t, states["b"].Disabled)
		assert.True(t, states["c"].Disabled)
	})
}

// two select fields pointing at each other; the resolver must not chase
// the loop
func cyclicFields(t *testing.T) []CustomField {
	t.Helper()
	tenantID := uuid.New()

	ping, err := NewCustomField(tenantID, ModuleAccount, "ping", "Ping", FieldTypeSelect)
	require.NoError(t, err)
	require.NoError(t, ping.SetDependency("pong", map[string][]string{"x": {"a"}}))

	pong, err := NewCustomField(tenantID, ModuleAccount, "pong", "Pong", FieldTypeSelect)
	require.NoError(t, err)
	require.NoError(t, pong.SetDependency("ping", map[string][]string{"a": {"x"}}))

	return []CustomField{*ping, *pong}
}

func TestResolverNormalize(t *testing.T) {
	t.Run("clears values of disabled fields", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		cleaned := r.Normalize(map[string]any{"state": "CA", "city": "San Francisco"})

		assert.NotContains(t, cleaned, "state")
		assert.NotContains(t, cleaned, "city")
	})

	t.Run("clears child value outside effective options after parent change", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		// state CA was valid for US; after switching to DE it is not
		cleaned := r.Normalize(map[string]any{"country": "DE", "state": "CA"})

		assert.Equal(t, "DE", cleaned["country"])
		assert.NotContains(t, cleaned, "state")
	})

	t.Run("keeps values still valid for new parent value", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		cleaned := r.Normalize(map[string]any{"country": "US", "state": "NY", "city": "New York"})

		assert.Equal(t, "US", cleaned["country"])
		assert.Equal(t, "NY", cleaned["state"])
		assert.Equal(t, "New York", cleaned["city"])
	})

	t.Run("drops unknown keys", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		cleaned := r.Normalize(map[string]any{"country": "US", "nonexistent": "x"})

		assert.NotContains(t, cleaned, "nonexistent")
	})

	t.Run("drops values of inactive fields", func(t *testing.T) {
		fields := dependencyFields(t)
		fields[0].Deactivate()
		r := NewResolver(fields)

		cleaned := r.Normalize(map[string]any{"country": "US"})

		assert.NotContains(t, cleaned, "country")
	})

	t.Run("filters multiselect to effective options", func(t *testing.T) {
		tenantID := uuid.New()
		parent, err := NewCustomField(tenantID, ModuleLead, "tier", "Tier", FieldTypeSelect)
		require.NoError(t, err)
		require.NoError(t, parent.SetOptions([]string{"basic", "premium"}))

		child, err := NewCustomField(tenantID, ModuleLead, "addons", "Add-ons", FieldTypeMultiselect)
		require.NoError(t, err)
		require.NoError(t, child.SetDependency("tier", map[string][]string{
			"premium": {"sla", "support"},
		}))

		r := NewResolver([]CustomField{*parent, *child})

		cleaned := r.Normalize(map[string]any{
			"tier":   "premium",
			"addons": []any{"sla", "training"},
		})

		assert.Equal(t, []string{"sla"}, cleaned["addons"])
	})
}

func TestResolverValidate(t *testing.T) {
	t.Run("accepts valid chain", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		err := r.Validate(map[string]any{"country": "US", "state": "CA", "city": "Los Angeles"})
		require.NoError(t, err)
	})

	t.Run("rejects option outside effective set", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		err := r.Validate(map[string]any{"country": "DE", "state": "CA"})
		require.Error(t, err)
	})

	t.Run("rejects value for disabled field", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		err := r.Validate(map[string]any{"state": "CA"})
		require.Error(t, err)
	})

	t.Run("enforces required fields", func(t *testing.T) {
		fields := dependencyFields(t)
		fields[0].Required = true
		r := NewResolver(fields)

		err := r.Validate(map[string]any{})
		require.Error(t, err)
	})

	t.Run("required dependent field skipped while disabled", func(t *testing.T) {
		fields := dependencyFields(t)
		fields[1].Required = true // state
		r := NewResolver(fields)

		err := r.Validate(map[string]any{})
		require.NoError(t, err)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		r := NewResolver(dependencyFields(t))

		err := r.Validate(map[string]any{"country": "US", "bogus": 1})
		require.Error(t, err)
	})

	t.Run("type checks", func(t *testing.T) {
		tenantID := uuid.New()
		mk := func(key string, ft FieldType) CustomField {
			f, err := NewCustomField(tenantID, ModuleContact, key, key, ft)
			require.NoError(t, err)
			return *f
		}

		fields := []CustomField{
			mk("age", FieldTypeNumber),
			mk("score", FieldTypeDecimal),
			mk("vip", FieldTypeCheckbox),
			mk("since", FieldTypeDate),
			mk("alt_email", FieldTypeEmail),
			mk("homepage", FieldTypeURL),
		}
		r := NewResolver(fields)

		require.NoError(t, r.Validate(map[string]any{
			"age":       float64(42),
			"score":     4.5,
			"vip":       true,
			"since":     "2024-03-01",
			"alt_email": "a@example.com",
			"homepage":  "https://example.com",
		}))

		require.Error(t, r.Validate(map[string]any{"age": 4.2}))
		require.Error(t, r.Validate(map[string]any{"vip": "yes"}))
		require.Error(t, r.Validate(map[string]any{"since": "03/01/2024"}))
		require.Error(t, r.Validate(map[string]any{"alt_email": "nope"}))
		require.Error(t, r.Validate(map[string]any{"homepage": "example.com"}))
	})
}
