package layout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageLayout(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates layout", func(t *testing.T) {
		pl, err := NewPageLayout(tenantID, ModuleAccount, LayoutTypeDetail, "Standard Detail")
		require.NoError(t, err)

		assert.Equal(t, "Standard Detail", pl.Name)
		assert.False(t, pl.IsDefault)
		assert.Empty(t, pl.Body)
	})

	t.Run("rejects unknown layout type", func(t *testing.T) {
		_, err := NewPageLayout(tenantID, ModuleAccount, LayoutType("print"), "Print")
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewPageLayout(tenantID, ModuleAccount, LayoutTypeDetail, "  ")
		require.Error(t, err)
	})
}

func TestPageLayoutSetBody(t *testing.T) {
	tenantID := uuid.New()

	newLayout := func(t *testing.T) *PageLayout {
		t.Helper()
		pl, err := NewPageLayout(tenantID, ModuleOpportunity, LayoutTypeEdit, "Edit")
		require.NoError(t, err)
		return pl
	}

	t.Run("accepts ordered tabs and groups", func(t *testing.T) {
		pl := newLayout(t)

		err := pl.SetBody([]LayoutTab{
			{Title: "General", Groups: []LayoutGroup{
				{Title: "Basics", FieldKeys: []string{"name", "amount"}},
				{Title: "Timing", FieldKeys: []string{"close_date"}},
			}},
			{Title: "Details", Groups: []LayoutGroup{
				{Title: "Custom", FieldKeys: []string{"region"}},
			}},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"name", "amount", "close_date", "region"}, pl.FieldKeys())
		assert.True(t, pl.ContainsField("close_date"))
		assert.False(t, pl.ContainsField("stage"))
	})

	t.Run("rejects duplicate field placement across groups", func(t *testing.T) {
		pl := newLayout(t)

		err := pl.SetBody([]LayoutTab{
			{Groups: []LayoutGroup{
				{FieldKeys: []string{"name"}},
				{FieldKeys: []string{"Name"}},
			}},
		})
		require.Error(t, err)
	})

	t.Run("rejects empty field key", func(t *testing.T) {
		pl := newLayout(t)

		err := pl.SetBody([]LayoutTab{
			{Groups: []LayoutGroup{{FieldKeys: []string{"name", "  "}}}},
		})
		require.Error(t, err)
	})
}

func TestPageLayoutDefaultFlag(t *testing.T) {
	tenantID := uuid.New()

	pl, err := NewPageLayout(tenantID, ModuleLead, LayoutTypeCreate, "Quick Create")
	require.NoError(t, err)

	pl.MarkDefault()
	assert.True(t, pl.IsDefault)

	pl.ClearDefault()
	assert.False(t, pl.IsDefault)
}

func TestCustomFieldGroupColumns(t *testing.T) {
	tenantID := uuid.New()

	group, err := NewCustomFieldGroup(tenantID, ModuleContact, "Preferences")
	require.NoError(t, err)
	assert.Equal(t, 2, group.Columns)

	require.NoError(t, group.SetColumns(1))
	assert.Equal(t, 1, group.Columns)

	require.Error(t, group.SetColumns(0))
	require.Error(t, group.SetColumns(5))
}
