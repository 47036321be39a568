package crm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(uuid.New(), "Sales Pipeline", PipelineTypeOpportunity)
	require.NoError(t, err)
	return p
}

func TestNewPipeline(t *testing.T) {
	t.Run("creates pipeline with valid input", func(t *testing.T) {
		p, err := NewPipeline(uuid.New(), "Sales Pipeline", PipelineTypeOpportunity)

		require.NoError(t, err)
		assert.Equal(t, "Sales Pipeline", p.Name)
		assert.Equal(t, PipelineTypeOpportunity, p.Type)
		assert.False(t, p.IsDefault)
		assert.Empty(t, p.Stages)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewPipeline(uuid.New(), "Sales Pipeline", PipelineType("deal"))
		require.Error(t, err)
	})
}

func TestPipelineStages(t *testing.T) {
	t.Run("add stages in order", func(t *testing.T) {
		p := newTestPipeline(t)

		s1, err := p.AddStage("Prospecting", 10, false, false)
		require.NoError(t, err)
		s2, err := p.AddStage("Negotiation", 60, false, false)
		require.NoError(t, err)

		assert.Equal(t, 0, s1.SortOrder)
		assert.Equal(t, 1, s2.SortOrder)
		assert.Equal(t, "Prospecting", p.FirstStage().Name)
	})

	t.Run("rejects duplicate stage name", func(t *testing.T) {
		p := newTestPipeline(t)

		_, err := p.AddStage("Prospecting", 10, false, false)
		require.NoError(t, err)
		_, err = p.AddStage("prospecting", 20, false, false)
		require.Error(t, err)
	})

	t.Run("rejects probability out of range", func(t *testing.T) {
		p := newTestPipeline(t)

		_, err := p.AddStage("Prospecting", 120, false, false)
		require.Error(t, err)
	})

	t.Run("rejects stage that is both won and lost", func(t *testing.T) {
		p := newTestPipeline(t)

		_, err := p.AddStage("Closed", 50, true, true)
		require.Error(t, err)
	})

	t.Run("won and lost stage lookup", func(t *testing.T) {
		p := newTestPipeline(t)

		_, err := p.AddStage("Prospecting", 10, false, false)
		require.NoError(t, err)
		_, err = p.AddStage("Closed Won", 100, true, false)
		require.NoError(t, err)
		_, err = p.AddStage("Closed Lost", 0, false, true)
		require.NoError(t, err)

		require.NotNil(t, p.WonStage())
		assert.Equal(t, "Closed Won", p.WonStage().Name)
		require.NotNil(t, p.LostStage())
		assert.Equal(t, "Closed Lost", p.LostStage().Name)
	})

	t.Run("remove stage renumbers order", func(t *testing.T) {
		p := newTestPipeline(t)

		s1, _ := p.AddStage("A", 10, false, false)
		_, _ = p.AddStage("B", 20, false, false)
		_, _ = p.AddStage("C", 30, false, false)

		require.NoError(t, p.RemoveStage(s1.ID))

		require.Len(t, p.Stages, 2)
		assert.Equal(t, 0, p.Stages[0].SortOrder)
		assert.Equal(t, 1, p.Stages[1].SortOrder)
	})

	t.Run("reorder stages", func(t *testing.T) {
		p := newTestPipeline(t)

		s1, _ := p.AddStage("A", 10, false, false)
		s2, _ := p.AddStage("B", 20, false, false)
		s3, _ := p.AddStage("C", 30, false, false)

		require.NoError(t, p.ReorderStages([]uuid.UUID{s3.ID, s1.ID, s2.ID}))

		assert.Equal(t, "C", p.Stages[0].Name)
		assert.Equal(t, "A", p.Stages[1].Name)
		assert.Equal(t, "B", p.Stages[2].Name)
		assert.Equal(t, "C", p.FirstStage().Name)
	})

	t.Run("reorder rejects incomplete permutation", func(t *testing.T) {
		p := newTestPipeline(t)

		s1, _ := p.AddStage("A", 10, false, false)
		_, _ = p.AddStage("B", 20, false, false)

		err := p.ReorderStages([]uuid.UUID{s1.ID})
		require.Error(t, err)

		err = p.ReorderStages([]uuid.UUID{s1.ID, uuid.New()})
		require.Error(t, err)
	})
}

func TestPipelineArchive(t *testing.T) {
	t.Run("archive and unarchive", func(t *testing.T) {
		p := newTestPipeline(t)

		require.NoError(t, p.Archive())
		assert.True(t, p.IsArchived)
		require.NoError(t, p.Unarchive())
		assert.False(t, p.IsArchived)
	})

	t.Run("cannot archive default pipeline", func(t *testing.T) {
		p := newTestPipeline(t)
		require.NoError(t, p.MarkDefault())

		err := p.Archive()
		require.Error(t, err)
	})

	t.Run("archived pipeline cannot become default", func(t *testing.T) {
		p := newTestPipeline(t)
		require.NoError(t, p.Archive())

		err := p.MarkDefault()
		require.Error(t, err)
	})
}
