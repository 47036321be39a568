package crm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpportunity(t *testing.T) *Opportunity {
	t.Helper()
	opp, err := NewOpportunity(uuid.New(), "Enterprise license", uuid.New())
	require.NoError(t, err)
	return opp
}

func TestNewOpportunity(t *testing.T) {
	t.Run("creates opportunity with defaults", func(t *testing.T) {
		accountID := uuid.New()
		opp, err := NewOpportunity(uuid.New(), "Enterprise license", accountID)

		require.NoError(t, err)
		assert.Equal(t, OpportunityStatusOpen, opp.Status)
		assert.Equal(t, accountID, opp.AccountID)
		assert.True(t, opp.Amount.IsZero())
		assert.Equal(t, "USD", opp.Currency)
	})

	t.Run("requires an account", func(t *testing.T) {
		_, err := NewOpportunity(uuid.New(), "Enterprise license", uuid.Nil)
		require.Error(t, err)
	})
}

func TestOpportunityStage(t *testing.T) {
	t.Run("probability follows stage", func(t *testing.T) {
		opp := newTestOpportunity(t)

		require.NoError(t, opp.ChangeStage(uuid.New(), uuid.New(), 40))
		assert.Equal(t, 40, opp.Probability)

		require.NoError(t, opp.ChangeStage(uuid.New(), uuid.New(), 75))
		assert.Equal(t, 75, opp.Probability)
	})

	t.Run("pinned probability ignores stage changes", func(t *testing.T) {
		opp := newTestOpportunity(t)

		require.NoError(t, opp.PinProbability(55))
		require.NoError(t, opp.ChangeStage(uuid.New(), uuid.New(), 90))

		assert.Equal(t, 55, opp.Probability)

		require.NoError(t, opp.UnpinProbability(90))
		assert.Equal(t, 90, opp.Probability)
	})

	t.Run("rejects probability out of range", func(t *testing.T) {
		opp := newTestOpportunity(t)
		require.Error(t, opp.PinProbability(101))
	})
}

func TestOpportunityClose(t *testing.T) {
	t.Run("close won records amount and forces probability 100", func(t *testing.T) {
		opp := newTestOpportunity(t)
		require.NoError(t, opp.SetAmount(decimal.NewFromInt(10000), "EUR"))

		closedBy := uuid.New()
		final := decimal.NewFromInt(9500)
		require.NoError(t, opp.CloseWon(final, nil, &closedBy))

		assert.Equal(t, OpportunityStatusWon, opp.Status)
		assert.Equal(t, 100, opp.Probability)
		require.NotNil(t, opp.ActualAmount)
		assert.True(t, opp.ActualAmount.Equal(final))
		require.NotNil(t, opp.ClosedAt)
		require.NotNil(t, opp.ClosedBy)
		assert.Equal(t, closedBy, *opp.ClosedBy)
	})

	t.Run("close lost records reason and forces probability 0", func(t *testing.T) {
		opp := newTestOpportunity(t)

		require.NoError(t, opp.CloseLost("chose competitor", nil, nil))

		assert.Equal(t, OpportunityStatusLost, opp.Status)
		assert.Equal(t, 0, opp.Probability)
		assert.Equal(t, "chose competitor", opp.LossReason)
	})

	t.Run("closed opportunity rejects modification", func(t *testing.T) {
		opp := newTestOpportunity(t)
		require.NoError(t, opp.CloseLost("gone", nil, nil))

		require.Error(t, opp.Update("New name", "", ""))
		require.Error(t, opp.ChangeStage(uuid.New(), uuid.New(), 50))
		require.Error(t, opp.SetAmount(decimal.NewFromInt(1), "USD"))
		require.Error(t, opp.CloseWon(decimal.Zero, nil, nil))
	})

	t.Run("reopen clears close bookkeeping but keeps loss reason", func(t *testing.T) {
		opp := newTestOpportunity(t)
		require.NoError(t, opp.CloseLost("chose competitor", nil, nil))

		stageID := uuid.New()
		require.NoError(t, opp.Reopen(stageID, 30))

		assert.Equal(t, OpportunityStatusOpen, opp.Status)
		assert.Equal(t, 30, opp.Probability)
		assert.Nil(t, opp.ClosedAt)
		assert.Nil(t, opp.ClosedBy)
		assert.Nil(t, opp.ActualAmount)
		assert.Equal(t, "chose competitor", opp.LossReason)
		require.NotNil(t, opp.StageID)
		assert.Equal(t, stageID, *opp.StageID)
	})

	t.Run("cannot reopen an open opportunity", func(t *testing.T) {
		opp := newTestOpportunity(t)
		require.Error(t, opp.Reopen(uuid.New(), 10))
	})
}

func TestOpportunityAmounts(t *testing.T) {
	t.Run("rejects negative amount", func(t *testing.T) {
		opp := newTestOpportunity(t)
		require.Error(t, opp.SetAmount(decimal.NewFromInt(-1), "USD"))
	})

	t.Run("rejects bad currency", func(t *testing.T) {
		opp := newTestOpportunity(t)
		require.Error(t, opp.SetAmount(decimal.NewFromInt(1), "dollars"))
	})

	t.Run("weighted amount", func(t *testing.T) {
		opp := newTestOpportunity(t)
		require.NoError(t, opp.SetAmount(decimal.NewFromInt(1000), "USD"))
		require.NoError(t, opp.PinProbability(25))

		assert.True(t, opp.WeightedAmount().Equal(decimal.NewFromInt(250)))
	})
}
