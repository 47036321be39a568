package crm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLead(t *testing.T) *Lead {
	t.Helper()
	lead, err := NewLead(uuid.New(), "Baker")
	require.NoError(t, err)
	return lead
}

func TestNewLead(t *testing.T) {
	t.Run("creates lead with defaults", func(t *testing.T) {
		lead, err := NewLead(uuid.New(), "Baker")

		require.NoError(t, err)
		assert.Equal(t, LeadStatusNew, lead.Status)
		assert.Equal(t, LeadSourceOther, lead.Source)
		assert.Equal(t, LeadRatingWarm, lead.Rating)
		assert.Equal(t, "Baker", lead.FullName())
	})

	t.Run("rejects empty last name", func(t *testing.T) {
		_, err := NewLead(uuid.New(), "  ")
		require.Error(t, err)
	})
}

func TestLeadStatusMachine(t *testing.T) {
	t.Run("new to working to qualified", func(t *testing.T) {
		lead := newTestLead(t)

		require.NoError(t, lead.StartWorking())
		assert.Equal(t, LeadStatusWorking, lead.Status)

		require.NoError(t, lead.Qualify())
		assert.Equal(t, LeadStatusQualified, lead.Status)
		require.NotNil(t, lead.QualifiedAt)
	})

	t.Run("qualify directly from new", func(t *testing.T) {
		lead := newTestLead(t)

		require.NoError(t, lead.Qualify())
		assert.Equal(t, LeadStatusQualified, lead.Status)
	})

	t.Run("cannot start working twice", func(t *testing.T) {
		lead := newTestLead(t)

		require.NoError(t, lead.StartWorking())
		require.Error(t, lead.StartWorking())
	})

	t.Run("disqualify from any non-terminal status", func(t *testing.T) {
		lead := newTestLead(t)

		require.NoError(t, lead.Disqualify("no budget"))
		assert.Equal(t, LeadStatusDisqualified, lead.Status)
		assert.Equal(t, "no budget", lead.DisqualifyReason)
	})

	t.Run("reopen returns disqualified lead to working", func(t *testing.T) {
		lead := newTestLead(t)

		require.NoError(t, lead.Disqualify("no budget"))
		require.NoError(t, lead.Reopen())

		assert.Equal(t, LeadStatusWorking, lead.Status)
		assert.Empty(t, lead.DisqualifyReason)
	})

	t.Run("reopen requires disqualified status", func(t *testing.T) {
		lead := newTestLead(t)
		require.Error(t, lead.Reopen())
	})
}

func TestLeadConversion(t *testing.T) {
	t.Run("converts qualified lead", func(t *testing.T) {
		lead := newTestLead(t)
		require.NoError(t, lead.Qualify())

		contactID := uuid.New()
		accountID := uuid.New()
		err := lead.MarkConverted(ConversionResult{
			ContactID: contactID,
			AccountID: &accountID,
		})

		require.NoError(t, err)
		assert.Equal(t, LeadStatusConverted, lead.Status)
		assert.True(t, lead.IsConverted())
		require.NotNil(t, lead.ConvertedContactID)
		assert.Equal(t, contactID, *lead.ConvertedContactID)
		require.NotNil(t, lead.ConvertedAccountID)
		assert.Equal(t, accountID, *lead.ConvertedAccountID)
		assert.Nil(t, lead.ConvertedOpportunityID)
		require.NotNil(t, lead.ConvertedAt)
	})

	t.Run("requires qualified status", func(t *testing.T) {
		lead := newTestLead(t)

		err := lead.MarkConverted(ConversionResult{ContactID: uuid.New()})
		require.Error(t, err)
	})

	t.Run("requires a contact", func(t *testing.T) {
		lead := newTestLead(t)
		require.NoError(t, lead.Qualify())

		err := lead.MarkConverted(ConversionResult{})
		require.Error(t, err)
	})

	t.Run("converted lead is immutable", func(t *testing.T) {
		lead := newTestLead(t)
		require.NoError(t, lead.Qualify())
		require.NoError(t, lead.MarkConverted(ConversionResult{ContactID: uuid.New()}))

		err := lead.Update("Ann", "Baker", "", "", "", "", "", "")
		require.Error(t, err)

		err = lead.Disqualify("too late")
		require.Error(t, err)

		err = lead.MarkConverted(ConversionResult{ContactID: uuid.New()})
		require.Error(t, err)
	})
}

func TestLeadUpdates(t *testing.T) {
	t.Run("update normalizes fields", func(t *testing.T) {
		lead := newTestLead(t)

		err := lead.Update("Ann", "Baker", "CTO", "Baker Industries", "Ann@Example.com", "555-0100", "https://baker.example", "notes")

		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", lead.Email)
		assert.Equal(t, "Ann Baker", lead.FullName())
		assert.Equal(t, "Baker Industries", lead.Company)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		lead := newTestLead(t)

		err := lead.Update("Ann", "Baker", "", "", "not-an-email", "", "", "")
		require.Error(t, err)
	})

	t.Run("disqualified lead rejects edits until reopened", func(t *testing.T) {
		lead := newTestLead(t)
		require.NoError(t, lead.Disqualify("gone quiet"))

		err := lead.SetRating(LeadRatingHot)
		require.Error(t, err)

		require.NoError(t, lead.Reopen())
		require.NoError(t, lead.SetRating(LeadRatingHot))
	})

	t.Run("stage change records event", func(t *testing.T) {
		lead := newTestLead(t)
		lead.ClearDomainEvents()

		pipelineID := uuid.New()
		stageID := uuid.New()
		require.NoError(t, lead.SetPipelineStage(pipelineID, stageID))

		events := lead.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeLeadStageChanged, events[0].EventType())
	})
}
