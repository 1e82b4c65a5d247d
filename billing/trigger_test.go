package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meilenstein-backend/models"
)

func systemMilestone(id uint, project *models.Project, trigger models.MilestoneTrigger) *models.Milestone {
	m := fixedMilestone(id, project, "100")
	m.Kind = models.KindSystem
	m.Trigger = trigger
	return m
}

func TestTriggered(t *testing.T) {
	opened := testProject()
	done := testProject()
	done.State = models.ProjectDone

	t.Run("on_start fires while the project is open", func(t *testing.T) {
		fired, err := Triggered(systemMilestone(1, opened, models.TriggerOnStart))
		require.NoError(t, err)
		assert.True(t, fired)

		fired, err = Triggered(systemMilestone(2, done, models.TriggerOnStart))
		require.NoError(t, err)
		assert.False(t, fired)
	})

	t.Run("on_finish fires once the project is done", func(t *testing.T) {
		fired, err := Triggered(systemMilestone(1, opened, models.TriggerOnFinish))
		require.NoError(t, err)
		assert.False(t, fired)

		fired, err = Triggered(systemMilestone(2, done, models.TriggerOnFinish))
		require.NoError(t, err)
		assert.True(t, fired)
	})

	t.Run("on_progress compares against the threshold", func(t *testing.T) {
		project := testProject()
		project.Progress = dec("0.5")

		m := systemMilestone(1, project, models.TriggerOnProgress)
		m.TriggerProgress = decp("0.5")
		fired, err := Triggered(m)
		require.NoError(t, err)
		assert.True(t, fired, "reaching the threshold exactly fires")

		m.TriggerProgress = decp("0.6")
		fired, err = Triggered(m)
		require.NoError(t, err)
		assert.False(t, fired)
	})

	t.Run("on_progress with zero-valued project never fires", func(t *testing.T) {
		project := testProject()
		project.Quantity = dec("0")
		project.Progress = dec("1")

		m := systemMilestone(1, project, models.TriggerOnProgress)
		m.TriggerProgress = decp("0.5")
		fired, err := Triggered(m)
		require.NoError(t, err)
		assert.False(t, fired)
	})

	t.Run("on_progress without threshold is rejected", func(t *testing.T) {
		m := systemMilestone(1, opened, models.TriggerOnProgress)
		_, err := Triggered(m)
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
	})
}

func TestEligibleByTrigger(t *testing.T) {
	project := testProject()

	fired := systemMilestone(1, project, models.TriggerOnStart)
	manual := fixedMilestone(2, project, "100")
	draft := systemMilestone(3, project, models.TriggerOnStart)
	draft.State = models.StateDraft
	invoiced := systemMilestone(4, project, models.TriggerOnStart)
	invoiceID := uint(9)
	invoiced.InvoiceID = &invoiceID
	notDue := systemMilestone(5, project, models.TriggerOnFinish)

	eligible, err := EligibleByTrigger([]*models.Milestone{fired, manual, draft, invoiced, notDue})
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, uint(1), eligible[0].ID)
}

func TestCheckTriggerInvoicesEligibleSubset(t *testing.T) {
	store := &memStore{}
	project := testProject()
	m := systemMilestone(1, project, models.TriggerOnStart)

	require.NoError(t, CheckTrigger(testDeps(store), []*models.Milestone{m}))

	require.Len(t, store.invoices, 1)
	assert.Equal(t, models.StateInvoiced, m.State)
}

func TestCheckTriggerNoEligibleIsNoop(t *testing.T) {
	store := &memStore{}
	project := testProject()
	m := systemMilestone(1, project, models.TriggerOnFinish)

	require.NoError(t, CheckTrigger(testDeps(store), []*models.Milestone{m}))
	assert.Empty(t, store.invoices)
}
