package billing

import (
	"meilenstein-backend/models"
)

// Action is a workflow transition request on a milestone batch.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionDraft   Action = "draft"
	ActionInvoice Action = "invoice"
	ActionCancel  Action = "cancel"
)

// transitions is the state machine: state x action -> next state. Anything
// not listed is rejected before mutation.
var transitions = map[models.MilestoneState]map[Action]models.MilestoneState{
	models.StateDraft: {
		ActionConfirm: models.StateConfirmed,
		ActionCancel:  models.StateCancel,
	},
	models.StateConfirmed: {
		ActionInvoice: models.StateInvoiced,
		ActionCancel:  models.StateCancel,
	},
	models.StateInvoiced: {
		ActionCancel: models.StateCancel,
	},
	models.StateCancel: {
		ActionDraft: models.StateDraft,
	},
}

// NextState resolves one transition or fails with a ValidationError naming
// the milestone.
func NextState(m *models.Milestone, action Action) (models.MilestoneState, error) {
	if next, ok := transitions[m.State][action]; ok {
		return next, nil
	}
	return "", validationErrorf(m.DisplayName(), "cannot %s a milestone in state %s", action, m.State)
}

// CanReset is the guard for cancel -> draft. A milestone holding an invoice
// must be duplicated instead of reset; a milestone of a finished project or a
// credit milestone never re-enters draft.
func CanReset(m *models.Milestone) error {
	if m.InvoiceID != nil || m.Invoice != nil {
		return validationErrorf(m.DisplayName(), "cannot reset a milestone with an invoice, duplicate it to reinvoice")
	}
	if m.Project != nil && m.Project.State == models.ProjectDone {
		return validationErrorf(m.DisplayName(), "cannot reset a milestone of a finished project")
	}
	if m.IsCredit {
		return validationErrorf(m.DisplayName(), "cannot reset a credit milestone")
	}
	return nil
}

// Confirm moves a draft batch to confirmed, numbering every milestone that
// does not carry a number yet. Guards run for the whole batch before any
// milestone is persisted.
func Confirm(store Store, numbers NumberSource, milestones []*models.Milestone) error {
	for _, m := range milestones {
		if _, err := NextState(m, ActionConfirm); err != nil {
			return err
		}
		if err := m.CheckFields(); err != nil {
			return validationErrorf(m.DisplayName(), "%v", err)
		}
	}
	for _, m := range milestones {
		if m.Number == "" {
			number, err := numbers.Allocate()
			if err != nil {
				return err
			}
			m.Number = number
		}
		m.State = models.StateConfirmed
		if err := store.SaveMilestone(m); err != nil {
			return err
		}
	}
	return nil
}

// Reset moves a cancelled batch back to draft, fail-fast on the first guarded
// milestone.
func Reset(store Store, milestones []*models.Milestone) error {
	for _, m := range milestones {
		if _, err := NextState(m, ActionDraft); err != nil {
			return err
		}
		if err := CanReset(m); err != nil {
			return err
		}
	}
	for _, m := range milestones {
		m.State = models.StateDraft
		if err := store.SaveMilestone(m); err != nil {
			return err
		}
	}
	return nil
}

// Cancel cancels a batch. A cancelled milestone retaining an invoice is a
// programming error upstream, not user input, so it aborts loudly.
func Cancel(store Store, milestones []*models.Milestone) error {
	for _, m := range milestones {
		if _, err := NextState(m, ActionCancel); err != nil {
			return err
		}
		if m.InvoiceID != nil || m.Invoice != nil {
			return invariantf("milestone %s cancelled while holding an invoice", m.DisplayName())
		}
	}
	for _, m := range milestones {
		m.State = models.StateCancel
		if err := store.SaveMilestone(m); err != nil {
			return err
		}
	}
	return nil
}

// markInvoiced is the pure state flip applied after line generation has
// succeeded for the batch. Milestones already invoiced on an earlier run are
// left alone so a re-run stays a no-op.
func markInvoiced(store Store, milestones []*models.Milestone) error {
	for _, m := range milestones {
		if m.State == models.StateInvoiced {
			continue
		}
		if _, err := NextState(m, ActionInvoice); err != nil {
			return err
		}
	}
	for _, m := range milestones {
		if m.State == models.StateInvoiced {
			continue
		}
		m.State = models.StateInvoiced
		if err := store.SaveMilestone(m); err != nil {
			return err
		}
	}
	return nil
}
