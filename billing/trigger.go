package billing

import (
	"meilenstein-backend/models"
)

// Triggered reports whether a system milestone's condition has fired.
// Milestones whose predicate is false stay confirmed and are re-evaluated on
// the next run.
func Triggered(m *models.Milestone) (bool, error) {
	if m.Project == nil {
		return false, invariantf("milestone %s has no project loaded", m.DisplayName())
	}
	switch m.Trigger {
	case models.TriggerOnStart:
		return m.Project.State == models.ProjectOpened, nil
	case models.TriggerOnFinish:
		return m.Project.State == models.ProjectDone, nil
	case models.TriggerOnProgress:
		if m.TriggerProgress == nil {
			return false, validationErrorf(m.DisplayName(), "trigger %q requires trigger_progress", m.Trigger)
		}
		return m.Project.ProgressAmountRatio().GreaterThanOrEqual(*m.TriggerProgress), nil
	default:
		return false, validationErrorf(m.DisplayName(), "unknown trigger %q", m.Trigger)
	}
}

// EligibleByTrigger filters the confirmed, system-kind, uninvoiced subset
// whose trigger has fired. Evaluation is independent per milestone; an error
// on one does not swallow the others but does fail the call.
func EligibleByTrigger(milestones []*models.Milestone) ([]*models.Milestone, error) {
	var eligible []*models.Milestone
	for _, m := range milestones {
		if m.State != models.StateConfirmed || m.Kind != models.KindSystem {
			continue
		}
		if m.InvoiceID != nil || m.Invoice != nil {
			continue
		}
		fired, err := Triggered(m)
		if err != nil {
			return nil, err
		}
		if fired {
			eligible = append(eligible, m)
		}
	}
	return eligible, nil
}

// CheckTrigger evaluates triggers and invoices the eligible subset as one
// atomic batch.
func CheckTrigger(deps Deps, milestones []*models.Milestone) error {
	eligible, err := EligibleByTrigger(milestones)
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		return nil
	}
	return DoInvoice(deps, eligible)
}
