package billing

import (
	"gorm.io/gorm"

	"meilenstein-backend/models"
)

// LoadMilestones fetches a milestone batch with everything the workflow,
// calculator and ledger read: products, invoices with lines, the project with
// its party, breakdown children and invoiced progress, and the sibling
// milestones' invoices for the reconciliation ledger. Children are preloaded
// three levels deep, which covers the breakdowns this module produces.
func LoadMilestones(tx *gorm.DB, ids []uint) ([]*models.Milestone, error) {
	var milestones []*models.Milestone
	q := tx.
		Preload("Invoice.Lines").
		Preload("AdvancementProduct").
		Preload("CompensationProduct").
		Preload("Project.Party").
		Preload("Project.Product").
		Preload("Project.InvoicedProgress").
		Preload("Project.Milestones.Invoice.Lines").
		Preload("Project.Children.Product").
		Preload("Project.Children.InvoicedProgress").
		Preload("Project.Children.Children.Product").
		Preload("Project.Children.Children.InvoicedProgress").
		Preload("Project.Children.Children.Children.Product").
		Preload("Project.Children.Children.Children.InvoicedProgress")
	if err := q.Where("id IN ?", ids).Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

// FindMilestones resolves the requested ids and fails when any is missing, so
// a batch action never silently drops a record.
func FindMilestones(tx *gorm.DB, ids []uint) ([]*models.Milestone, error) {
	milestones, err := LoadMilestones(tx, ids)
	if err != nil {
		return nil, err
	}
	if len(milestones) != len(ids) {
		found := make(map[uint]bool, len(milestones))
		for _, m := range milestones {
			found[m.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, validationErrorf("", "milestone %d not found", id)
			}
		}
	}
	return milestones, nil
}
