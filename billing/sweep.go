package billing

import (
	"log"

	"gorm.io/gorm"

	"meilenstein-backend/models"
)

// SweepDue evaluates every confirmed, system-kind, uninvoiced milestone of
// one tenant and invoices the subset whose trigger has fired. This is the
// scheduled entry point; the check-trigger endpoint goes through the same
// path for an explicit batch.
func SweepDue(tx *gorm.DB, clock Clock) error {
	var ids []uint
	err := tx.Model(&models.Milestone{}).
		Where("state = ? AND kind = ? AND invoice_id IS NULL", models.StateConfirmed, models.KindSystem).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	milestones, err := LoadMilestones(tx, ids)
	if err != nil {
		return err
	}
	config, err := models.GetConfiguration(tx)
	if err != nil {
		return err
	}
	deps := Deps{Store: NewStore(tx), Clock: clock, Config: config}
	return CheckTrigger(deps, milestones)
}

// SweepAllTenants runs SweepDue once per tenant schema, each in its own
// transaction. A failing tenant is logged and skipped; the others still run.
func SweepAllTenants(db *gorm.DB, clock Clock) {
	var schemas []string
	if err := db.Model(&models.User{}).Pluck("schema_name", &schemas).Error; err != nil {
		log.Printf("trigger sweep: listing tenants failed: %v", err)
		return
	}
	for _, schema := range schemas {
		if schema == "" {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error; err != nil {
				return err
			}
			return SweepDue(tx, clock)
		})
		if err != nil {
			log.Printf("trigger sweep: tenant %s: %v", schema, err)
		}
	}
}
