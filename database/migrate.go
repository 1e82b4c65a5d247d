package database

import (
	"fmt"

	"meilenstein-backend/models"

	"gorm.io/gorm"
)

// MigrateTenantSchema applies (idempotent) schema migrations for one tenant
// schema: AutoMigrate for the project-accounting tables, money column types,
// the partial unique index on milestone numbers and the origin lookup index.
func MigrateTenantSchema(schema string) error {
	if schema == "" {
		return fmt.Errorf("schema name is empty")
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error; err != nil {
			return fmt.Errorf("set search_path failed: %w", err)
		}

		if err := tx.AutoMigrate(
			&models.Party{},
			&models.Product{},
			&models.Currency{},
			&models.Sequence{},
			&models.Configuration{},
			&models.Project{},
			&models.InvoicedProgress{},
			&models.Invoice{},
			&models.InvoiceLine{},
			&models.TemplateGroup{},
			&models.MilestoneTemplate{},
			&models.Milestone{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("tenant automigrate failed: %w", err)
		}

		// Money and quantity columns stay NUMERIC regardless of model drift.
		alters := []string{
			`ALTER TABLE products          ALTER COLUMN list_price         TYPE numeric(16,4)`,
			`ALTER TABLE projects          ALTER COLUMN quantity           TYPE numeric(16,4)`,
			`ALTER TABLE projects          ALTER COLUMN list_price         TYPE numeric(16,4)`,
			`ALTER TABLE projects          ALTER COLUMN progress           TYPE numeric(16,8)`,
			`ALTER TABLE milestones        ALTER COLUMN advancement_amount TYPE numeric(16,4)`,
			`ALTER TABLE milestones        ALTER COLUMN invoice_percent    TYPE numeric(16,8)`,
			`ALTER TABLE milestones        ALTER COLUMN trigger_progress   TYPE numeric(16,8)`,
			`ALTER TABLE invoices          ALTER COLUMN untaxed_amount     TYPE numeric(16,4)`,
			`ALTER TABLE invoices          ALTER COLUMN tax_amount         TYPE numeric(16,4)`,
			`ALTER TABLE invoices          ALTER COLUMN total              TYPE numeric(16,4)`,
			`ALTER TABLE invoice_lines     ALTER COLUMN quantity           TYPE numeric(16,4)`,
			`ALTER TABLE invoice_lines     ALTER COLUMN unit_price         TYPE numeric(16,4)`,
			`ALTER TABLE invoice_lines     ALTER COLUMN amount             TYPE numeric(16,4)`,
			`ALTER TABLE invoiced_progresses ALTER COLUMN quantity         TYPE numeric(16,4)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		indexes := []string{
			// Numbers are unique once assigned; drafts share the empty string.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_milestones_number ON milestones (number) WHERE number <> ''`,
			`CREATE INDEX IF NOT EXISTS idx_invoice_lines_origin ON invoice_lines (origin_type, origin_id)`,
			`CREATE INDEX IF NOT EXISTS idx_milestones_sweep ON milestones (state, kind) WHERE invoice_id IS NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		checks := []string{
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'milestones'::regclass
					  AND conname  = 'chk_milestones_trigger_progress_range'
				) THEN
					ALTER TABLE milestones
					ADD CONSTRAINT chk_milestones_trigger_progress_range
					CHECK (trigger_progress IS NULL OR (trigger_progress >= 0 AND trigger_progress <= 1));
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'projects'::regclass
					  AND conname  = 'chk_projects_progress_range'
				) THEN
					ALTER TABLE projects
					ADD CONSTRAINT chk_projects_progress_range
					CHECK (progress >= 0 AND progress <= 1);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'milestones'::regclass
					  AND conname  = 'chk_milestones_day_range'
				) THEN
					ALTER TABLE milestones
					ADD CONSTRAINT chk_milestones_day_range
					CHECK (day IS NULL OR (day >= 1 AND day <= 31));
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
